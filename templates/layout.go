package templates

import (
	"time"

	"folio/constants"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

type LayoutProps struct {
	Title       string
	Description string
	CurrentUser string
	SiteName    string
}

func (p LayoutProps) pageTitle() string {
	site := p.SiteName
	if site == "" {
		site = constants.APP_NAME
	}
	if p.Title == "" {
		return site
	}
	return p.Title + " | " + site
}

func NavbarComponent(props LayoutProps) g.Node {
	return Nav(Class("nav"),
		Div(Class("nav-left"),
			Div(Class("brand"), A(Href("/"), g.Text("~/"+props.SiteName))),
		),
		Div(Class("nav-links nav-right"),
			A(Href("/"), g.Text("home")),
			A(Href("/blog"), g.Text("blog")),
			g.If(props.CurrentUser != "",
				Div(Class("row"),
					A(Href("/admin/posts"), g.Text("posts")),
					Span(Class("muted"), g.Textf("logged in as %s", props.CurrentUser)),
					g.El("form", Method("post"), Action("/admin/logout"), Class("inline"),
						Button(Type("submit"), Class("link"), g.Text("logout")),
					),
				),
			),
		),
	)
}

func FooterComponent(props LayoutProps) g.Node {
	return Footer(Class("footer"),
		P(Small(g.Textf("© %d %s", time.Now().Year(), props.SiteName))),
	)
}

func Layout(props LayoutProps, children ...g.Node) g.Node {
	if props.SiteName == "" {
		props.SiteName = constants.APP_NAME
	}
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				g.If(props.Description != "", Meta(Name("description"), Content(props.Description))),
				Link(Rel("icon"), Type("image/svg+xml"), Href("data:image/svg+xml,<svg xmlns=%22http://www.w3.org/2000/svg%22 viewBox=%220 0 100 100%22><text y=%22.9em%22 font-size=%2290%22>&gt;_</text></svg>")),
				Link(Rel("stylesheet"), Href("/assets/css/main.css")),
				TitleEl(g.Text(props.pageTitle())),
			),
			Body(
				Div(Class("container"),
					NavbarComponent(props),
					Main(
						g.Group(children),
					),
				),
				FooterComponent(props),
			),
		),
	)
}
