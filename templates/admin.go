package templates

import (
	"fmt"

	"folio/database"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

func errorBox(msg string) g.Node {
	return g.If(msg != "", Div(Class("alert error"), g.Text(msg)))
}

func field(label, name string, input g.Node) g.Node {
	return P(
		g.El("label", For(name), g.Text(label)),
		input,
	)
}

func LoginPage(layout LayoutProps, username, errMsg string) g.Node {
	return Layout(layout,
		Section(Class("card narrow"),
			H1(g.Text("Admin login")),
			errorBox(errMsg),
			g.El("form", Method("post"), Action("/admin/login"),
				field("Username", "username", Input(Type("text"), Name("username"), ID("username"), Value(username), Required(), g.Attr("autocomplete", "username"))),
				field("Password", "password", Input(Type("password"), Name("password"), ID("password"), Required(), g.Attr("autocomplete", "current-password"))),
				Button(Type("submit"), Class("button primary"), g.Text("Log in")),
			),
		),
	)
}

func AdminPostListPage(layout LayoutProps, posts []database.BlogPost) g.Node {
	rows := make([]g.Node, 0, len(posts))
	for _, post := range posts {
		status := "draft"
		if post.Published {
			status = "published"
		}
		rows = append(rows, Li(Class("admin-post"),
			Div(
				Strong(g.Text(post.Title)),
				Span(Class("muted"), g.Textf(" /%s · %s · %d views", post.Slug, status, post.Views)),
			),
			Div(Class("actions"),
				g.If(post.Published, A(Href("/blog/"+post.Slug), g.Text("view"))),
				A(Href(fmt.Sprintf("/admin/posts/%d/edit", post.ID)), g.Text("edit")),
				g.El("form", Method("post"), Action(fmt.Sprintf("/admin/posts/%d/delete", post.ID)), Class("inline"),
					g.Attr("onsubmit", "return confirm('Delete this post?');"),
					Button(Type("submit"), Class("link danger"), g.Text("delete")),
				),
			),
		))
	}

	return Layout(layout,
		Header(Class("page-header"),
			H1(g.Text("Posts")),
			A(Class("button primary"), Href("/admin/posts/new"), g.Text("New post")),
		),
		g.If(len(rows) == 0, P(Class("muted"), g.Text("Nothing written yet."))),
		Ul(Class("admin-posts"), g.Group(rows)),
	)
}

// PostForm carries the raw form values so a rejected submission can be
// shown again as typed.
type PostForm struct {
	ID          uint
	Slug        string
	Title       string
	Description string
	Content     string
	CoverImage  string
	Published   bool
	Tags        string
}

func PostFormFromPost(post database.BlogPost) PostForm {
	return PostForm{
		ID:          post.ID,
		Slug:        post.Slug,
		Title:       post.Title,
		Description: post.Description,
		Content:     post.Content,
		CoverImage:  deref(post.CoverImage),
		Published:   post.Published,
		Tags:        tagNames(post.Tags),
	}
}

func PostFormPage(layout LayoutProps, form PostForm, errMsg string) g.Node {
	heading, action, submit := "New post", "/admin/posts/new", "Create post"
	if form.ID != 0 {
		heading = "Edit post"
		action = fmt.Sprintf("/admin/posts/%d/edit", form.ID)
		submit = "Save changes"
	}

	return Layout(layout,
		Section(Class("card"),
			H1(g.Text(heading)),
			errorBox(errMsg),
			g.El("form", Method("post"), Action(action), Class("post-form"),
				field("Title", "title", Input(Type("text"), Name("title"), ID("title"), Value(form.Title), Required())),
				field("Slug", "slug", Input(Type("text"), Name("slug"), ID("slug"), Value(form.Slug),
					g.Attr("pattern", "[a-z0-9-]+"), Required(), Placeholder("lowercase-words-and-digits"))),
				field("Description", "description", Input(Type("text"), Name("description"), ID("description"), Value(form.Description), Required())),
				field("Content (Markdown or HTML)", "content", Textarea(Name("content"), ID("content"), g.Attr("rows", "20"), Required(), g.Text(form.Content))),
				field("Cover image URL", "coverImage", Input(Type("url"), Name("coverImage"), ID("coverImage"), Value(form.CoverImage))),
				field("Tags (comma separated)", "tags", Input(Type("text"), Name("tags"), ID("tags"), Value(form.Tags))),
				P(
					g.El("label",
						Input(Type("checkbox"), Name("published"), g.If(form.Published, Checked())),
						g.Text(" Published"),
					),
				),
				Div(Class("actions"),
					Button(Type("submit"), Class("button primary"), g.Text(submit)),
					A(Class("button outline"), Href("/admin/posts"), g.Text("Cancel")),
				),
			),
		),
	)
}
