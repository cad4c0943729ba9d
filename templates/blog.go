package templates

import (
	"fmt"

	"folio/database"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

func tagLinks(tags []database.BlogTag, current string) g.Node {
	links := make([]g.Node, 0, len(tags))
	for _, tag := range tags {
		class := "tag"
		if tag.Slug == current {
			class = "tag active"
		}
		links = append(links, A(Class(class), Href("/blog/tag/"+tag.Slug), g.Text("#"+tag.Name)))
	}
	return Div(Class("tags"), g.Group(links))
}

func postMeta(post database.BlogPost) g.Node {
	return P(Class("post-meta muted"),
		g.If(post.PublishedAt != nil, g.El("time", g.Text(dateFmt(post.PublishedAt)))),
		g.Textf(" · %d min read · %d views", post.ReadingTime, post.Views),
	)
}

func postCard(post database.BlogPost) g.Node {
	return Article(Class("card post-card"),
		H2(A(Href("/blog/"+post.Slug), g.Text(post.Title))),
		postMeta(post),
		P(g.Text(post.Description)),
		g.If(len(post.Tags) > 0, tagLinks(post.Tags, "")),
	)
}

type BlogIndexProps struct {
	Posts []database.BlogPost
	Tags  []database.BlogTag
	// CurrentTag is set when listing a single tag.
	CurrentTag *database.BlogTag
}

func BlogIndexPage(layout LayoutProps, props BlogIndexProps) g.Node {
	heading := "Blog"
	current := ""
	if props.CurrentTag != nil {
		heading = "Posts tagged #" + props.CurrentTag.Name
		current = props.CurrentTag.Slug
	}

	cards := make([]g.Node, 0, len(props.Posts))
	for _, post := range props.Posts {
		cards = append(cards, postCard(post))
	}

	return Layout(layout,
		Header(Class("page-header"),
			H1(g.Text(heading)),
			g.If(props.CurrentTag != nil, P(A(Href("/blog"), g.Text("← all posts")))),
		),
		g.If(len(props.Tags) > 0, tagLinks(props.Tags, current)),
		g.If(len(cards) == 0, P(Class("muted"), g.Text("No posts yet."))),
		Section(Class("posts"), g.Group(cards)),
	)
}

func BlogPostPage(layout LayoutProps, post database.BlogPost) g.Node {
	return Layout(layout,
		Article(Class("post"),
			Header(
				H1(g.Text(post.Title)),
				postMeta(post),
				g.If(len(post.Tags) > 0, tagLinks(post.Tags, "")),
			),
			g.If(post.CoverImage != nil, Img(Class("cover"), Src(deref(post.CoverImage)), Alt(post.Title))),
			Div(Class("post-body"), g.Raw(RenderMarkdown(post.Content))),
			P(A(Href("/blog"), g.Text("← back to blog"))),
		),
	)
}

func ErrorPage(layout LayoutProps, status int, message string) g.Node {
	return Layout(layout,
		Section(Class("error"),
			H1(g.Text(fmt.Sprint(status))),
			P(g.Text(message)),
			P(A(Href("/"), g.Text("cd ~"))),
		),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
