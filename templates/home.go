package templates

import (
	"strings"

	"folio/portfolio"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

func terminalComponent(prompt string) g.Node {
	return Section(ID("terminal"), Class("terminal"),
		Div(Class("terminal-bar"),
			Span(Class("dot red")), Span(Class("dot yellow")), Span(Class("dot green")),
			Span(Class("terminal-title"), g.Text(prompt)),
		),
		Pre(ID("terminal-output"), Class("terminal-output"),
			g.Text("Welcome! Type 'help' to see available commands.\n"),
		),
		g.El("form", ID("terminal-form"), Class("terminal-input"), g.Attr("autocomplete", "off"),
			Span(Class("prompt"), g.Text(prompt+" $")),
			Input(Type("text"), ID("terminal-command"), Name("command"), g.Attr("aria-label", "command"), g.Attr("autofocus")),
		),
	)
}

func chatComponent(configured bool) g.Node {
	return Section(ID("chat"), Class("chat card"), g.Attr("data-configured", boolAttr(configured)),
		Header(Class("chat-header"),
			H2(g.Text("Ask Jarvis")),
			Button(Type("button"), ID("chat-clear"), Class("link"), g.Text("clear")),
		),
		Div(ID("chat-messages"), Class("chat-messages")),
		g.El("form", ID("chat-form"), Class("chat-input"),
			Input(Type("text"), ID("chat-message"), Name("message"), Placeholder("Ask anything, or /image <prompt>"), g.Attr("maxlength", "4000")),
			Button(Type("submit"), Class("button primary"), g.Text("Send")),
		),
	)
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func experienceSection(p *portfolio.Portfolio) g.Node {
	jobs := make([]g.Node, 0, len(p.Experience))
	for _, job := range p.Experience {
		jobs = append(jobs, Article(Class("job"),
			H3(g.Text(job.Position)),
			P(Class("muted"), g.Textf("%s · %s · %s", job.Company, job.Type, job.Duration)),
			P(g.Text(job.Description)),
			g.If(len(job.Skills) > 0, P(Class("chips"), g.Text(strings.Join(job.Skills, " · ")))),
		))
	}
	return Section(ID("experience"), H2(g.Text("Experience")), g.Group(jobs))
}

func skillsSection(p *portfolio.Portfolio) g.Node {
	groups := make([]g.Node, 0, len(p.Skills))
	for _, group := range p.Skills {
		groups = append(groups, Div(Class("skill-group"),
			H3(g.Text(group.Category)),
			P(g.Text(strings.Join(group.Skills, ", "))),
		))
	}
	return Section(ID("skills"), H2(g.Text("Skills")), Div(Class("skills"), g.Group(groups)))
}

func educationSection(p *portfolio.Portfolio) g.Node {
	schools := make([]g.Node, 0, len(p.Education))
	for _, edu := range p.Education {
		schools = append(schools, Article(
			H3(g.Text(edu.Institution)),
			P(g.Textf("%s, %s", edu.Degree, edu.Field)),
			P(Class("muted"), g.Text(edu.Duration)),
		))
	}
	return Section(ID("education"), H2(g.Text("Education")), g.Group(schools))
}

func projectsSection(p *portfolio.Portfolio) g.Node {
	projects := make([]g.Node, 0, len(p.Projects))
	for _, project := range p.Projects {
		stack := portfolio.TechStack(project)
		projects = append(projects, Article(Class("card"),
			H3(g.If(project.URL != nil, A(Href(deref(project.URL)), g.Attr("target", "_blank"), g.Text(project.Title))),
				g.If(project.URL == nil, g.Text(project.Title))),
			P(g.Text(project.Description)),
			g.If(len(stack) > 0, P(Class("chips"), g.Text(strings.Join(stack, " · ")))),
		))
	}
	return Section(ID("projects"), H2(g.Text("Projects")),
		g.If(len(projects) == 0, P(Class("muted"), g.Text("Coming soon..."))),
		g.Group(projects),
	)
}

type HomeProps struct {
	Portfolio      *portfolio.Portfolio
	ChatConfigured bool
}

func HomePage(layout LayoutProps, props HomeProps) g.Node {
	p := props.Portfolio
	if p.PersonalInfo == nil {
		return Layout(layout,
			Section(Class("hero"),
				H1(g.Text(layout.SiteName)),
				P(Class("muted"), g.Text("This portfolio has not been set up yet.")),
			),
		)
	}

	info := p.PersonalInfo
	prompt := strings.ToLower(strings.Fields(info.Name + " guest")[0]) + "@portfolio:~"
	return Layout(layout,
		Section(Class("hero"),
			H1(g.Text(info.Name)),
			P(Class("lead"), g.Text(info.Title)),
			P(g.Text(info.Tagline)),
			P(Class("muted"), g.Text("📍 "+info.Location)),
			P(Class("links"),
				A(Href("mailto:"+info.Email), g.Text("email")),
				A(Href(info.GitHub), g.Attr("target", "_blank"), g.Text("github")),
				A(Href(info.LinkedIn), g.Attr("target", "_blank"), g.Text("linkedin")),
			),
		),
		terminalComponent(prompt),
		experienceSection(p),
		skillsSection(p),
		educationSection(p),
		projectsSection(p),
		chatComponent(props.ChatConfigured),
		Script(Src("/assets/js/terminal.js"), g.Attr("defer")),
		Script(Src("/assets/js/chat.js"), g.Attr("defer")),
	)
}
