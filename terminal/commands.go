package terminal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"folio/constants"
	"folio/portfolio"

	"github.com/mitchellh/go-wordwrap"
)

const bannerWidth = 56

// banner boxes a centered, upper-cased title.
func banner(title string) []string {
	title = strings.ToUpper(title)
	pad := max(0, bannerWidth-utf8.RuneCountInString(title))
	left := pad / 2
	return []string{
		"╔" + strings.Repeat("═", bannerWidth) + "╗",
		"║" + strings.Repeat(" ", left) + title + strings.Repeat(" ", pad-left) + "║",
		"╚" + strings.Repeat("═", bannerWidth) + "╝",
		"",
	}
}

// Wrap breaks text into lines of at most width runes, each starting with
// indent. A word longer than the width gets a line of its own.
func Wrap(text string, width int, indent string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	limit := max(1, width-utf8.RuneCountInString(indent))
	lines := strings.Split(wordwrap.WrapString(text, uint(limit)), "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return lines
}

// pairs lays items out two per row, the first column padded to 30.
func pairs(items []string, indent string) []string {
	var rows []string
	for i := 0; i < len(items); i += 2 {
		if i+1 < len(items) {
			rows = append(rows, fmt.Sprintf("%s• %-30s • %s", indent, items[i], items[i+1]))
		} else {
			rows = append(rows, fmt.Sprintf("%s• %s", indent, items[i]))
		}
	}
	return rows
}

type helpCommand struct {
	registry *Registry
}

func (helpCommand) Description() string { return "Show this help message" }

func (c helpCommand) Run(*portfolio.Portfolio) Output {
	lines := []string{"Available commands:", ""}
	for _, name := range c.registry.Names() {
		cmd, _ := c.registry.Lookup(name)
		lines = append(lines, fmt.Sprintf("  %-12s- %s", name, cmd.Description()))
	}
	return Output{Lines: append(lines, "")}
}

type whoamiCommand struct{}

func (whoamiCommand) Description() string { return "Learn about me" }

func (whoamiCommand) needsPersonalInfo() {}

func (whoamiCommand) Run(p *portfolio.Portfolio) Output {
	info := p.PersonalInfo
	lines := banner(info.Name)
	lines = append(lines,
		"  "+info.Title,
		"",
		"  "+info.Tagline,
		"",
	)
	lines = append(lines, Wrap(info.Bio, constants.TERMINAL_WRAP_WIDTH, "  ")...)
	lines = append(lines,
		"",
		"  📍 "+info.Location,
		"",
	)
	return Output{Lines: lines}
}

type experienceCommand struct{}

func (experienceCommand) Description() string { return "View work experience" }

func (experienceCommand) Run(p *portfolio.Portfolio) Output {
	lines := banner("Work Experience")
	for i, job := range p.Experience {
		lines = append(lines,
			"  "+job.Position,
			fmt.Sprintf("  @ %s · %s", job.Company, job.Type),
			"",
			"  📅 "+job.Duration,
			"  📍 "+job.Location,
			"",
		)
		lines = append(lines, Wrap(job.Description, constants.TERMINAL_WRAP_WIDTH, "  ")...)

		if len(job.Skills) > 0 {
			lines = append(lines, "", "  Tech Stack:")
			lines = append(lines, pairs(job.Skills, "    ")...)
		}

		if i < len(p.Experience)-1 {
			lines = append(lines, "", "  "+strings.Repeat("━", 50), "")
		}
	}
	return Output{Lines: append(lines, "")}
}

type skillsCommand struct{}

func (skillsCommand) Description() string { return "View technical skills" }

func (skillsCommand) Run(p *portfolio.Portfolio) Output {
	lines := banner("Technical Skills")
	for _, group := range p.Skills {
		lines = append(lines, "  "+group.Category+":")
		for _, skill := range group.Skills {
			lines = append(lines, "    → "+skill)
		}
		lines = append(lines, "")
	}
	return Output{Lines: lines}
}

type educationCommand struct{}

func (educationCommand) Description() string { return "View educational background" }

func (educationCommand) Run(p *portfolio.Portfolio) Output {
	lines := banner("Education")
	for _, edu := range p.Education {
		lines = append(lines,
			"  "+edu.Institution,
			fmt.Sprintf("  %s, %s", edu.Degree, edu.Field),
			"  "+edu.Duration,
			"",
		)
	}
	return Output{Lines: lines}
}

type contactCommand struct{}

func (contactCommand) Description() string { return "Get in touch" }

func (contactCommand) needsPersonalInfo() {}

func (contactCommand) Run(p *portfolio.Portfolio) Output {
	info := p.PersonalInfo
	lines := banner("Contact Info")
	lines = append(lines,
		"  Email:    "+info.Email,
		"  GitHub:   "+info.GitHub,
		"  LinkedIn: "+info.LinkedIn,
		"",
	)
	return Output{Lines: lines}
}

type projectsCommand struct{}

func (projectsCommand) Description() string { return "View projects" }

func (projectsCommand) Run(p *portfolio.Portfolio) Output {
	lines := banner("Projects")
	if len(p.Projects) == 0 {
		return Output{Lines: append(lines,
			"  Coming soon...",
			"",
			"  Stay tuned for exciting projects!",
			"",
		)}
	}

	for i, project := range p.Projects {
		lines = append(lines, fmt.Sprintf("  [%d] %s", i+1, project.Title))
		lines = append(lines, Wrap(project.Description, constants.TERMINAL_WRAP_WIDTH, "      ")...)
		if stack := portfolio.TechStack(project); len(stack) > 0 {
			lines = append(lines, "      Tech: "+strings.Join(stack, ", "))
		}
		if project.URL != nil {
			lines = append(lines, "      URL: "+*project.URL)
		}
		lines = append(lines, "")
	}
	return Output{Lines: lines}
}

type blogCommand struct{}

func (blogCommand) Description() string { return "Visit the blog" }

func (blogCommand) Run(*portfolio.Portfolio) Output {
	return Output{
		Lines:  []string{"", "  Redirecting to blog...", "", "  Or visit: /blog", ""},
		Action: ActionNavigate + "/blog",
	}
}

type clearCommand struct{}

func (clearCommand) Description() string { return "Clear the terminal" }

func (clearCommand) Run(*portfolio.Portfolio) Output {
	return Output{Lines: []string{}, Action: ActionClear}
}
