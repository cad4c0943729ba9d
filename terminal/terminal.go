package terminal

import (
	"strings"

	"folio/portfolio"

	"github.com/juju/errors"
)

const (
	ActionClear    = "clear"
	ActionNavigate = "navigate:"
)

// Output is what a command prints, plus an optional instruction for the
// browser such as clearing the screen.
type Output struct {
	Lines  []string `json:"lines"`
	Action string   `json:"action,omitempty"`
}

type Command interface {
	Description() string
	Run(p *portfolio.Portfolio) Output
}

// personalCommand is implemented by commands that print PersonalInfo and
// so cannot run against an empty portfolio.
type personalCommand interface {
	needsPersonalInfo()
}

// Result is a dispatched command line.
type Result struct {
	Command string   `json:"command"`
	Lines   []string `json:"lines"`
	Action  string   `json:"action,omitempty"`
}

// Registry maps command names to commands, keeping registration order for
// the help listing.
type Registry struct {
	names []string
	index map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]Command)}
}

// Register adds cmd under name, replacing any earlier command of that name.
func (r *Registry) Register(name string, cmd Command) {
	if _, ok := r.index[name]; !ok {
		r.names = append(r.names, name)
	}
	r.index[name] = cmd
}

func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.index[name]
	return cmd, ok
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Execute runs one command line against p. Only the first word selects the
// command; lookups are case-insensitive.
func (r *Registry) Execute(p *portfolio.Portfolio, line string) (Result, error) {
	line = strings.TrimSpace(line)
	result := Result{Command: line, Lines: []string{}}
	if line == "" {
		return result, nil
	}
	if p == nil {
		p = &portfolio.Portfolio{}
	}

	name := strings.ToLower(strings.Fields(line)[0])
	cmd, ok := r.Lookup(name)
	if !ok {
		result.Lines = []string{
			"command not found: " + name,
			"Type 'help' to see available commands.",
		}
		return result, nil
	}
	if _, ok := cmd.(personalCommand); ok && p.PersonalInfo == nil {
		return result, errors.NotFoundf("personal info")
	}

	out := cmd.Run(p)
	if out.Lines != nil {
		result.Lines = out.Lines
	}
	result.Action = out.Action
	return result, nil
}

// Default returns the registry behind the landing page terminal.
func Default() *Registry {
	r := NewRegistry()
	r.Register("whoami", whoamiCommand{})
	r.Register("experience", experienceCommand{})
	r.Register("skills", skillsCommand{})
	r.Register("education", educationCommand{})
	r.Register("contact", contactCommand{})
	r.Register("projects", projectsCommand{})
	r.Register("blog", blogCommand{})
	r.Register("clear", clearCommand{})
	r.Register("help", helpCommand{registry: r})
	return r
}
