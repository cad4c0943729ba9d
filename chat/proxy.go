package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"folio/constants"
	"folio/portfolio"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"google.golang.org/genai"
)

var logger = loggo.GetLogger("folio.chat")

// Markers framing the image side channel. Each is written on its own line.
const (
	MarkerImageGenerating = "[[IMAGE_GENERATING]]"
	MarkerImageReady      = "[[IMAGE_READY]]"
	MarkerImageError      = "[[IMAGE_ERROR]]"
)

// Proxy relays chat turns to a Model, keeping per-conversation history.
// A nil model answers every message with a not-configured notice.
type Proxy struct {
	model   Model
	history History
	profile string
	now     func() time.Time
}

func NewProxy(model Model, history History, profile string) *Proxy {
	return &Proxy{
		model:   model,
		history: history,
		profile: profile,
		now:     time.Now,
	}
}

func (p *Proxy) Configured() bool {
	return p.model != nil
}

// Send relays message and hands each piece of the reply to emit as it
// arrives. Model failures are reported through emit as readable text; only
// invalid input, history faults and emit failures are returned.
func (p *Proxy) Send(ctx context.Context, conversation, message string, emit func(string) error) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return errors.NotValidf("empty message")
	}
	if utf8.RuneCountInString(message) > constants.CHAT_MAX_MESSAGE {
		return errors.NotValidf("message longer than %d characters", constants.CHAT_MAX_MESSAGE)
	}

	if p.model == nil {
		return emit(constants.CHAT_NOT_CONFIGURED)
	}

	if strings.HasPrefix(message, constants.CHAT_IMAGE_PREFIX) {
		return p.sendImage(ctx, strings.TrimSpace(strings.TrimPrefix(message, constants.CHAT_IMAGE_PREFIX)), emit)
	}

	history, err := p.history.Get(ctx, conversation)
	if err != nil {
		return errors.Trace(err)
	}

	var reply strings.Builder
	req := Request{System: p.systemPrompt(), History: history, Message: message}
	for chunk, err := range p.model.Stream(ctx, req) {
		if err != nil {
			logger.Errorf("chat stream for %s failed: %v", conversation, err)
			text := FriendlyError(err)
			if reply.Len() > 0 {
				text = "\n\n" + text
			}
			return emit(text)
		}
		reply.WriteString(chunk)
		if err := emit(chunk); err != nil {
			return errors.Trace(err)
		}
	}

	err = p.history.Append(ctx, conversation,
		Message{Role: RoleUser, Text: message},
		Message{Role: RoleModel, Text: reply.String()},
	)
	return errors.Trace(err)
}

func (p *Proxy) sendImage(ctx context.Context, prompt string, emit func(string) error) error {
	if prompt == "" {
		return emit(MarkerImageError + "Describe the image after /image\n")
	}
	if err := emit(MarkerImageGenerating + "\n"); err != nil {
		return errors.Trace(err)
	}

	img, err := p.model.GenerateImage(ctx, prompt)
	if err != nil {
		logger.Errorf("image generation failed: %v", err)
		return emit(MarkerImageError + FriendlyError(err) + "\n")
	}
	logger.Debugf("generated %d byte %s image", len(img.Data), img.MIMEType)
	return emit(fmt.Sprintf("%sdata:%s;base64,%s\n", MarkerImageReady, img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)))
}

func (p *Proxy) Clear(ctx context.Context, conversation string) error {
	return errors.Trace(p.history.Clear(ctx, conversation))
}

// FriendlyError turns a model failure into a message fit for the chat
// window.
func FriendlyError(err error) string {
	msg := err.Error()
	if apiErr, ok := errors.AsType[genai.APIError](err); ok {
		if apiErr.Code == http.StatusTooManyRequests {
			return "⚠️  API quota exceeded. Please try again later or check your quota at Google AI Studio."
		}
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
	}

	switch {
	case strings.Contains(msg, "API_KEY") || strings.Contains(msg, "API key"):
		return "⚠️  Invalid API key. Please check the configured Gemini API key."
	case strings.Contains(strings.ToLower(msg), "quota"):
		return "⚠️  API quota exceeded. Please try again later or check your quota at Google AI Studio."
	default:
		return "⚠️  AI Error: " + msg
	}
}

func (p *Proxy) systemPrompt() string {
	return p.profile + "\n\nUSEFUL CONTEXT:\n- Today's date: " + p.now().Format("2006/01/02")
}

// Profile writes the assistant persona and background for the portfolio
// owner. It tolerates a missing personal info row.
func Profile(pf *portfolio.Portfolio) string {
	name := "the site owner"
	if pf != nil && pf.PersonalInfo != nil {
		name = pf.PersonalInfo.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are Jarvis, %s's personal AI assistant.\n\n", name)
	b.WriteString(`IDENTITY:
- Sharp, confident, a little sarcastic. Allergic to fluff.
- Never mention Google, Gemini, or being a language model. You are just Jarvis.

CORE ROLE:
Answer the user's question first. Use the background below only when it genuinely helps;
you are a problem-solver, not a resume reader.

TONE:
- Be direct. Say the useful thing, not the nice thing.
- Short answers when that is enough, longer ones when depth is needed.
- If you do not know something specific, say so plainly.
- You have web search for current information.
`)

	if pf == nil || pf.PersonalInfo == nil {
		return b.String()
	}

	info := pf.PersonalInfo
	fmt.Fprintf(&b, "\nBACKGROUND ON %s (context, not a script):\n", strings.ToUpper(name))
	fmt.Fprintf(&b, "Title: %s\nLocation: %s\nPhilosophy: %q\n", info.Title, info.Location, info.Bio)
	if len(pf.Experience) > 0 {
		b.WriteString("\nWork:\n")
		for _, job := range pf.Experience {
			fmt.Fprintf(&b, "- %s at %s (%s)\n", job.Position, job.Company, job.Duration)
		}
	}
	if len(pf.Education) > 0 {
		b.WriteString("\nEducation:\n")
		for _, edu := range pf.Education {
			fmt.Fprintf(&b, "- %s, %s at %s (%s)\n", edu.Degree, edu.Field, edu.Institution, edu.Duration)
		}
	}
	if len(pf.Skills) > 0 {
		b.WriteString("\nSkills:\n")
		for _, group := range pf.Skills {
			fmt.Fprintf(&b, "- %s: %s\n", group.Category, strings.Join(group.Skills, ", "))
		}
	}
	return b.String()
}
