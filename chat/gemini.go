package chat

import (
	"context"
	"iter"

	"folio/config"
	"folio/constants"

	"github.com/juju/errors"
	"google.golang.org/genai"
)

// Request is one chat turn sent to a Model.
type Request struct {
	System  string
	History []Message
	Message string
}

type Image struct {
	MIMEType string
	Data     []byte
}

// Model is the generative backend behind the proxy.
type Model interface {
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// GeminiModel talks to the Gemini API with Google Search grounding enabled.
type GeminiModel struct {
	client     *genai.Client
	model      string
	imageModel string
}

func NewGeminiModel(ctx context.Context, cfg config.ChatConfig) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Annotate(err, "creating gemini client")
	}
	return &GeminiModel{
		client:     client,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}, nil
}

func (m *GeminiModel) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		contents = append(contents, genai.NewContentFromText(msg.Text, genai.Role(msg.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		MaxOutputTokens:   constants.CHAT_MAX_OUTPUT,
		Temperature:       genai.Ptr[float32](0.9),
		TopP:              genai.Ptr[float32](0.95),
		ResponseMIMEType:  "text/plain",
	}

	return func(yield func(string, error) bool) {
		for resp, err := range m.client.Models.GenerateContentStream(ctx, m.model, contents, cfg) {
			if err != nil {
				yield("", err)
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

func (m *GeminiModel) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := m.client.Models.GenerateImages(ctx, m.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, generated := range resp.GeneratedImages {
		if generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			mime := generated.Image.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return &Image{MIMEType: mime, Data: generated.Image.ImageBytes}, nil
		}
	}
	return nil, errors.NotFoundf("generated image")
}
