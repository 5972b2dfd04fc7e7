package translate

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

type GeminiConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
}

// Gemini translates through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("GEMINI_API_KEY is required for translation")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "create gemini client")
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Translate(ctx context.Context, text string) (string, error) {
	temp := float32(0)
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(buildPrompt(text)),
		&genai.GenerateContentConfig{
			CandidateCount: 1,
			Temperature:    &temp,
		},
	)
	if err != nil {
		return "", eris.Wrapf(err, "gemini translate with %s", g.model)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", eris.New("gemini returned an empty translation")
	}
	return out, nil
}

func buildPrompt(text string) string {
	return strings.TrimSpace(`
Translate the following business name or postal address into English.
Keep proper nouns, street numbers and postal codes as they are.
Return ONLY the translated text with no quotes or explanation.

Text: ` + text + `
`)
}
