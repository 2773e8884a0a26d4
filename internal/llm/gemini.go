package llm

import (
	"context"
	"fmt"

	"postpartum-meal-planner/internal/config"
	"postpartum-meal-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.5-flash"

// geminiClient is a client for the Google Gemini API. The SDK does not
// expose the API's seed parameter, so reproducibility here rests on the
// fixed temperature alone; DeepSeek is preferred when both keys are set.
type geminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiClient{client: client}, nil
}

// Generate sends a prompt to the Gemini model and returns the generated
// text. The model handle is built per call: concurrent window fetches must
// not share one, and the response MIME type follows the request's JSONMode.
func (c *geminiClient) Generate(ctx context.Context, r Request) (Response, error) {
	model := c.client.GenerativeModel(geminiModel)
	model.SetTemperature(0.7)
	if mimeType := geminiResponseMIMEType(r); mimeType != "" {
		model.ResponseMIMEType = mimeType
	}

	prompt := r.User
	if r.System != "" {
		prompt = r.System + "\n\n" + r.User
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Response{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("no content generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return Response{}, fmt.Errorf("generated content is not text")
	}

	usage := shared.TokenUsage{Model: geminiModel}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return Response{Content: string(text), Usage: usage}, nil
}

// geminiResponseMIMEType maps a request to the response MIME type asked of
// the model; plain-text requests leave the SDK default in place.
func geminiResponseMIMEType(r Request) string {
	if r.JSONMode {
		return "application/json"
	}
	return ""
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}
