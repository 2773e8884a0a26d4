package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"postpartum-meal-planner/internal/config"
	"postpartum-meal-planner/internal/shared"
)

const (
	deepseekAPIURL = "https://api.deepseek.com/chat/completions"
	deepseekModel  = "deepseek-chat"
)

// deepseekClient is a client for the DeepSeek chat completions API. It is
// the preferred backend because the API accepts an explicit seed, which
// keeps generated plans reproducible for the same start date and day.
type deepseekClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewDeepSeekClient creates a new DeepSeek API client.
func NewDeepSeekClient(cfg *config.Config) Generator {
	return &deepseekClient{
		apiKey: cfg.DeepSeekAPIKey,
		apiURL: deepseekAPIURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate sends a prompt to the DeepSeek model and returns the generated
// text. Failures are surfaced once; there is no retry here.
func (c *deepseekClient) Generate(ctx context.Context, r Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, ErrMissingCredential
	}

	messages := []map[string]string{}
	if r.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": r.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": r.User})

	reqBody := map[string]interface{}{
		"model":       deepseekModel,
		"messages":    messages,
		"temperature": 1.0,
		"seed":        r.Seed,
		"stream":      false,
	}
	if r.JSONMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("deepseek api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var dsResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&dsResp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(dsResp.Choices) == 0 {
		return Response{}, fmt.Errorf("no content generated")
	}

	return Response{
		Content: dsResp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     dsResp.Usage.PromptTokens,
			CompletionTokens: dsResp.Usage.CompletionTokens,
			TotalTokens:      dsResp.Usage.TotalTokens,
			Model:            deepseekModel,
		},
	}, nil
}
