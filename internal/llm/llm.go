package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"postpartum-meal-planner/internal/shared"
)

// Request describes a single structured generation call. Seed makes the
// output reproducible for identical semantic inputs across devices and
// sessions; JSONMode asks the backend for a structured JSON object.
type Request struct {
	System   string
	User     string
	Seed     int64
	JSONMode bool
}

// Response carries the generated text and token usage metadata.
type Response struct {
	Content string
	Usage   shared.TokenUsage
}

// Generator is the content generator boundary. Implementations are
// network-bound and fallible; no ordering is guaranteed across calls and
// no retries happen at this layer.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// ErrMissingCredential is returned when no API key is configured for the
// selected backend. The call cannot be serviced and is not retried.
var ErrMissingCredential = errors.New("no api key configured for content generator")

// MalformedResponseError indicates the generator returned something that is
// still not valid JSON after markdown fencing was stripped.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed generator response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// StripFences removes the markdown code fencing models sometimes wrap
// around JSON payloads, even in JSON mode.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// DecodeJSON strips fencing from raw and unmarshals the remainder into v.
// Anything that still fails to parse is reported as a MalformedResponseError
// carrying the raw payload.
func DecodeJSON(raw string, v any) error {
	if err := json.Unmarshal([]byte(StripFences(raw)), v); err != nil {
		return &MalformedResponseError{Raw: raw, Err: err}
	}
	return nil
}
