package llm

import (
	"context"
	"errors"
)

// Client abstracts language-model providers that answer with a single JSON document.
type Client interface {
	// Complete returns the full response text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Stream calls onChunk for each text delta in arrival order. The concatenation of all
	// chunks equals what Complete would have returned. An error from onChunk aborts the stream.
	Stream(ctx context.Context, prompt string, onChunk func(string) error) error
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// ErrUpstream marks provider and transport failures.
var ErrUpstream = errors.New("llm upstream failure")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotImplemented
}

// Stream returns ErrNotImplemented.
func (PlaceholderClient) Stream(ctx context.Context, prompt string, onChunk func(string) error) error {
	return ErrNotImplemented
}

var _ Client = PlaceholderClient{}
