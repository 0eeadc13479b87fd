// Package provider selects and constructs backend adapters. Each adapter
// lives in its own subpackage and normalizes one wire format into
// stream.Event values.
package provider

import (
	"context"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// Provider is a backend adapter.
type Provider interface {
	// Name returns the canonical provider name (e.g., "openai", "anthropic",
	// "gemini", "ollama", "gradio").
	Name() string

	// Complete performs a single non-streaming call.
	Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	// Stream returns the lazy event sequence for req. No request is sent
	// until the sequence is ranged over, and breaking out of the range loop
	// closes the upstream connection.
	Stream(ctx context.Context, req *llm.ChatRequest) stream.Seq
}

// Config is the explicit configuration for one adapter instance.
type Config = llm.ClientConfig
