// Package anthropic adapts Anthropic's Messages API. Streamed text arrives as
// content_block_delta events carrying text_delta pieces, and the response ends
// with message_stop.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/sse"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const (
	name = "anthropic"

	// DefaultBaseURL is the public Anthropic API.
	DefaultBaseURL = "https://api.anthropic.com"

	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"

	// DefaultMaxTokens is used when the request leaves max_tokens unset,
	// since the Messages API requires it.
	DefaultMaxTokens = 1000
)

// provider implements the Provider interface for Anthropic's Claude API.
type provider struct {
	cfg llm.ClientConfig
}

// New creates an Anthropic adapter. cfg.APIKey is sent as x-api-key.
func New(cfg llm.ClientConfig) *provider { return &provider{cfg: cfg} }

func (p *provider) Name() string {
	return name
}

func (p *provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := p.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stream.Transport(name, fmt.Errorf("reading response: %w", err))
	}

	var out anthropicResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, stream.Malformed(name, body, err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	result := &llm.ChatResponse{
		Model:      out.Model,
		CreatedAt:  time.Now(),
		Message:    llm.NewTextMessage(llm.RoleAssistant, text.String()),
		Done:       true,
		StopReason: out.StopReason,
	}
	if out.Usage != nil {
		result.Usage = usage(out.Usage.InputTokens, out.Usage.OutputTokens)
	}
	return result, nil
}

func (p *provider) Stream(ctx context.Context, req *llm.ChatRequest) stream.Seq {
	return func(yield func(stream.Event, error) bool) {
		resp, err := p.post(ctx, req, true)
		if err != nil {
			yield(stream.Event{}, err)
			return
		}
		defer resp.Body.Close()

		var (
			inputTokens int
			final       = stream.Event{Final: true}
		)

		reader := sse.NewTeeReader(resp.Body, p.cfg.RawWriter())
		for ev, err := range reader.Events() {
			if err != nil {
				yield(stream.Event{}, stream.Transport(name, fmt.Errorf("reading stream: %w", err)))
				return
			}

			var data streamEvent
			if err := json.Unmarshal([]byte(ev.Data), &data); err != nil {
				yield(stream.Event{}, stream.Malformed(name, []byte(ev.Data), err))
				return
			}

			switch data.Type {
			case "message_start":
				if data.Message != nil && data.Message.Usage != nil {
					inputTokens = data.Message.Usage.InputTokens
				}

			case "content_block_delta":
				if data.Delta == nil {
					yield(stream.Event{}, stream.Malformed(name, []byte(ev.Data), errors.New("content_block_delta without delta")))
					return
				}
				if data.Delta.Type != "text_delta" {
					continue
				}
				if !yield(stream.Event{Delta: data.Delta.Text}, nil) {
					return
				}

			case "message_delta":
				if data.Delta != nil {
					final.StopReason = data.Delta.StopReason
				}
				if data.Usage != nil {
					final.Usage = usage(inputTokens, data.Usage.OutputTokens)
				}

			case "message_stop":
				yield(final, nil)
				return

			case "error":
				msg := "stream error"
				if data.Error != nil {
					msg = data.Error.Type + ": " + data.Error.Message
				}
				yield(stream.Event{}, stream.Transport(name, errors.New(msg)))
				return

			default:
				// ping, content_block_start, content_block_stop
			}
		}

		// The body ended before message_stop.
		yield(stream.Event{}, stream.Transport(name, io.ErrUnexpectedEOF))
	}
}

// post sends the Messages API request and returns the response once a 2xx
// status has been received.
func (p *provider) post(ctx context.Context, req *llm.ChatRequest, streaming bool) (*http.Response, error) {
	body, err := json.Marshal(toAnthropic(req, streaming))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := p.cfg.URL(DefaultBaseURL, "/v1/messages")
	p.cfg.Log().Debug("sending messages request",
		"provider", name,
		"url", url,
		"model", req.Model,
		"stream", streaming,
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", APIVersion)

	resp, err := p.cfg.Do(httpReq)
	if err != nil {
		return nil, stream.Transport(name, err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, stream.Transport(name, llm.StatusError(resp))
	}
	return resp, nil
}

// toAnthropic moves system messages to the top-level system field, which is
// where the Messages API expects them.
func toAnthropic(req *llm.ChatRequest, streaming bool) anthropicRequest {
	system, rest := llm.SplitSystem(req.Messages)

	messages := make([]anthropicMessage, 0, len(rest))
	for _, m := range rest {
		messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	maxTokens := DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	return anthropicRequest{
		Model:       req.Model,
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      streaming,
	}
}

func usage(in, out int) *llm.Usage {
	return &llm.Usage{
		PromptTokens:     in,
		CompletionTokens: out,
		TotalTokens:      in + out,
	}
}
