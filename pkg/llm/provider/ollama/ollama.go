// Package ollama adapts a local Ollama server's /api/chat endpoint. Streamed
// responses are newline-delimited JSON objects, each carrying the next piece
// of message.content, with done set on the last one.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const (
	name = "ollama"

	// DefaultBaseURL is where a local Ollama listens.
	DefaultBaseURL = "http://localhost:11434"
)

// provider implements the Provider interface for Ollama's chat API.
type provider struct {
	cfg llm.ClientConfig
}

func New(cfg llm.ClientConfig) *provider { return &provider{cfg: cfg} }

func (o *provider) Name() string {
	return name
}

func (o *provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := o.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stream.Transport(name, fmt.Errorf("reading response: %w", err))
	}

	var out ollamaResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, stream.Malformed(name, body, err)
	}
	if out.Error != "" {
		return nil, stream.Transport(name, errors.New(out.Error))
	}

	return &llm.ChatResponse{
		Model:      out.Model,
		CreatedAt:  out.CreatedAt,
		Message:    llm.NewTextMessage(llm.RoleAssistant, out.Message.Content),
		Done:       out.Done,
		StopReason: stopReason(&out),
		Usage:      usage(&out),
	}, nil
}

func (o *provider) Stream(ctx context.Context, req *llm.ChatRequest) stream.Seq {
	return func(yield func(stream.Event, error) bool) {
		resp, err := o.post(ctx, req, true)
		if err != nil {
			yield(stream.Event{}, err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(io.TeeReader(resp.Body, o.cfg.RawWriter()))
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var chunk ollamaResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				yield(stream.Event{}, stream.Malformed(name, line, err))
				return
			}
			if chunk.Error != "" {
				yield(stream.Event{}, stream.Transport(name, errors.New(chunk.Error)))
				return
			}

			ev := stream.Event{Delta: chunk.Message.Content}
			if chunk.Done {
				ev.Final = true
				ev.StopReason = stopReason(&chunk)
				ev.Usage = usage(&chunk)
			}
			if !yield(ev, nil) || chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(stream.Event{}, stream.Transport(name, fmt.Errorf("reading stream: %w", err)))
			return
		}
		// The body ended before a done line.
		yield(stream.Event{}, stream.Transport(name, io.ErrUnexpectedEOF))
	}
}

// post sends the chat request and returns the response once a 2xx status has
// been received.
func (o *provider) post(ctx context.Context, req *llm.ChatRequest, streaming bool) (*http.Response, error) {
	body, err := json.Marshal(toOllama(req, streaming))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := o.cfg.URL(DefaultBaseURL, "/api/chat")
	o.cfg.Log().Debug("sending chat request",
		"provider", name,
		"url", url,
		"model", req.Model,
		"message_count", len(req.Messages),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.cfg.Do(httpReq)
	if err != nil {
		return nil, stream.Transport(name, err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, stream.Transport(name, llm.StatusError(resp))
	}
	return resp, nil
}

func toOllama(req *llm.ChatRequest, streaming bool) ollamaRequest {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	out := ollamaRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   streaming,
	}
	if req.Format == llm.FormatJSON {
		out.Format = "json"
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		out.Options = &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}
	return out
}

func stopReason(r *ollamaResponse) string {
	if r.DoneReason != "" {
		return r.DoneReason
	}
	if r.Done {
		return "stop"
	}
	return ""
}

// usage maps Ollama metrics to the common Usage format.
func usage(r *ollamaResponse) *llm.Usage {
	if r.PromptEvalCount == 0 && r.EvalCount == 0 && r.TotalDuration == 0 {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     r.PromptEvalCount,
		CompletionTokens: r.EvalCount,
		TotalTokens:      r.PromptEvalCount + r.EvalCount,
		TotalDurationNs:  r.TotalDuration,
	}
}
