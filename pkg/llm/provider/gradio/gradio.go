// Package gradio adapts a Gradio app's call API. Gradio streams cumulative
// snapshots: every "generating" event carries the whole response so far, and
// the adapter turns them into deltas.
//
// A call is two requests: POST /gradio_api/call/{fn} with {"data": [...]}
// returns an event id, and GET /gradio_api/call/{fn}/{event_id} streams the
// result as SSE.
package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/sse"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const (
	name = "gradio"

	// DefaultBaseURL is where `gradio` and `frontier serve` listen by default.
	DefaultBaseURL = "http://localhost:7860"

	// DefaultFn is the endpoint name called when none is given.
	DefaultFn = "chat"
)

// Gradio SSE event types.
const (
	EventGenerating = "generating"
	EventComplete   = "complete"
	EventError      = "error"
	EventHeartbeat  = "heartbeat"
)

// CallRequest is the body of POST /gradio_api/call/{fn}.
type CallRequest struct {
	Data []any `json:"data"`
}

// CallResponse is returned by POST /gradio_api/call/{fn}.
type CallResponse struct {
	EventID string `json:"event_id"`
}

// provider implements the Provider interface for Gradio apps.
type provider struct {
	cfg llm.ClientConfig
	fn  string
}

// New creates a Gradio adapter calling DefaultFn.
func New(cfg llm.ClientConfig) *provider { return NewFn(cfg, DefaultFn) }

// NewFn creates a Gradio adapter calling the named endpoint.
func NewFn(cfg llm.ClientConfig, fn string) *provider {
	return &provider{cfg: cfg, fn: fn}
}

func (g *provider) Name() string {
	return name
}

// Complete drains the snapshot stream; Gradio has no separate
// non-streaming call.
func (g *provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	var (
		text  string
		final stream.Event
	)
	for ev, err := range g.Stream(ctx, req) {
		if err != nil {
			return nil, err
		}
		text += ev.Delta
		if ev.Final {
			final = ev
		}
	}
	return &llm.ChatResponse{
		Model:      req.Model,
		CreatedAt:  time.Now(),
		Message:    llm.NewTextMessage(llm.RoleAssistant, text),
		Done:       true,
		StopReason: final.StopReason,
	}, nil
}

// Stream sends the latest user message and the model label as the app's
// inputs.
func (g *provider) Stream(ctx context.Context, req *llm.ChatRequest) stream.Seq {
	return func(yield func(stream.Event, error) bool) {
		eventID, err := g.call(ctx, req)
		if err != nil {
			yield(stream.Event{}, err)
			return
		}

		url := g.cfg.URL(DefaultBaseURL, fmt.Sprintf("/gradio_api/call/%s/%s", g.fn, eventID))
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			yield(stream.Event{}, fmt.Errorf("creating request: %w", err))
			return
		}
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := g.cfg.Do(httpReq)
		if err != nil {
			yield(stream.Event{}, stream.Transport(name, err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			yield(stream.Event{}, stream.Transport(name, llm.StatusError(resp)))
			return
		}

		snaps := &stream.Snapshots{Backend: name}
		reader := sse.NewTeeReader(resp.Body, g.cfg.RawWriter())
		for ev, err := range reader.Events() {
			if err != nil {
				yield(stream.Event{}, stream.Transport(name, fmt.Errorf("reading stream: %w", err)))
				return
			}

			switch ev.Type {
			case EventGenerating, EventComplete:
				snapshot, err := firstString(ev.Data)
				if err != nil {
					yield(stream.Event{}, stream.Malformed(name, []byte(ev.Data), err))
					return
				}
				delta, err := snaps.Delta(snapshot)
				if err != nil {
					yield(stream.Event{}, err)
					return
				}
				if ev.Type == EventComplete {
					yield(stream.Event{Delta: delta, Final: true, StopReason: EventComplete}, nil)
					return
				}
				if !yield(stream.Event{Delta: delta}, nil) {
					return
				}

			case EventError:
				yield(stream.Event{}, stream.Transport(name, errors.New(errorMessage(ev.Data))))
				return

			default:
				// heartbeat
			}
		}

		// The body ended before the complete event.
		yield(stream.Event{}, stream.Transport(name, io.ErrUnexpectedEOF))
	}
}

// errorMessage reads the payload of an error event. Gradio apps send a JSON
// string or null; frontier serve sends an llm.ErrorResponse.
func errorMessage(data string) string {
	var detail string
	if json.Unmarshal([]byte(data), &detail) == nil && detail != "" {
		return detail
	}
	var resp llm.ErrorResponse
	if json.Unmarshal([]byte(data), &resp) == nil && resp.Error != "" {
		return resp.Error
	}
	return "app reported an error"
}

// call starts a prediction and returns its event id.
func (g *provider) call(ctx context.Context, req *llm.ChatRequest) (string, error) {
	body, err := json.Marshal(CallRequest{Data: []any{llm.LastUserMessage(req.Messages), req.Model}})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := g.cfg.URL(DefaultBaseURL, "/gradio_api/call/"+g.fn)
	g.cfg.Log().Debug("starting gradio call", "url", url, "model", req.Model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.cfg.Do(httpReq)
	if err != nil {
		return "", stream.Transport(name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", stream.Transport(name, llm.StatusError(resp))
	}

	var out CallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", stream.Malformed(name, nil, err)
	}
	if out.EventID == "" {
		return "", stream.Malformed(name, nil, errors.New("missing event_id"))
	}
	return out.EventID, nil
}

// firstString decodes a Gradio output array and returns its first element,
// which holds the text snapshot.
func firstString(data string) (string, error) {
	var outputs []json.RawMessage
	if err := json.Unmarshal([]byte(data), &outputs); err != nil {
		return "", err
	}
	if len(outputs) == 0 {
		return "", errors.New("empty output array")
	}
	var s string
	if err := json.Unmarshal(outputs[0], &s); err != nil {
		return "", fmt.Errorf("first output is not text: %w", err)
	}
	return s, nil
}
