// Package openai adapts the OpenAI Chat Completions API, and any compatible
// endpoint, to the stream event model. Each streamed chunk carries a true
// delta in choices[0].delta.content.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const name = "openai"

// provider implements the Provider interface for OpenAI's Chat Completions API.
type provider struct {
	cfg llm.ClientConfig
}

// New creates an OpenAI adapter. cfg.BaseURL may point at any
// OpenAI-compatible endpoint.
func New(cfg llm.ClientConfig) *provider { return &provider{cfg: cfg} }

func (o *provider) Name() string {
	return name
}

// Client builds a go-openai client from the adapter configuration. The airline
// assistant uses it directly for tool calls. Response bodies are copied to
// cfg.Raw when set.
func Client(cfg llm.ClientConfig) *goopenai.Client {
	config := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = cfg.TeeClient()
	return goopenai.NewClientWithConfig(config)
}

// Messages converts provider-agnostic messages to go-openai messages.
func Messages(messages []llm.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (o *provider) request(req *llm.ChatRequest, streaming bool) goopenai.ChatCompletionRequest {
	r := goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: Messages(req.Messages),
		Stream:   streaming,
	}
	if req.Temperature != nil {
		r.Temperature = float32(*req.Temperature)
	}
	if req.MaxTokens != nil {
		// Reasoning models reject max_tokens.
		if reasoning(req.Model) {
			r.MaxCompletionTokens = *req.MaxTokens
		} else {
			r.MaxTokens = *req.MaxTokens
		}
	}
	if req.Format == llm.FormatJSON {
		r.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	if streaming {
		r.StreamOptions = &goopenai.StreamOptions{IncludeUsage: true}
	}
	return r
}

func (o *provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := Client(o.cfg).CreateChatCompletion(ctx, o.request(req, false))
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, stream.Malformed(name, nil, errors.New("response has no choices"))
	}

	choice := resp.Choices[0]
	return &llm.ChatResponse{
		Model:      resp.Model,
		CreatedAt:  time.Unix(resp.Created, 0),
		Message:    llm.NewTextMessage(llm.RoleAssistant, choice.Message.Content),
		Done:       true,
		StopReason: string(choice.FinishReason),
		Usage:      usage(&resp.Usage),
	}, nil
}

func (o *provider) Stream(ctx context.Context, req *llm.ChatRequest) stream.Seq {
	return func(yield func(stream.Event, error) bool) {
		log := o.cfg.Log().With("provider", name, "model", req.Model)
		log.Debug("opening stream", "messages", len(req.Messages))

		s, err := Client(o.cfg).CreateChatCompletionStream(ctx, o.request(req, true))
		if err != nil {
			yield(stream.Event{}, classify(err))
			return
		}
		defer s.Close()

		// The terminal event is held back until the usage-only chunk that
		// follows the finish reason has been read.
		var final *stream.Event
		for {
			chunk, err := s.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield(stream.Event{}, classify(err))
				return
			}

			if len(chunk.Choices) == 0 {
				if final != nil && chunk.Usage != nil {
					final.Usage = usage(chunk.Usage)
				}
				continue
			}

			choice := chunk.Choices[0]
			ev := stream.Event{Delta: choice.Delta.Content}
			if choice.FinishReason != "" {
				ev.Final = true
				ev.StopReason = string(choice.FinishReason)
				ev.Usage = usage(chunk.Usage)
				final = &ev
				continue
			}
			if !yield(ev, nil) {
				return
			}
		}

		// A body that ends before any finish_reason was cut off.
		if final == nil {
			yield(stream.Event{}, stream.Transport(name, io.ErrUnexpectedEOF))
			return
		}
		log.Debug("stream finished", "stop_reason", final.StopReason)
		yield(*final, nil)
	}
}

func reasoning(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4")
}

// classify sorts go-openai errors into the stream failure classes. Chunks
// that fail to decode are malformed; everything else is transport.
func classify(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return stream.Malformed(name, nil, err)
	}
	return stream.Transport(name, err)
}

func usage(u *goopenai.Usage) *llm.Usage {
	if u == nil || u.TotalTokens == 0 {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
