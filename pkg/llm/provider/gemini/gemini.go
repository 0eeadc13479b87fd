// Package gemini adapts Google's Gemini API through the genai SDK. Each
// streamed response object carries the text produced since the previous one
// in candidates[0].content.parts.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const name = "gemini"

// provider implements the Provider interface for the Gemini API.
type provider struct {
	cfg llm.ClientConfig
}

func New(cfg llm.ClientConfig) *provider { return &provider{cfg: cfg} }

func (g *provider) Name() string {
	return name
}

func (g *provider) client(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.cfg.TeeClient(),
		HTTPOptions: genai.HTTPOptions{BaseURL: g.cfg.BaseURL},
	})
	if err != nil {
		return nil, stream.Transport(name, fmt.Errorf("creating client: %w", err))
	}
	return client, nil
}

func (g *provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	contents, config := toGenai(req)
	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, classify(err)
	}

	text, finish := candidateText(resp)
	return &llm.ChatResponse{
		Model:      req.Model,
		CreatedAt:  time.Now(),
		Message:    llm.NewTextMessage(llm.RoleAssistant, text),
		Done:       true,
		StopReason: finish,
		Usage:      usage(resp.UsageMetadata),
	}, nil
}

func (g *provider) Stream(ctx context.Context, req *llm.ChatRequest) stream.Seq {
	return func(yield func(stream.Event, error) bool) {
		client, err := g.client(ctx)
		if err != nil {
			yield(stream.Event{}, err)
			return
		}

		g.cfg.Log().Debug("opening stream", "provider", name, "model", req.Model)

		contents, config := toGenai(req)
		for resp, err := range client.Models.GenerateContentStream(ctx, req.Model, contents, config) {
			if err != nil {
				yield(stream.Event{}, classify(err))
				return
			}
			if resp == nil {
				yield(stream.Event{}, stream.Malformed(name, nil, errors.New("empty response object")))
				return
			}

			text, finish := candidateText(resp)
			ev := stream.Event{Delta: text}
			if finish != "" {
				ev.Final = true
				ev.StopReason = finish
				ev.Usage = usage(resp.UsageMetadata)
			}
			if !yield(ev, nil) || ev.Final {
				return
			}
		}

		// The stream ended without a finish reason.
		yield(stream.Event{}, stream.Transport(name, io.ErrUnexpectedEOF))
	}
}

// toGenai converts the request. Gemini names the assistant role "model" and
// takes the system prompt as a separate instruction.
func toGenai(req *llm.ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	system, rest := llm.SplitSystem(req.Messages)

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		config.Temperature = &t
	}
	if req.MaxTokens != nil {
		config.MaxOutputTokens = int32(*req.MaxTokens)
	}
	if req.Format == llm.FormatJSON {
		config.ResponseMIMEType = "application/json"
	}
	return contents, config
}

// candidateText joins the non-thought text parts of the first candidate and
// returns its finish reason, if any.
func candidateText(resp *genai.GenerateContentResponse) (string, string) {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", ""
	}
	c := resp.Candidates[0]

	var text strings.Builder
	if c.Content != nil {
		for _, part := range c.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text.WriteString(part.Text)
		}
	}
	return text.String(), string(c.FinishReason)
}

func classify(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return stream.Malformed(name, nil, err)
	}
	return stream.Transport(name, err)
}

func usage(u *genai.GenerateContentResponseUsageMetadata) *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     int(u.PromptTokenCount),
		CompletionTokens: int(u.CandidatesTokenCount),
		TotalTokens:      int(u.TotalTokenCount),
	}
}
