package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/llm/provider/gradio"
	"github.com/papercomputeco/frontier/pkg/sse"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	// Message is the new user turn.
	Message string `json:"message"`

	// Model is a UI label or backend name. Empty selects Config.Default.
	Model string `json:"model,omitempty"`

	// History holds earlier user and assistant turns, oldest first.
	History []llm.Message `json:"history,omitempty"`
}

// BackendsResponse is returned by GET /backends.
type BackendsResponse struct {
	Backends []string `json:"backends"`
	Default  string   `json:"default"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleBackends lists the model labels the UI offers.
func (s *Server) handleBackends(c *fiber.Ctx) error {
	return c.JSON(BackendsResponse{Backends: s.config.Backends, Default: s.config.Default})
}

// handleChat streams the reply to a chat turn as SSE.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "message required"})
	}
	return s.stream(c, req)
}

// handleCall starts a Gradio-style prediction and returns its event id.
func (s *Server) handleCall(c *fiber.Ctx) error {
	fn := c.Params("fn")
	if fn != gradio.DefaultFn {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: fmt.Sprintf("unknown function %q", fn)})
	}

	var body gradio.CallRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	message, label, err := callInputs(body.Data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	id := s.calls.add(pendingCall{fn: fn, message: message, label: label})
	s.logger.Debug("call started", "fn", fn, "event_id", id, "model", label)
	return c.JSON(gradio.CallResponse{EventID: id})
}

// handleCallStream streams the result of a started call.
func (s *Server) handleCallStream(c *fiber.Ctx) error {
	call, ok := s.calls.take(c.Params("fn"), c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "unknown event id"})
	}
	return s.stream(c, ChatRequest{Message: call.message, Model: call.label})
}

// callInputs extracts [message, model] from a Gradio data array. The model
// is optional.
func callInputs(data []any) (string, string, error) {
	if len(data) == 0 {
		return "", "", errors.New("data must hold the message")
	}
	message, ok := data[0].(string)
	if !ok || strings.TrimSpace(message) == "" {
		return "", "", errors.New("data[0] must be a non-empty string")
	}
	var label string
	if len(data) > 1 && data[1] != nil {
		if label, ok = data[1].(string); !ok {
			return "", "", errors.New("data[1] must be a model name")
		}
	}
	return message, label, nil
}

// request builds the upstream chat request for req.
func (s *Server) request(model string, req ChatRequest) *llm.ChatRequest {
	msgs := make([]llm.Message, 0, len(req.History)+2)
	msgs = append(msgs, llm.NewTextMessage(llm.RoleSystem, s.config.SystemPrompt))
	for _, m := range req.History {
		if m.Role == llm.RoleUser || m.Role == llm.RoleAssistant {
			msgs = append(msgs, m)
		}
	}
	msgs = append(msgs, llm.NewTextMessage(llm.RoleUser, req.Message))

	s.mu.RLock()
	temperature, maxTokens := s.config.Temperature, s.config.MaxTokens
	s.mu.RUnlock()

	out := llm.ChatRequest{Model: model, Messages: msgs}
	if temperature > 0 {
		out = out.WithTemperature(temperature)
	}
	if maxTokens > 0 {
		out = out.WithMaxTokens(maxTokens)
	}
	return &out
}

// stream resolves the backend for req and answers with an SSE body of
// cumulative snapshots: "generating" events while the reply grows, then one
// "complete" or "error" event.
func (s *Server) stream(c *fiber.Ctx, req ChatRequest) error {
	label := req.Model
	if label == "" {
		label = s.config.Default
	}

	prov, model, err := s.resolve(label)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, stream.ErrUnknownBackend) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// fasthttp flushes after every chunk read from the pipe, so each
	// snapshot reaches the client as soon as it is written.
	pr, pw := io.Pipe()
	go s.pump(prov, s.request(model, req), pw)
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// pump folds the adapter's events into SSE frames on pw. It runs detached
// from the fasthttp request context, which is recycled once the handler
// returns.
func (s *Server) pump(prov provider.Provider, req *llm.ChatRequest, pw *io.PipeWriter) {
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := s.logger.With("provider", prov.Name(), "model", req.Model)
	log.Debug("streaming reply", "messages", len(req.Messages))

	sink := stream.SinkFunc(func(text string) error {
		return sse.Write(pw, sse.Event{Type: gradio.EventGenerating, Data: outputs(text)})
	})

	text, err := stream.Fold(prov.Stream(ctx, req), sink)
	if err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			log.Debug("client went away", "chars", len(text))
			return
		}
		log.Error("stream failed", "error", err, "partial_chars", len(text))
		msg, _ := json.Marshal(llm.ErrorResponse{Error: err.Error(), Partial: text})
		_ = sse.Write(pw, sse.Event{Type: gradio.EventError, Data: string(msg)})
		return
	}

	log.Debug("reply complete", "chars", len(text))
	_ = sse.Write(pw, sse.Event{Type: gradio.EventComplete, Data: outputs(text)})
}

// outputs encodes text as a one-element Gradio output array.
func outputs(text string) string {
	b, _ := json.Marshal([]string{text})
	return string(b)
}
