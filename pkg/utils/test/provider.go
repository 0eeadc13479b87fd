package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// ErrMockTransport is the cause used when FailAfter triggers.
var ErrMockTransport = errors.New("mock transport failure")

// MockProvider is a test backend adapter that records requests and replays
// scripted replies. Each call consumes the next reply; once they run out the
// last one repeats.
type MockProvider struct {
	// ProviderName is returned by Name. Defaults to "mock".
	ProviderName string

	// Replies are returned in order by Complete and Stream.
	Replies []string

	// ChunkSize splits streamed replies into deltas of this many bytes.
	// Zero streams each reply as a single delta.
	ChunkSize int

	// FailAfter, when positive, makes Stream fail with a transport failure
	// after that many deltas.
	FailAfter int

	// CompleteErr is returned by Complete when set.
	CompleteErr error

	mu       sync.Mutex
	requests []*llm.ChatRequest
	calls    int
}

// NewMockProvider creates a mock provider replaying replies.
func NewMockProvider(replies ...string) *MockProvider {
	return &MockProvider{Replies: replies}
}

func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Requests returns every request received so far.
func (m *MockProvider) Requests() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*llm.ChatRequest(nil), m.requests...)
}

func (m *MockProvider) next(req *llm.ChatRequest) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy the messages so later appends by the caller are not observed.
	cp := *req
	cp.Messages = append([]llm.Message(nil), req.Messages...)
	m.requests = append(m.requests, &cp)

	if len(m.Replies) == 0 {
		return ""
	}
	i := min(m.calls, len(m.Replies)-1)
	m.calls++
	return m.Replies[i]
}

func (m *MockProvider) Complete(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if m.CompleteErr != nil {
		return nil, m.CompleteErr
	}
	return &llm.ChatResponse{
		Model:      req.Model,
		Message:    llm.NewTextMessage(llm.RoleAssistant, m.next(req)),
		Done:       true,
		StopReason: "stop",
	}, nil
}

func (m *MockProvider) Stream(_ context.Context, req *llm.ChatRequest) stream.Seq {
	return func(yield func(stream.Event, error) bool) {
		reply := m.next(req)
		chunks := split(reply, m.ChunkSize)
		for i, chunk := range chunks {
			if m.FailAfter > 0 && i == m.FailAfter {
				yield(stream.Event{}, stream.Transport(m.Name(), ErrMockTransport))
				return
			}
			ev := stream.Event{Delta: chunk, Final: i == len(chunks)-1}
			if ev.Final {
				ev.StopReason = "stop"
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func split(s string, size int) []string {
	if size <= 0 || len(s) <= size {
		return []string{s}
	}
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
