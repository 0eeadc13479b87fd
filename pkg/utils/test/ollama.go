package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/papercomputeco/frontier/pkg/llm"
)

// OllamaRequest is the decoded body of one /api/chat call.
type OllamaRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  struct {
		Temperature *float64 `json:"temperature,omitempty"`
		NumPredict  *int     `json:"num_predict,omitempty"`
	} `json:"options"`
}

// OllamaServer is a fake Ollama /api/chat endpoint replaying scripted
// replies, as NDJSON chunks when streaming. Close it when done.
type OllamaServer struct {
	*httptest.Server

	// ChunkSize splits streamed replies into lines of this many bytes.
	ChunkSize int

	mu       sync.Mutex
	replies  []string
	requests []OllamaRequest
	calls    int
}

// NewOllamaServer starts a fake Ollama server. Once the replies run out the
// last one repeats.
func NewOllamaServer(replies ...string) *OllamaServer {
	s := &OllamaServer{replies: replies}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	s.Server = httptest.NewServer(mux)
	return s
}

// Requests returns every request received so far.
func (s *OllamaServer) Requests() []OllamaRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OllamaRequest(nil), s.requests...)
}

func (s *OllamaServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req OllamaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply := ""
	if len(s.replies) > 0 {
		reply = s.replies[min(s.calls, len(s.replies)-1)]
	}
	s.calls++
	s.mu.Unlock()

	msg := func(content string, done bool) map[string]any {
		return map[string]any{
			"model":   req.Model,
			"message": llm.NewTextMessage(llm.RoleAssistant, content),
			"done":    done,
		}
	}

	if !req.Stream {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(msg(reply, true))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for _, chunk := range split(reply, s.ChunkSize) {
		_ = enc.Encode(msg(chunk, false))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
	final := msg("", true)
	final["done_reason"] = "stop"
	_ = enc.Encode(final)
}
