package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const helloStream = "event: message_start\n" +
	`data: {"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-3-5-haiku-latest","usage":{"input_tokens":12,"output_tokens":1}}}` + "\n\n" +
	"event: content_block_start\n" +
	`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}` + "\n\n" +
	"event: ping\n" +
	`data: {"type":"ping"}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo, "}}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"world!"}}` + "\n\n" +
	"event: content_block_stop\n" +
	`data: {"type":"content_block_stop","index":0}` + "\n\n" +
	"event: message_delta\n" +
	`data: {"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":5}}` + "\n\n" +
	"event: message_stop\n" +
	`data: {"type":"message_stop"}` + "\n\n"

var _ = Describe("Anthropic Provider", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		captured map[string]any
		headers  http.Header
		p        provider.Provider
		req      *llm.ChatRequest
	)

	BeforeEach(func() {
		captured = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/messages"))
			headers = r.Header.Clone()
			body, _ := io.ReadAll(r.Body)
			Expect(json.Unmarshal(body, &captured)).To(Succeed())
			handler(w, r)
		}))
		p = anthropic.New(llm.ClientConfig{APIKey: "sk-ant-test", BaseURL: server.URL})
		req = &llm.ChatRequest{
			Model: "claude-3-5-haiku-latest",
			Messages: []llm.Message{
				llm.NewTextMessage(llm.RoleSystem, "You are terse."),
				llm.NewTextMessage(llm.RoleUser, "Say hello"),
			},
		}
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Name", func() {
		It("returns 'anthropic'", func() {
			Expect(p.Name()).To(Equal("anthropic"))
		})
	})

	Describe("Stream", func() {
		It("accumulates text deltas and ends on message_stop", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, helloStream)
			}

			var events []stream.Event
			for ev, err := range p.Stream(context.Background(), req) {
				Expect(err).NotTo(HaveOccurred())
				events = append(events, ev)
			}

			Expect(events).To(HaveLen(4))
			Expect(events[0].Delta).To(Equal("Hel"))
			Expect(events[3].Final).To(BeTrue())
			Expect(events[3].Delta).To(BeEmpty())
			Expect(events[3].StopReason).To(Equal("end_turn"))
			Expect(events[3].Usage.PromptTokens).To(Equal(12))
			Expect(events[3].Usage.CompletionTokens).To(Equal(5))
		})

		It("sends the system prompt separately with the required headers", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, helloStream)
			}

			text, err := stream.Collect(p.Stream(context.Background(), req))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Hello, world!"))

			Expect(headers.Get("x-api-key")).To(Equal("sk-ant-test"))
			Expect(headers.Get("anthropic-version")).To(Equal(anthropic.APIVersion))
			Expect(captured["system"]).To(Equal("You are terse."))
			Expect(captured["messages"]).To(HaveLen(1))
			Expect(captured["max_tokens"]).To(BeNumerically("==", anthropic.DefaultMaxTokens))
			Expect(captured["stream"]).To(BeTrue())
		})

		It("surfaces an error event as a transport failure with partial text", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "event: content_block_delta\n"+
					`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`+"\n\n"+
					"event: error\n"+
					`data: {"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`+"\n\n")
			}

			text, err := stream.Collect(p.Stream(context.Background(), req))
			Expect(errors.Is(err, stream.ErrTransport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Overloaded"))
			Expect(text).To(Equal("Hel"))
		})

		It("fails a stream that ends before message_stop", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "event: message_start\n"+
					`data: {"type":"message_start","message":{"usage":{"input_tokens":3}}}`+"\n\n"+
					"event: content_block_delta\n"+
					`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello, "}}`+"\n\n")
			}

			text, err := stream.Collect(p.Stream(context.Background(), req))
			Expect(errors.Is(err, stream.ErrTransport)).To(BeTrue())
			Expect(errors.Is(err, io.ErrUnexpectedEOF)).To(BeTrue())
			Expect(text).To(Equal("Hello, "))
			Expect(stream.PartialText(err)).To(Equal("Hello, "))
		})

		It("reports undecodable event data as malformed", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "event: content_block_delta\ndata: {oops}\n\n")
			}

			_, err := stream.Collect(p.Stream(context.Background(), req))
			Expect(errors.Is(err, stream.ErrMalformedChunk)).To(BeTrue())
		})

		It("reports a delta event without a delta as malformed", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "event: content_block_delta\n"+`data: {"type":"content_block_delta","index":0}`+"\n\n")
			}

			_, err := stream.Collect(p.Stream(context.Background(), req))
			Expect(errors.Is(err, stream.ErrMalformedChunk)).To(BeTrue())
		})

		It("reports non-2xx responses as transport failures", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
			}

			_, err := stream.Collect(p.Stream(context.Background(), req))
			Expect(errors.Is(err, stream.ErrTransport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("invalid x-api-key"))
		})
	})

	Describe("Complete", func() {
		It("joins the text content blocks", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{
					"id": "msg_123",
					"type": "message",
					"role": "assistant",
					"content": [{"type": "text", "text": "Hello"}, {"type": "text", "text": " there"}],
					"model": "claude-3-5-haiku-latest",
					"stop_reason": "end_turn",
					"usage": {"input_tokens": 10, "output_tokens": 2}
				}`)
			}

			tuned := req.WithMaxTokens(200)
			resp, err := p.Complete(context.Background(), &tuned)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.Content).To(Equal("Hello there"))
			Expect(resp.StopReason).To(Equal("end_turn"))
			Expect(resp.Usage.TotalTokens).To(Equal(12))
			Expect(captured["max_tokens"]).To(BeNumerically("==", 200))
			Expect(captured).NotTo(HaveKey("stream"))
		})
	})
})
