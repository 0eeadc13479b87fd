package airlinecmder_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	airlinecmder "github.com/papercomputeco/frontier/cmd/frontier/airline"
	"github.com/papercomputeco/frontier/pkg/airline"
)

func textReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1700000000, "model": "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

var _ = Describe("Airline Command", func() {
	var (
		server  *httptest.Server
		mu      sync.Mutex
		auth    []string
		bodies  []map[string]any
		replies []string
		out     *bytes.Buffer
		errOut  *bytes.Buffer
	)

	run := func(input string, args ...string) error {
		cmd := airlinecmder.NewAirlineCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(out)
		cmd.SetErr(errOut)
		cmd.SetArgs(append(args, "--config-dir", GinkgoT().TempDir()))
		return cmd.Execute()
	}

	BeforeEach(func() {
		auth = nil
		bodies = nil
		replies = []string{textReply("Hello from FlightAI."), textReply("Safe travels.")}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)

			mu.Lock()
			auth = append(auth, r.Header.Get("Authorization"))
			bodies = append(bodies, body)
			reply := replies[min(len(bodies), len(replies))-1]
			mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, reply)
		}))
		DeferCleanup(server.Close)

		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
		GinkgoT().Setenv("FRONTIER_PROVIDERS_OPENAI_BASE_URL", server.URL)
		GinkgoT().Setenv("OPENAI_API_KEY", "sk-test")
	})

	It("defaults to the assistant's model", func() {
		cmd := airlinecmder.NewAirlineCmd()
		Expect(cmd.Flags().Lookup("model").DefValue).To(Equal(airline.DefaultModel))
	})

	It("answers each message with the conversation so far", func() {
		Expect(run("hi\nbye\n/exit\n", "-m", "gpt-4o")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Hello from FlightAI."))
		Expect(out.String()).To(ContainSubstring("Safe travels."))
		Expect(auth).To(ConsistOf("Bearer sk-test", "Bearer sk-test"))

		Expect(bodies).To(HaveLen(2))
		Expect(bodies[1]["model"]).To(Equal("gpt-4o"))
		msgs := bodies[1]["messages"].([]any)
		Expect(msgs).To(HaveLen(4))
		Expect(msgs[1].(map[string]any)["content"]).To(Equal("hi"))
		Expect(msgs[2].(map[string]any)["content"]).To(Equal("Hello from FlightAI."))
		Expect(msgs[3].(map[string]any)["content"]).To(Equal("bye"))
	})

	It("reports failures and keeps the session going", func() {
		server.Close()
		Expect(run("hi\n")).To(Succeed())
		Expect(errOut.String()).To(ContainSubstring("transport failure"))
	})
})
