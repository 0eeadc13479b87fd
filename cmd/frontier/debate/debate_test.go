package debatecmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	debatecmder "github.com/papercomputeco/frontier/cmd/frontier/debate"
	"github.com/papercomputeco/frontier/pkg/debate"
	"github.com/papercomputeco/frontier/pkg/llm"
	testutils "github.com/papercomputeco/frontier/pkg/utils/test"
)

var _ = Describe("Debate Command", func() {
	var (
		ollama *testutils.OllamaServer
		out    *bytes.Buffer
		errOut *bytes.Buffer
	)

	newCmd := func(args ...string) *cobra.Command {
		cmd := debatecmder.NewDebateCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		cmd.SetOut(out)
		cmd.SetErr(errOut)
		cmd.SetArgs(append(args, "--config-dir", GinkgoT().TempDir()))
		return cmd
	}

	BeforeEach(func() {
		ollama = testutils.NewOllamaServer("No.", "Fair point.")
		DeferCleanup(ollama.Close)

		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
		GinkgoT().Setenv("FRONTIER_PROVIDERS_OLLAMA_BASE_URL", ollama.URL)
	})

	It("defaults to GPT against Claude for five rounds", func() {
		cmd := debatecmder.NewDebateCmd()
		Expect(cmd.Flags().Lookup("lead").DefValue).To(Equal("openai"))
		Expect(cmd.Flags().Lookup("reply").DefValue).To(Equal("anthropic"))
		Expect(cmd.Flags().Lookup("rounds").DefValue).To(Equal("5"))
	})

	It("streams a transcript with numbered speakers for the same backend", func() {
		err := newCmd("--lead", "ollama", "--reply", "ollama", "--reply-model", "qwen2.5", "--rounds", "1").Execute()
		Expect(err).NotTo(HaveOccurred())

		Expect(out.String()).To(Equal("Ollama 1:\nHi there\n\nOllama 2:\nHi\n\nOllama 1:\nNo.\n\nOllama 2:\nFair point.\n"))

		reqs := ollama.Requests()
		Expect(reqs).To(HaveLen(2))

		Expect(reqs[0].Model).To(Equal("llama3.2"))
		Expect(reqs[0].Messages[0]).To(Equal(llm.NewTextMessage(llm.RoleSystem, debate.ArgumentativePrompt)))
		Expect(reqs[0].Options.NumPredict).To(BeNil())

		Expect(reqs[1].Model).To(Equal("qwen2.5"))
		Expect(reqs[1].Messages).To(Equal([]llm.Message{
			llm.NewTextMessage(llm.RoleSystem, debate.PolitePrompt),
			llm.NewTextMessage(llm.RoleUser, "Hi there"),
			llm.NewTextMessage(llm.RoleAssistant, "Hi"),
			llm.NewTextMessage(llm.RoleUser, "No."),
		}))
		Expect(*reqs[1].Options.NumPredict).To(Equal(500))
	})

	It("rejects unknown backends", func() {
		err := newCmd("--lead", "cohere").Execute()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unknown backend"))
		Expect(ollama.Requests()).To(BeEmpty())
	})
})
