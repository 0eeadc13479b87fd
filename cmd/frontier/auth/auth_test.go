package authcmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/frontier/cmd/frontier/auth"
	"github.com/papercomputeco/frontier/pkg/credentials"
)

var _ = Describe("Auth Command", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	newCmd := func(args ...string) *cobra.Command {
		cmd := authcmder.NewAuthCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .frontier/ config directory")
		cmd.SetOut(out)
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	Describe("NewAuthCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Use).To(Equal("auth [provider]"))
			Expect(cmd.Short).NotTo(BeEmpty())
		})

		It("has --list and --remove flags", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Flags().Lookup("list")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("remove")).NotTo(BeNil())
		})
	})

	Describe("storing a key", func() {
		It("reads the key from piped input", func() {
			GinkgoT().Setenv("GOOGLE_API_KEY", "")
			GinkgoT().Setenv("GEMINI_API_KEY", "")

			cmd := newCmd("gemini")
			cmd.SetIn(bytes.NewBufferString("  AIza-test  \n"))
			Expect(cmd.Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Stored"))
			Expect(out.String()).NotTo(ContainSubstring("takes precedence"))

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			key, err := mgr.GetKey("gemini")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("AIza-test"))
		})

		It("warns when the environment variable shadows the stored key", func() {
			GinkgoT().Setenv("OPENAI_API_KEY", "sk-env")

			cmd := newCmd("OpenAI")
			cmd.SetIn(bytes.NewBufferString("sk-stored\n"))
			Expect(cmd.Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("OPENAI_API_KEY is set in the environment"))
		})

		It("rejects empty input", func() {
			cmd := newCmd("anthropic")
			cmd.SetIn(bytes.NewBufferString("   \n"))
			err := cmd.Execute()
			Expect(err).To(MatchError("API key cannot be empty"))
		})

		It("rejects missing input", func() {
			cmd := newCmd("anthropic")
			cmd.SetIn(&bytes.Buffer{})
			Expect(cmd.Execute()).To(MatchError("no input received on stdin"))
		})
	})

	Describe("--list flag", func() {
		It("shows no credentials when none stored", func() {
			Expect(newCmd("--list").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No stored credentials."))
		})

		It("lists stored credentials with their variables", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("anthropic", "sk-ant-test")).To(Succeed())

			Expect(newCmd("--list").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("anthropic"))
			Expect(out.String()).To(ContainSubstring("ANTHROPIC_API_KEY"))
		})
	})

	Describe("--remove flag", func() {
		It("removes stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			Expect(newCmd("--remove", "openai").Execute()).To(Succeed())

			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("provider argument validation", func() {
		It("returns error when no provider given", func() {
			err := newCmd().Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("provider argument required"))
		})

		It("returns error for unsupported provider", func() {
			cmd := newCmd("ollama")
			cmd.SetIn(bytes.NewBufferString("sk-test\n"))
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported provider"))
		})
	})

	Describe("shell completion", func() {
		It("provides provider name completions", func() {
			cmd := authcmder.NewAuthCmd()
			completions, directive := cmd.ValidArgsFunction(cmd, []string{}, "")
			Expect(completions).To(ConsistOf("openai", "anthropic", "gemini"))
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})

		It("provides no completions after first arg", func() {
			cmd := authcmder.NewAuthCmd()
			completions, directive := cmd.ValidArgsFunction(cmd, []string{"openai"}, "")
			Expect(completions).To(BeNil())
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})
	})
})
