package backend_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/cmd/frontier/backend"
	"github.com/papercomputeco/frontier/pkg/config"
	"github.com/papercomputeco/frontier/pkg/credentials"
	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/stream"
)

var _ = Describe("Factory", func() {
	var (
		tmpDir string
		creds  *credentials.Manager
	)

	writeConfig := func(data string) {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
	}

	// newCommand mirrors the flags a frontier command registers.
	newCommand := func() *cobra.Command {
		var providerName, model string
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().String("config-dir", tmpDir, "")
		cmd.Flags().Bool("debug", false, "")
		config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &providerName)
		config.AddStringFlag(cmd, config.Flags, config.FlagModel, &model)
		return cmd
	}

	load := func(cmd *cobra.Command) *backend.Factory {
		f, err := backend.Load(cmd, backend.Options{
			Flags:  []string{config.FlagProvider, config.FlagModel},
			DotEnv: []string{filepath.Join(tmpDir, ".env")},
		})
		Expect(err).NotTo(HaveOccurred())
		creds, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	newFactory := func() *backend.Factory {
		return load(newCommand())
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		GinkgoT().Setenv("OPENAI_API_KEY", "")
		GinkgoT().Setenv("FRONTIER_DEFAULTS_MODEL", "")
	})

	Describe("Provider", func() {
		It("resolves UI labels to the backend and its configured model", func() {
			f := newFactory()
			prov, model, err := f.Provider("Ollama")
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(provider.Ollama))
			Expect(model).To(Equal("llama3.2"))
		})

		It("uses models from config.toml", func() {
			writeConfig("[providers.anthropic]\nmodel = \"claude-3-haiku-20240307\"\n")
			f := newFactory()
			prov, model, err := f.Provider("Claude")
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(provider.Anthropic))
			Expect(model).To(Equal("claude-3-haiku-20240307"))
		})

		It("fails on unknown backends", func() {
			_, _, err := newFactory().Provider("cohere")
			Expect(err).To(MatchError(stream.ErrUnknownBackend))
		})
	})

	Describe("ClientConfig", func() {
		It("uses stored keys when the environment has none", func() {
			f := newFactory()
			Expect(creds.SetKey("openai", "sk-stored")).To(Succeed())

			cfg, pc, err := f.ClientConfig(provider.OpenAI)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.APIKey).To(Equal("sk-stored"))
			Expect(cfg.BaseURL).To(Equal(pc.BaseURL))
		})

		It("prefers environment keys over stored keys", func() {
			f := newFactory()
			Expect(creds.SetKey("openai", "sk-stored")).To(Succeed())
			GinkgoT().Setenv("OPENAI_API_KEY", "sk-env")

			cfg, _, err := f.ClientConfig(provider.OpenAI)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.APIKey).To(Equal("sk-env"))
		})

		It("needs no key for local backends", func() {
			cfg, pc, err := newFactory().ClientConfig(provider.Ollama)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.APIKey).To(BeEmpty())
			Expect(pc.BaseURL).To(Equal("http://localhost:11434"))
		})
	})

	Describe("Default", func() {
		It("lets defaults.model override the backend model", func() {
			writeConfig("[defaults]\nprovider = \"ollama\"\nmodel = \"qwen2.5\"\n")
			prov, model, err := newFactory().Default()
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(provider.Ollama))
			Expect(model).To(Equal("qwen2.5"))
		})

		It("detects the backend from --model", func() {
			cmd := newCommand()
			Expect(cmd.Flags().Set("model", "claude-3-5-haiku-latest")).To(Succeed())

			prov, model, err := load(cmd).Default()
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(provider.Anthropic))
			Expect(model).To(Equal("claude-3-5-haiku-latest"))
		})

		It("keeps an explicit --provider", func() {
			cmd := newCommand()
			Expect(cmd.Flags().Set("provider", "ollama")).To(Succeed())
			Expect(cmd.Flags().Set("model", "claude-x")).To(Succeed())

			prov, model, err := load(cmd).Default()
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(provider.Ollama))
			Expect(model).To(Equal("claude-x"))
		})

		It("falls back to defaults.provider for unrecognized models", func() {
			writeConfig("[defaults]\nprovider = \"gemini\"\n")
			cmd := newCommand()
			Expect(cmd.Flags().Set("model", "my-finetune")).To(Succeed())

			prov, model, err := load(cmd).Default()
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(provider.Gemini))
			Expect(model).To(Equal("my-finetune"))
		})

		It("does not detect from a configured defaults.model", func() {
			writeConfig("[defaults]\nprovider = \"ollama\"\nmodel = \"gpt-4o-mini\"\n")
			prov, _, err := newFactory().Default()
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(provider.Ollama))
		})
	})

	Describe("Request", func() {
		msgs := []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")}

		It("leaves sampling unset by default", func() {
			req := newFactory().Request("llama3.2", msgs)
			Expect(req.Model).To(Equal("llama3.2"))
			Expect(req.Messages).To(Equal(msgs))
			Expect(req.Temperature).To(BeNil())
			Expect(req.MaxTokens).To(BeNil())
		})

		It("applies configured sampling", func() {
			writeConfig("[defaults]\ntemperature = 0.5\nmax_tokens = 128\n")
			req := newFactory().Request("llama3.2", msgs)
			Expect(req.Temperature).To(HaveValue(BeNumerically("~", 0.5)))
			Expect(req.MaxTokens).To(HaveValue(Equal(128)))
		})
	})

	Describe("Load", func() {
		It("gives changed flags precedence over config.toml", func() {
			writeConfig("[defaults]\nprovider = \"anthropic\"\n")

			cmd := newCommand()
			Expect(load(cmd).DefaultName()).To(Equal("anthropic"))

			Expect(cmd.Flags().Set("provider", "gemini")).To(Succeed())
			Expect(load(cmd).DefaultName()).To(Equal("gemini"))
		})
	})

	Describe("Reload", func() {
		It("picks up edits to config.toml", func() {
			writeConfig("[providers.ollama]\nmodel = \"llama3.2\"\n")
			f := newFactory()
			Expect(f.ConfigFile()).To(Equal(filepath.Join(tmpDir, "config.toml")))

			writeConfig("[providers.ollama]\nmodel = \"mistral\"\n")
			Expect(f.Reload()).To(Succeed())

			_, model, err := f.Provider(provider.Ollama)
			Expect(err).NotTo(HaveOccurred())
			Expect(model).To(Equal("mistral"))
		})
	})

	Describe("Watch", func() {
		It("returns at once when no config file is in use", func() {
			Expect(newFactory().Watch(context.Background(), nil)).To(Succeed())
		})

		It("reloads and notifies when config.toml is written", func() {
			writeConfig("[defaults]\ntemperature = 0.1\n")
			f := newFactory()

			ctx, cancel := context.WithCancel(context.Background())
			var changes atomic.Int32
			done := make(chan error, 1)
			go func() {
				done <- f.Watch(ctx, func() { changes.Add(1) })
			}()

			Eventually(func() float64 {
				writeConfig("[defaults]\ntemperature = 0.9\n")
				temperature, _ := f.Sampling()
				return temperature
			}, 5*time.Second, 100*time.Millisecond).Should(BeNumerically("~", 0.9))
			Expect(changes.Load()).To(BeNumerically(">", 0))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})

var _ = Describe("NewOutput", func() {
	It("prints appended text and a trailing newline", func() {
		var buf bytes.Buffer
		out, err := backend.NewOutput(&buf, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Render("Hel")).To(Succeed())
		Expect(out.Render("Hello")).To(Succeed())
		Expect(out.Finish()).To(Succeed())
		Expect(buf.String()).To(Equal("Hello\n"))
	})

	It("renders markdown", func() {
		var buf bytes.Buffer
		out, err := backend.NewOutput(&buf, true)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Render("# Title")).To(Succeed())
		Expect(out.Finish()).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Title"))
	})
})
