package credentials_test

import (
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/frontier/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		mgr    *credentials.Manager
	)

	write := func(data string) {
		Expect(os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte(data), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		mgr, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("resolves credentials.toml inside the override directory", func() {
		Expect(mgr.Path()).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Keys).To(BeEmpty())
		})

		It("reads the keys table", func() {
			write("version = 1\n\n[keys]\nopenai = \"sk-test-key\"\n")

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Keys).To(HaveKeyWithValue("openai", "sk-test-key"))
		})

		It("rejects files from a newer version", func() {
			write("version = 9\n")

			_, err := mgr.Load()
			Expect(err).To(MatchError(ContainSubstring("version 9 is newer")))
		})

		It("returns error for malformed TOML", func() {
			write("not valid [[[")

			creds, err := mgr.Load()
			Expect(err).To(HaveOccurred())
			Expect(creds).To(BeNil())
		})
	})

	Describe("Save", func() {
		It("writes the file with restricted permissions", func() {
			Expect(mgr.Save(&credentials.Credentials{Keys: map[string]string{"openai": "sk-test"}})).To(Succeed())

			info, err := os.Stat(mgr.Path())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

			data, err := os.ReadFile(mgr.Path())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("version = 1"))
			Expect(string(data)).To(ContainSubstring(`openai = "sk-test"`))
		})

		It("leaves no temporary files behind", func() {
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			entries, err := os.ReadDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(Equal("credentials.toml"))
		})

		It("returns error for nil credentials", func() {
			Expect(mgr.Save(nil)).NotTo(Succeed())
		})
	})

	Describe("SetKey and GetKey", func() {
		It("stores, overwrites and keeps other keys", func() {
			Expect(mgr.SetKey("openai", "sk-old")).To(Succeed())
			Expect(mgr.SetKey("anthropic", "sk-ant")).To(Succeed())
			Expect(mgr.SetKey("openai", "sk-new")).To(Succeed())

			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-new"))

			key, err = mgr.GetKey("anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-ant"))
		})

		It("returns an empty key for providers without one", func() {
			key, err := mgr.GetKey("gemini")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})

		It("does not lose concurrent updates", func() {
			var wg sync.WaitGroup
			for _, p := range credentials.SupportedProviders() {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(mgr.SetKey(p, "key-"+p)).To(Succeed())
				}()
			}
			wg.Wait()

			providers, err := mgr.ListProviders()
			Expect(err).NotTo(HaveOccurred())
			Expect(providers).To(Equal([]string{"anthropic", "gemini", "openai"}))
		})
	})

	Describe("RemoveKey", func() {
		It("removes an existing key", func() {
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())
			Expect(mgr.RemoveKey("openai")).To(Succeed())

			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})

		It("is a no-op for providers without a key", func() {
			Expect(mgr.RemoveKey("gemini")).To(Succeed())
		})
	})

	Describe("ListProviders", func() {
		It("returns an empty list when nothing is stored", func() {
			providers, err := mgr.ListProviders()
			Expect(err).NotTo(HaveOccurred())
			Expect(providers).To(BeEmpty())
		})
	})
})

var _ = Describe("key info", func() {
	DescribeTable("EnvVarForProvider",
		func(provider, want string) {
			Expect(credentials.EnvVarForProvider(provider)).To(Equal(want))
		},
		Entry("openai", "openai", "OPENAI_API_KEY"),
		Entry("anthropic", "anthropic", "ANTHROPIC_API_KEY"),
		Entry("gemini", "gemini", "GOOGLE_API_KEY"),
		Entry("local backend", "ollama", ""),
	)

	It("lists the hosted backends in display order", func() {
		Expect(credentials.SupportedProviders()).To(Equal([]string{"openai", "anthropic", "gemini"}))
	})

	It("knows which backends need keys", func() {
		Expect(credentials.IsSupportedProvider("anthropic")).To(BeTrue())
		Expect(credentials.IsSupportedProvider("ollama")).To(BeFalse())
		Expect(credentials.IsSupportedProvider("gradio")).To(BeFalse())
	})

	It("looks up key info by name", func() {
		info, ok := credentials.Lookup("gemini")
		Expect(ok).To(BeTrue())
		Expect(info.Label).To(Equal("Google"))
		Expect(info.EnvVars).To(Equal([]string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}))

		_, ok = credentials.Lookup("cohere")
		Expect(ok).To(BeFalse())
	})
})
