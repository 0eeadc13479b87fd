package page_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/frontier/pkg/page"
)

const doc = `<!doctype html>
<html>
<head><title> Acme Corp </title><style>body { color: red }</style></head>
<body>
  <nav><a href="/about">About</a> <a href="">empty</a> <a>no href</a></nav>
  <h1>Welcome</h1>
  <p>We build   <b>rockets</b>.</p>
  <script>var tracking = true;</script>
  <img src="logo.png" alt="logo">
  <input type="text" value="search">
  <a href="https://careers.acme.test/jobs">Careers</a>
</body>
</html>`

var _ = Describe("Parse", func() {
	It("extracts the title, visible text and links", func() {
		p, err := page.Parse(strings.NewReader(doc))
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Title).To(Equal("Acme Corp"))
		Expect(p.Text).To(Equal("About\nempty\nno href\nWelcome\nWe build\nrockets\n.\nCareers"))
		Expect(p.Text).NotTo(ContainSubstring("tracking"))
		Expect(p.Text).NotTo(ContainSubstring("color: red"))
		Expect(p.Links).To(Equal([]string{"/about", "https://careers.acme.test/jobs"}))
	})

	It("falls back when there is no title", func() {
		p, err := page.Parse(strings.NewReader("<html><body><p>hi</p></body></html>"))
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Title).To(Equal(page.NoTitle))
		Expect(p.Text).To(Equal("hi"))
	})
})

var _ = Describe("Page", func() {
	It("formats contents for prompts", func() {
		p := &page.Page{Title: "T", Text: "body"}
		Expect(p.Contents()).To(Equal("Website title:\nT\nWebsite contents:\nbody\n\n"))
	})

	It("resolves relative links against the page URL", func() {
		p := &page.Page{
			URL:   "https://acme.test/en/index.html",
			Links: []string{"/about", "team", "https://other.test/x", "mailto:hi@acme.test"},
		}
		Expect(p.ResolveLinks()).To(Equal([]string{
			"https://acme.test/about",
			"https://acme.test/en/team",
			"https://other.test/x",
			"mailto:hi@acme.test",
		}))
	})
})

var _ = Describe("Fetcher", func() {
	var (
		server *httptest.Server
		ua     string
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
			if r.URL.Path == "/missing" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, doc)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("fetches with a browser user agent", func() {
		f := &page.Fetcher{}
		p, err := f.Fetch(context.Background(), server.URL+"/")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.URL).To(Equal(server.URL + "/"))
		Expect(p.Title).To(Equal("Acme Corp"))
		Expect(ua).To(Equal(page.DefaultUserAgent))
	})

	It("uses a configured user agent", func() {
		f := &page.Fetcher{UserAgent: "frontier-test"}
		_, err := f.Fetch(context.Background(), server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(ua).To(Equal("frontier-test"))
	})

	It("fails on non-2xx status", func() {
		f := &page.Fetcher{}
		_, err := f.Fetch(context.Background(), server.URL+"/missing")
		Expect(err).To(MatchError(ContainSubstring("404")))
	})
})
