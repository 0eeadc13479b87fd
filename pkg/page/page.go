// Package page fetches a web page and reduces it to the title, visible text
// and links that prompt construction needs.
package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/papercomputeco/frontier/pkg/llm"
)

const (
	// DefaultUserAgent is a desktop browser user agent; some sites refuse
	// requests without one.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

	// NoTitle is used when the document has no <title>.
	NoTitle = "No title found"

	maxBodyBytes = 5 << 20
)

// Page is the reduced form of a fetched document.
type Page struct {
	URL   string
	Title string
	Text  string
	Links []string
}

// Contents formats the page for inclusion in a prompt.
func (p *Page) Contents() string {
	return fmt.Sprintf("Website title:\n%s\nWebsite contents:\n%s\n\n", p.Title, p.Text)
}

// ResolveLinks returns the page's links made absolute against its URL.
// Links that cannot be parsed are dropped.
func (p *Page) ResolveLinks() []string {
	base, err := url.Parse(p.URL)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(p.Links))
	for _, link := range p.Links {
		ref, err := url.Parse(link)
		if err != nil {
			continue
		}
		out = append(out, base.ResolveReference(ref).String())
	}
	return out
}

// Source yields pages by URL. *Fetcher is the network implementation.
type Source interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// SourceFunc adapts an ordinary function to the Source interface.
type SourceFunc func(ctx context.Context, url string) (*Page, error)

// Fetch calls f(ctx, url).
func (f SourceFunc) Fetch(ctx context.Context, url string) (*Page, error) {
	return f(ctx, url)
}

// Fetcher downloads and parses pages.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

// Fetch downloads rawURL and parses it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, llm.StatusError(resp))
	}

	p, err := Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	p.URL = rawURL
	return p, nil
}

// Parse reduces an HTML document. Script, style, img and input elements are
// dropped from the body, and the remaining text nodes are trimmed and joined
// with newlines. Links are the non-empty href attributes of every anchor, in
// document order.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	p := &Page{Title: NoTitle}
	if title := doc.Find("title").First(); title.Length() > 0 {
		p.Title = strings.TrimSpace(title.Text())
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			p.Links = append(p.Links, href)
		}
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return p, nil
	}
	body.Find("script, style, img, input").Remove()

	var parts []string
	for _, n := range body.Nodes {
		parts = appendText(parts, n)
	}
	p.Text = strings.Join(parts, "\n")
	return p, nil
}

// appendText walks n depth-first and appends every non-blank text node.
func appendText(parts []string, n *html.Node) []string {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			parts = append(parts, s)
		}
		return parts
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = appendText(parts, c)
	}
	return parts
}
