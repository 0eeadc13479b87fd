// Package brochure builds a short markdown company brochure from the landing
// page of a company website and the pages a model picks as relevant.
package brochure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/logger"
	"github.com/papercomputeco/frontier/pkg/page"
	"github.com/papercomputeco/frontier/pkg/stream"
	"github.com/papercomputeco/frontier/pkg/utils"
)

// DefaultMaxPromptChars bounds the brochure user prompt.
const DefaultMaxPromptChars = 5000

// LinkSystemPrompt asks the model to pick brochure-relevant links as JSON.
const LinkSystemPrompt = "You are provided with a list of links found on a webpage. " +
	"You are able to decide which of the links would be most relevant to include in a brochure about the company, " +
	"such as links to an About page, or a Company page, or Careers/Jobs pages.\n" +
	"You should respond in JSON as in this example:\n" +
	`{
    "links": [
        {"type": "about page", "url": "https://full.url/goes/here/about"},
        {"type": "careers page", "url": "https://another.full.url/careers"}
    ]
}
`

// SystemPrompt asks for the brochure itself.
const SystemPrompt = "You are an assistant that analyzes the contents of several relevant pages from a company website " +
	"and creates a short brochure about the company for prospective customers, investors and recruits. Respond in markdown. " +
	"Include details of company culture, customers and careers/jobs if you have the information."

// Link is one page the model selected.
type Link struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type linkList struct {
	Links []Link `json:"links"`
}

// Builder assembles brochures.
type Builder struct {
	Fetcher  page.Source
	Provider provider.Provider
	Model    string

	// MaxPromptChars truncates the user prompt. Zero means
	// DefaultMaxPromptChars.
	MaxPromptChars int

	// Workers bounds concurrent fetches of the selected pages. Zero uses the
	// page pool default.
	Workers uint

	Logger *slog.Logger
}

func (b *Builder) log() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return logger.Nop()
}

// LinksUserPrompt lists p's links, made absolute, for the link-selection
// call.
func LinksUserPrompt(p *page.Page) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here is the list of links on the website of %s - ", p.URL)
	sb.WriteString("please decide which of these are relevant web links for a brochure about the company, " +
		"respond with the full https URL in JSON format. Do not include Terms of Service, Privacy, email links.\n")
	sb.WriteString("Links:\n")
	sb.WriteString(strings.Join(p.ResolveLinks(), "\n"))
	return sb.String()
}

// SelectLinks asks the model which of p's links belong in a brochure. Replies
// that are not valid JSON are repaired before giving up.
func (b *Builder) SelectLinks(ctx context.Context, p *page.Page) ([]Link, error) {
	req := &llm.ChatRequest{
		Model: b.Model,
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, LinkSystemPrompt),
			llm.NewTextMessage(llm.RoleUser, LinksUserPrompt(p)),
		},
		Format: llm.FormatJSON,
	}
	resp, err := b.Provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("selecting links: %w", err)
	}
	return ParseLinks(resp.Message.Content)
}

// ParseLinks decodes a {"links": [...]} reply, repairing malformed JSON such
// as unquoted keys, trailing commas or surrounding prose.
func ParseLinks(reply string) ([]Link, error) {
	var out linkList
	if err := json.Unmarshal([]byte(reply), &out); err == nil {
		return out.Links, nil
	}

	repaired, err := jsonrepair.JSONRepair(reply)
	if err != nil {
		return nil, fmt.Errorf("repairing link JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return nil, fmt.Errorf("decoding link JSON: %w", err)
	}
	return out.Links, nil
}

// Details collects the landing page and every selected page. Pages that fail
// to load are logged and skipped.
func (b *Builder) Details(ctx context.Context, url string) (string, error) {
	landing, err := b.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Landing Page:\n")
	sb.WriteString(landing.Contents())

	links, err := b.SelectLinks(ctx, landing)
	if err != nil {
		return "", err
	}

	for _, f := range b.fetchAll(ctx, links) {
		if f.err != nil {
			b.log().Warn("skipping page", "type", f.link.Type, "url", f.link.URL, "error", f.err)
			continue
		}
		fmt.Fprintf(&sb, "\n\n%s\n%s", f.link.Type, f.page.Contents())
	}
	return sb.String(), nil
}

type fetched struct {
	link Link
	page *page.Page
	err  error
}

// fetchAll fetches the selected pages concurrently and returns them in link
// order.
func (b *Builder) fetchAll(ctx context.Context, links []Link) []fetched {
	out := make([]fetched, len(links))
	if len(links) == 0 {
		return out
	}

	pool, err := page.NewPool(&page.PoolConfig{
		Source:     b.Fetcher,
		NumWorkers: b.Workers,
		QueueSize:  uint(len(links)),
		Logger:     b.log(),
	})
	if err != nil {
		for i, link := range links {
			out[i] = fetched{link: link, err: err}
		}
		return out
	}

	for i, link := range links {
		out[i].link = link
		b.log().Info("getting page contents", "type", link.Type, "url", link.URL)
		pool.Enqueue(page.Job{
			Ctx: ctx,
			URL: link.URL,
			Done: func(p *page.Page, err error) {
				out[i].page, out[i].err = p, err
			},
		})
	}
	pool.Close()
	return out
}

// UserPrompt builds the brochure request for company, truncated to
// MaxPromptChars characters.
func (b *Builder) UserPrompt(ctx context.Context, company, url string) (string, error) {
	details, err := b.Details(ctx, url)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("You are looking at a company called: %s\n", company) +
		"Here are the contents of its landing page and other relevant pages; " +
		"use this information to build a short brochure of the company in markdown.\n" +
		details

	limit := b.MaxPromptChars
	if limit <= 0 {
		limit = DefaultMaxPromptChars
	}
	return utils.Clip(prompt, limit), nil
}

// Stream builds the brochure for company and streams it into sink.
func (b *Builder) Stream(ctx context.Context, company, url string, sink stream.Sink) (string, error) {
	prompt, err := b.UserPrompt(ctx, company, url)
	if err != nil {
		return "", err
	}
	req := &llm.ChatRequest{
		Model: b.Model,
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, SystemPrompt),
			llm.NewTextMessage(llm.RoleUser, prompt),
		},
	}
	return stream.Fold(b.Provider.Stream(ctx, req), sink)
}
