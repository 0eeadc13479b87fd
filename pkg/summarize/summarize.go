// Package summarize produces a short markdown summary of a web page.
package summarize

import (
	"context"
	"fmt"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/page"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// SystemPrompt instructs the model to summarize while ignoring navigation.
const SystemPrompt = "You are an assistant that analyzes the contents of a website " +
	"and provides a short summary, ignoring text that might be navigation related. " +
	"Respond in markdown."

// UserPrompt builds the user turn for p.
func UserPrompt(p *page.Page) string {
	return fmt.Sprintf("You are looking at website titled %s\n"+
		"The contents of this website is as follows; "+
		"please provide a short summary of this website in markdown. "+
		"If it includes news or announcements, then summarize these too.\n\n%s", p.Title, p.Text)
}

// Messages returns the conversation that asks for a summary of p.
func Messages(p *page.Page) []llm.Message {
	return []llm.Message{
		llm.NewTextMessage(llm.RoleSystem, SystemPrompt),
		llm.NewTextMessage(llm.RoleUser, UserPrompt(p)),
	}
}

// Summarizer fetches pages and streams their summaries.
type Summarizer struct {
	Fetcher  page.Source
	Provider provider.Provider
	Model    string
}

// Stream fetches url and streams the summary into sink, returning the full
// text.
func (s *Summarizer) Stream(ctx context.Context, url string, sink stream.Sink) (string, error) {
	p, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	req := &llm.ChatRequest{Model: s.Model, Messages: Messages(p)}
	return stream.Fold(s.Provider.Stream(ctx, req), sink)
}
