package summarize_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/page"
	"github.com/papercomputeco/frontier/pkg/sink"
	"github.com/papercomputeco/frontier/pkg/summarize"
	testutils "github.com/papercomputeco/frontier/pkg/utils/test"
)

var _ = Describe("Messages", func() {
	It("puts the title and text in the user prompt", func() {
		msgs := summarize.Messages(&page.Page{Title: "Hapsoul", Text: "News: we launched."})
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].Role).To(Equal(llm.RoleSystem))
		Expect(msgs[0].Content).To(Equal(summarize.SystemPrompt))
		Expect(msgs[1].Role).To(Equal(llm.RoleUser))
		Expect(msgs[1].Content).To(HavePrefix("You are looking at website titled Hapsoul\n"))
		Expect(msgs[1].Content).To(HaveSuffix("\n\nNews: we launched."))
	})
})

var _ = Describe("Summarizer", func() {
	It("fetches the page and streams the summary", func() {
		fetcher := testutils.NewMockFetcher(map[string]*page.Page{
			"https://hapsoul.test": {Title: "Hapsoul", Text: "Hello"},
		})
		mock := testutils.NewMockProvider("# Summary\n\nA greeting page.")
		mock.ChunkSize = 4
		rec := &sink.Recorder{}

		s := &summarize.Summarizer{Fetcher: fetcher, Provider: mock, Model: "llama3.2"}
		text, err := s.Stream(context.Background(), "https://hapsoul.test", rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("# Summary\n\nA greeting page."))
		Expect(rec.Last()).To(Equal(text))
		Expect(len(rec.Renders())).To(BeNumerically(">", 1))

		reqs := mock.Requests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Model).To(Equal("llama3.2"))
	})

	It("returns fetch errors without calling the model", func() {
		mock := testutils.NewMockProvider("unused")
		s := &summarize.Summarizer{Fetcher: testutils.NewMockFetcher(nil), Provider: mock}
		_, err := s.Stream(context.Background(), "https://missing.test", nil)
		Expect(err).To(HaveOccurred())
		Expect(mock.Requests()).To(BeEmpty())
	})
})
