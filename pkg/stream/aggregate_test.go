package stream_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// recordingSink captures every value handed to Render.
type recordingSink struct {
	renders []string
	err     error
}

func (r *recordingSink) Render(text string) error {
	r.renders = append(r.renders, text)
	return r.err
}

// countingSeq yields events and counts how many the consumer pulled.
func countingSeq(pulled *int, events ...stream.Event) stream.Seq {
	return func(yield func(stream.Event, error) bool) {
		for _, ev := range events {
			*pulled++
			if !yield(ev, nil) {
				return
			}
		}
	}
}

var _ = Describe("Fold", func() {
	var sink *recordingSink

	BeforeEach(func() {
		sink = &recordingSink{}
	})

	It("hands the growing text to the sink after each delta", func() {
		seq := stream.FromEvents(
			stream.Event{Delta: "Hel"},
			stream.Event{Delta: "lo, "},
			stream.Event{Delta: "world!", Final: true},
		)

		text, err := stream.Fold(seq, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Hello, world!"))
		Expect(sink.renders).To(Equal([]string{"Hel", "Hello, ", "Hello, world!"}))
	})

	It("ends with the exact concatenation of all deltas", func() {
		deltas := []string{"a", "", "bc", " ", "ü", "\n", "déf"}
		events := make([]stream.Event, 0, len(deltas))
		for _, d := range deltas {
			events = append(events, stream.Event{Delta: d})
		}

		text, err := stream.Fold(stream.FromEvents(events...), sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(strings.Join(deltas, "")))
		Expect(sink.renders).To(HaveLen(len(deltas)))
		Expect(sink.renders[len(sink.renders)-1]).To(Equal(text))
	})

	It("stops processing after the final event", func() {
		pulled := 0
		seq := countingSeq(&pulled,
			stream.Event{Delta: "one "},
			stream.Event{Delta: "two", Final: true, StopReason: "stop"},
			stream.Event{Delta: " three"},
			stream.Event{Delta: " four"},
		)

		text, err := stream.Fold(seq, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("one two"))
		Expect(pulled).To(Equal(2))
		Expect(sink.renders).To(HaveLen(2))
	})

	It("renders a final event that only carries metadata", func() {
		seq := stream.FromEvents(
			stream.Event{Delta: "done"},
			stream.Event{Final: true, Usage: &llm.Usage{CompletionTokens: 1}},
		)

		text, err := stream.Fold(seq, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("done"))
		Expect(sink.renders).To(Equal([]string{"done", "done"}))
	})

	It("never invokes the sink for an empty sequence", func() {
		text, err := stream.Fold(stream.FromEvents(), sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())
		Expect(sink.renders).To(BeEmpty())
	})

	It("accepts a nil sink", func() {
		text, err := stream.Collect(stream.FromEvents(
			stream.Event{Delta: "quiet"},
			stream.Event{Delta: " fold", Final: true},
		))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("quiet fold"))
	})

	It("accepts a SinkFunc", func() {
		var last string
		_, err := stream.Fold(stream.FromEvents(stream.Event{Delta: "x"}), stream.SinkFunc(func(s string) error {
			last = s
			return nil
		}))
		Expect(err).NotTo(HaveOccurred())
		Expect(last).To(Equal("x"))
	})

	Context("when the adapter fails mid-stream", func() {
		It("surfaces a transport failure carrying the partial text", func() {
			cause := errors.New("connection reset by peer")
			seq := func(yield func(stream.Event, error) bool) {
				if !yield(stream.Event{Delta: "Hel"}, nil) {
					return
				}
				if !yield(stream.Event{Delta: "lo, "}, nil) {
					return
				}
				yield(stream.Event{}, stream.Transport("openai", cause))
			}

			text, err := stream.Fold(seq, sink)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, stream.ErrTransport)).To(BeTrue())
			Expect(errors.Is(err, cause)).To(BeTrue())
			Expect(text).To(Equal("Hello, "))
			Expect(stream.PartialText(err)).To(Equal("Hello, "))

			var failure *stream.Failure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Backend).To(Equal("openai"))
			Expect(sink.renders).To(Equal([]string{"Hel", "Hello, "}))
		})

		It("halts on a malformed chunk", func() {
			seq := func(yield func(stream.Event, error) bool) {
				if !yield(stream.Event{Delta: "ok"}, nil) {
					return
				}
				yield(stream.Event{}, stream.Malformed("ollama", []byte("{not json"), errors.New("unexpected EOF")))
			}

			_, err := stream.Fold(seq, sink)
			Expect(errors.Is(err, stream.ErrMalformedChunk)).To(BeTrue())
			Expect(stream.PartialText(err)).To(Equal("ok"))
		})

		It("classifies foreign errors as transport failures", func() {
			_, err := stream.Fold(stream.Fail(errors.New("boom")), sink)
			Expect(errors.Is(err, stream.ErrTransport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("boom"))
			Expect(sink.renders).To(BeEmpty())
		})
	})

	It("reports an unknown backend without invoking the sink", func() {
		_, err := stream.Fold(stream.Fail(stream.UnknownBackend("unsupported-model")), sink)
		Expect(errors.Is(err, stream.ErrUnknownBackend)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("unsupported-model"))
		Expect(stream.PartialText(err)).To(BeEmpty())
		Expect(sink.renders).To(BeEmpty())
	})

	It("stops and wraps a sink error", func() {
		sink.err = errors.New("terminal closed")
		pulled := 0
		seq := countingSeq(&pulled, stream.Event{Delta: "a"}, stream.Event{Delta: "b"})

		text, err := stream.Fold(seq, sink)
		Expect(err).To(MatchError(ContainSubstring("rendering stream")))
		Expect(errors.Is(err, sink.err)).To(BeTrue())
		Expect(errors.Is(err, stream.ErrTransport)).To(BeFalse())
		Expect(text).To(Equal("a"))
		Expect(pulled).To(Equal(1))
	})
})

var _ = Describe("PartialText", func() {
	It("is empty for errors that are not failures", func() {
		Expect(stream.PartialText(errors.New("plain"))).To(BeEmpty())
		Expect(stream.PartialText(nil)).To(BeEmpty())
	})
})
