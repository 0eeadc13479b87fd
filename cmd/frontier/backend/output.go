package backend

import (
	"fmt"
	"io"

	"github.com/papercomputeco/frontier/pkg/sink"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// Output is a presentation sink with a closing step.
type Output struct {
	stream.Sink

	finish func() error
}

// Finish completes the output after the fold has returned.
func (o *Output) Finish() error {
	return o.finish()
}

// NewOutput picks the sink for a streamed response. Markdown re-renders the
// whole response on every event. Plain output prints only appended text and
// ends with a newline.
func NewOutput(w io.Writer, markdown bool) (*Output, error) {
	if markdown {
		md, err := sink.NewMarkdown(w, sink.MarkdownOptions{})
		if err != nil {
			return nil, fmt.Errorf("creating markdown renderer: %w", err)
		}
		return &Output{Sink: md, finish: md.Finish}, nil
	}

	plain := sink.NewPlain(w)
	return &Output{Sink: plain, finish: func() error {
		_, err := fmt.Fprintln(w)
		return err
	}}, nil
}
