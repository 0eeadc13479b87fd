// Package sink provides presentation sinks for stream.Fold: plain console
// output, live markdown re-rendering, recording and fan-out.
package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/papercomputeco/frontier/pkg/stream"
)

// Plain writes only the newly appended suffix of each value, so a terminal
// shows the response as it streams.
type Plain struct {
	w       io.Writer
	printed int
}

// NewPlain returns a Plain sink writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w}
}

// Render writes the part of text not yet written.
func (p *Plain) Render(text string) error {
	if len(text) <= p.printed {
		return nil
	}
	if _, err := io.WriteString(p.w, text[p.printed:]); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	p.printed = len(text)
	return nil
}

// Recorder keeps every value it is handed.
type Recorder struct {
	mu      sync.Mutex
	renders []string
}

// Render records text.
func (r *Recorder) Render(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, text)
	return nil
}

// Renders returns a copy of every recorded value in order.
func (r *Recorder) Renders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.renders...)
}

// Last returns the most recent value, or "" if nothing was recorded.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.renders) == 0 {
		return ""
	}
	return r.renders[len(r.renders)-1]
}

type tee []stream.Sink

// Tee returns a sink that hands each value to every sink in order, stopping
// at the first error.
func Tee(sinks ...stream.Sink) stream.Sink {
	return tee(sinks)
}

func (t tee) Render(text string) error {
	for _, s := range t {
		if err := s.Render(text); err != nil {
			return err
		}
	}
	return nil
}
