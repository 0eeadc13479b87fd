package stream

import (
	"fmt"
	"strings"
)

// Sink consumes the growing response text. Render is called once per event
// with the full text accumulated so far, so implementations must tolerate
// many calls in quick succession with monotonically growing input.
type Sink interface {
	Render(text string) error
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(text string) error

// Render calls f(text).
func (f SinkFunc) Render(text string) error {
	return f(text)
}

// Fold consumes seq in emission order, appending each event's delta to the
// aggregate and handing the new full text to sink. It stops after the first
// Final event or when seq is exhausted, and returns the full text.
//
// A nil sink is allowed and only accumulates. An empty sequence never invokes
// the sink and yields "".
//
// If the adapter fails, Fold returns the text accumulated so far together
// with a *Failure whose Partial field carries that same text. Sink errors end
// the fold and are returned wrapped, not as a Failure.
func Fold(seq Seq, sink Sink) (string, error) {
	var text strings.Builder

	for ev, err := range seq {
		if err != nil {
			return text.String(), withPartial(err, text.String())
		}

		text.WriteString(ev.Delta)

		if sink != nil {
			if err := sink.Render(text.String()); err != nil {
				return text.String(), fmt.Errorf("rendering stream: %w", err)
			}
		}

		if ev.Final {
			break
		}
	}

	return text.String(), nil
}

// Collect accumulates seq without presenting intermediate values.
func Collect(seq Seq) (string, error) {
	return Fold(seq, nil)
}
