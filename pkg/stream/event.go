// Package stream folds the incremental text events produced by a backend
// adapter into the growing response text, handing each intermediate value to
// a presentation sink.
//
// Every adapter normalizes its wire format into the same Event shape: a text
// delta to append and a final marker. The fold itself is therefore a pure
// append regardless of which provider produced the events.
package stream

import (
	"iter"

	"github.com/papercomputeco/frontier/pkg/llm"
)

// Event is one incremental unit emitted by a backend while a response is being
// generated.
type Event struct {
	// Delta is the text newly produced since the previous event. It may be
	// empty, e.g. on a terminal event that only carries metadata.
	Delta string

	// Final is true on the last event of a response.
	Final bool

	// StopReason is the provider's completion reason (final event only).
	StopReason string

	// Usage is the token accounting reported by the provider, if any
	// (final event only).
	Usage *llm.Usage
}

// Seq is the lazy, finite, non-restartable sequence of events returned by a
// backend adapter. A non-nil error element is terminal. Breaking out of the
// range loop releases the adapter's transport.
type Seq = iter.Seq2[Event, error]

// FromEvents returns a Seq that yields the given events in order.
func FromEvents(events ...Event) Seq {
	return func(yield func(Event, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Fail returns a Seq that yields a single terminal error.
func Fail(err error) Seq {
	return func(yield func(Event, error) bool) {
		yield(Event{}, err)
	}
}
