package sse

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"strings"
)

const maxLineBytes = 1 << 20

// Reader parses an event stream. A tee destination, when given, receives
// the source bytes exactly as read, which is what --raw dumps.
type Reader struct {
	scanner *bufio.Scanner
	started bool

	// lastID persists across events, as the last-event-ID buffer does in a
	// browser EventSource.
	lastID string
	typ    string
	data   []string
	fields bool
}

// NewReader returns a Reader parsing events from src.
func NewReader(src io.Reader) *Reader {
	return NewTeeReader(src, io.Discard)
}

// NewTeeReader returns a Reader parsing events from src that copies every
// byte it reads to dest.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	if dest != io.Discard {
		src = io.TeeReader(src, dest)
	}
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	scanner.Split(scanLines)
	return &Reader{scanner: scanner}
}

// Next blocks until a complete event is available and returns it. An event
// ends at a blank line; fields still pending when the source runs out belong
// to an incomplete event and are dropped. Next returns nil, nil once the
// source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if !r.started {
			line = strings.TrimPrefix(line, "\ufeff")
			r.started = true
		}

		if line == "" {
			if ev, ok := r.dispatch(); ok {
				return ev, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		r.field(line)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	r.typ, r.data, r.fields = "", nil, false
	return nil, nil
}

// Events returns the remaining events as a sequence. A read error is the
// last element. Breaking out of the loop leaves the Reader usable.
func (r *Reader) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := r.Next()
			if err != nil {
				yield(Event{}, err)
				return
			}
			if ev == nil || !yield(*ev, nil) {
				return
			}
		}
	}
}

func (r *Reader) field(line string) {
	name, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")

	switch name {
	case "data":
		r.data = append(r.data, value)
	case "event":
		r.typ = value
	case "id":
		if !strings.ContainsRune(value, 0) {
			r.lastID = value
		}
	default:
		// retry and unknown fields
		return
	}
	r.fields = true
}

// dispatch returns the event built so far and starts a new one. Blocks that
// set no known field are not events.
func (r *Reader) dispatch() (*Event, bool) {
	if !r.fields {
		return nil, false
	}
	ev := &Event{Type: r.typ, Data: strings.Join(r.data, "\n"), ID: r.lastID}
	r.typ, r.data, r.fields = "", nil, false
	return ev, true
}

// scanLines splits on "\n", "\r\n" and a lone "\r".
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A trailing "\r" may be the first half of "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
