package stream

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/frontier/pkg/utils"
)

var (
	// ErrTransport marks a network, connection or non-2xx failure while
	// waiting for the next event.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedChunk marks a chunk that could not be normalized into an
	// Event.
	ErrMalformedChunk = errors.New("malformed chunk")

	// ErrUnknownBackend marks a backend or model identifier with no
	// registered adapter. It is raised before any event is requested.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Failure is the error surfaced by a backend adapter and by Fold. It carries
// whatever text had accumulated before the failure so callers may display
// partial output. Match the failure class with errors.Is against
// ErrTransport, ErrMalformedChunk or ErrUnknownBackend.
type Failure struct {
	// Kind is one of ErrTransport, ErrMalformedChunk, ErrUnknownBackend.
	Kind error

	// Backend is the canonical provider name, when known.
	Backend string

	// Partial is the aggregate text at the time of the failure.
	Partial string

	// Err is the underlying cause, if any.
	Err error
}

func (f *Failure) Error() string {
	msg := f.Kind.Error()
	if f.Backend != "" {
		msg = f.Backend + ": " + msg
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes both the failure class and the underlying cause to
// errors.Is and errors.As.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

// Transport wraps err as a transport failure for the given backend.
func Transport(backend string, err error) error {
	return &Failure{Kind: ErrTransport, Backend: backend, Err: err}
}

// Malformed reports a chunk payload that could not be decoded.
func Malformed(backend string, payload []byte, err error) error {
	cause := fmt.Errorf("decoding %q: %w", utils.Truncate(string(payload), 120), err)
	return &Failure{Kind: ErrMalformedChunk, Backend: backend, Err: cause}
}

// UnknownBackend reports a backend or model identifier with no adapter.
func UnknownBackend(name string) error {
	return &Failure{Kind: ErrUnknownBackend, Err: fmt.Errorf("%q", name)}
}

// PartialText returns the partial aggregate carried by err, or an empty
// string if err is not a Failure.
func PartialText(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Partial
	}
	return ""
}

// withPartial returns a copy of err as a Failure carrying partial. Errors that
// did not originate as a Failure are classified as transport failures.
func withPartial(err error, partial string) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		cp := *f
		cp.Partial = partial
		return &cp
	}
	return &Failure{Kind: ErrTransport, Partial: partial, Err: err}
}
