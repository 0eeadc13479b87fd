// Package sse provides a minimal SSE (Server-Sent Events) tee-reader and writer.
// The reader parses event streams from upstream LLM providers and Gradio
// apps; the writer frames events for the web UI's streaming endpoints.
//
// Framing follows https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the most recent "id:" value seen on the stream, carried over to
	// later events until another id field replaces it.
	ID string
}
