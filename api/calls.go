package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// callTTL bounds how long a started call waits for its result stream.
const callTTL = 5 * time.Minute

// pendingCall is a prediction started by POST /gradio_api/call/:fn and not
// yet streamed.
type pendingCall struct {
	fn      string
	message string
	label   string
	created time.Time
}

// calls holds pending calls by event id. Each call is streamed at most once.
type calls struct {
	mu      sync.Mutex
	pending map[string]pendingCall
	now     func() time.Time
}

func newCalls() *calls {
	return &calls{pending: make(map[string]pendingCall), now: time.Now}
}

// add registers call and returns its event id. Expired calls are dropped.
func (c *calls) add(call pendingCall) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, p := range c.pending {
		if now.Sub(p.created) > callTTL {
			delete(c.pending, id)
		}
	}

	id := uuid.NewString()
	call.created = now
	c.pending[id] = call
	return id
}

// take removes and returns the call for id if it belongs to fn.
func (c *calls) take(fn, id string) (pendingCall, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call, ok := c.pending[id]
	if !ok || call.fn != fn || c.now().Sub(call.created) > callTTL {
		return pendingCall{}, false
	}
	delete(c.pending, id)
	return call, true
}

func (c *calls) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
