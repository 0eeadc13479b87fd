package stream

import (
	"fmt"
	"strings"
)

// Snapshots turns a cumulative-snapshot wire format, where every chunk carries
// the whole response so far, into true deltas. Adapters for such formats keep
// one Snapshots per streaming session.
type Snapshots struct {
	Backend string

	last string
}

// Delta returns the text appended since the previous snapshot. A snapshot
// that does not extend the previous one cannot be expressed as an append and
// is reported as a malformed chunk.
func (s *Snapshots) Delta(snapshot string) (string, error) {
	if !strings.HasPrefix(snapshot, s.last) {
		return "", Malformed(s.Backend, []byte(snapshot),
			fmt.Errorf("snapshot does not extend previous %d bytes", len(s.last)))
	}

	delta := snapshot[len(s.last):]
	s.last = snapshot
	return delta, nil
}

// Text returns the most recent snapshot.
func (s *Snapshots) Text() string {
	return s.last
}
