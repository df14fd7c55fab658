package scopecap

import "time"

// Link is the instrument-control transport the capture pipeline runs on. A
// Link is handed to a Session already connected; the Session never opens or
// closes it, and the caller must guarantee exclusive access for the duration
// of each capture. The control channel is stateful and wedges if commands
// overlap, so implementations need no internal locking: all use is strictly
// sequential.
//
// Implementations report a timed-out read by wrapping ErrLinkTimeout and any
// other transport failure by wrapping ErrLink.
type Link interface {
	// Write sends one command, without its protocol terminator.
	Write(cmd string) error

	// Read returns the next complete reply: a text line for text queries, or
	// an entire definite-length block for binary queries.
	Read(timeout time.Duration) ([]byte, error)
}

// DefaultQueryTimeout bounds one reply read unless the Session overrides it.
const DefaultQueryTimeout = 5 * time.Second

// queryRetries is how many additional attempts a timed-out query gets. The
// scope's control link tolerates a re-issued query after a timeout, but a
// query must never be retried once it has answered.
const queryRetries = 2
