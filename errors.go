package scopecap

import (
	"errors"
	"fmt"
)

// Sentinel errors for the capture pipeline. They are returned wrapped with
// query- or channel-level context; test for them with errors.Is.
var (
	// ErrLinkTimeout means a single read on the instrument link timed out.
	ErrLinkTimeout = errors.New("link timeout")

	// ErrLink means the instrument link failed in a non-timeout way.
	ErrLink = errors.New("link failure")

	// ErrPointCountMismatch means a decoded sample count disagrees with the
	// preamble's declared point count.
	ErrPointCountMismatch = errors.New("point count mismatch")

	// ErrUnsupportedOperation means the instrument family has no command for
	// the requested operation on the requested channel.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrTransportTimeout means one query exhausted its retry budget.
	ErrTransportTimeout = errors.New("transport timeout")

	// ErrCaptureFailed means every requested channel failed to capture.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrSerialization means a capture document could not be encoded or decoded.
	ErrSerialization = errors.New("serialization error")

	// ErrUnsupportedSchemaVersion means a capture document declares a schema
	// revision this package does not read.
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")
)

// ChannelError attributes a capture failure to a single channel.
type ChannelError struct {
	Channel Channel
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
