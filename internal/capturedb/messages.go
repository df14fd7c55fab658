package capturedb

import "time"

// CaptureMessage is the information required to make an entry in the
// captures table.
type CaptureMessage struct {
	ID         string // the capture's ULID
	Time       time.Time
	Instrument string // the *IDN? reply
	SourceAddr string // where the instrument link pointed
	Nchannels  int
	Npoints    int // points in the largest channel
	Filename   string
	FileSize   int64
}
