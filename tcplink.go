package scopecap

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// TCPLink is a Link over the raw-socket SCPI service Rigol scopes expose on
// port 5555. Commands go out newline-terminated; text replies come back as
// one newline-terminated line, and binary replies as a definite-length block
// whose size is read from its own header.
type TCPLink struct {
	conn net.Conn
	r    *bufio.Reader
}

var _ Link = (*TCPLink)(nil)

// DialTCP connects to addr (host:port) and returns a ready Link. The caller
// owns the link's lifetime and must Close it.
func DialTCP(addr string) (*TCPLink, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrLink, addr, err)
	}
	return &TCPLink{conn: conn, r: bufio.NewReaderSize(conn, 1<<16)}, nil
}

// Close closes the underlying connection.
func (l *TCPLink) Close() error {
	return l.conn.Close()
}

// Write implements Link.
func (l *TCPLink) Write(cmd string) error {
	if _, err := fmt.Fprintf(l.conn, "%s\n", cmd); err != nil {
		return wrapNetErr(err)
	}
	return nil
}

// Read implements Link. A reply beginning with '#' is read as a complete
// definite-length block, header included, so the framing survives intact for
// the block decoder; anything else is read as a single text line with its
// terminator stripped.
func (l *TCPLink) Read(timeout time.Duration) ([]byte, error) {
	if err := l.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: set deadline: %v", ErrLink, err)
	}
	first, err := l.r.Peek(1)
	if err != nil {
		return nil, wrapNetErr(err)
	}
	if first[0] != '#' {
		line, err := l.r.ReadBytes('\n')
		if err != nil {
			return nil, wrapNetErr(err)
		}
		return bytes.TrimRight(line, "\r\n"), nil
	}
	return l.readBlock()
}

// readBlock reads '#', the length-field width digit, the length field, the
// payload, and the trailing newline, returning all of it.
func (l *TCPLink) readBlock() ([]byte, error) {
	head := make([]byte, 2)
	if _, err := io.ReadFull(l.r, head); err != nil {
		return nil, wrapNetErr(err)
	}
	ndigits := int(head[1] - '0')
	if ndigits < 1 || ndigits > 9 {
		return nil, fmt.Errorf("%w: block header width byte %q", ErrLink, head[1])
	}
	lenfield := make([]byte, ndigits)
	if _, err := io.ReadFull(l.r, lenfield); err != nil {
		return nil, wrapNetErr(err)
	}
	declared := 0
	for _, c := range lenfield {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: block length byte %q", ErrLink, c)
		}
		declared = declared*10 + int(c-'0')
	}

	raw := make([]byte, 0, 2+ndigits+declared+1)
	raw = append(raw, head...)
	raw = append(raw, lenfield...)
	payload := make([]byte, declared)
	if _, err := io.ReadFull(l.r, payload); err != nil {
		return nil, wrapNetErr(err)
	}
	raw = append(raw, payload...)
	if term, err := l.r.ReadByte(); err == nil {
		if term == '\n' {
			raw = append(raw, term)
		} else {
			l.r.UnreadByte()
		}
	}
	return raw, nil
}

func wrapNetErr(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrLinkTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrLink, err)
}
