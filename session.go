package scopecap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kestrel-lab/scopecap/tmc"
)

// Session drives captures over one instrument link. Every query issues
// sequentially on the calling goroutine: the scope's control channel is
// documented to hang or return garbage when commands overlap or arrive out
// of order, so nothing here is concurrent and a Session must not be shared
// between goroutines. Back-to-back captures on one Session are fine;
// overlapped ones are not.
type Session struct {
	link    Link
	cmds    CommandSet
	timeout time.Duration
	logger  *log.Logger
}

// NewSession wraps an already-connected link with the command set for its
// instrument family. The session never opens or closes the link.
func NewSession(link Link, cmds CommandSet) *Session {
	return &Session{
		link:    link,
		cmds:    cmds,
		timeout: DefaultQueryTimeout,
		logger:  log.New(io.Discard, "", 0),
	}
}

// SetQueryTimeout overrides the per-query reply timeout.
func (s *Session) SetQueryTimeout(d time.Duration) { s.timeout = d }

// SetLogger directs problem messages (per-channel failures, odd instrument
// states) to lg.
func (s *Session) SetLogger(lg *log.Logger) { s.logger = lg }

// Capture runs one full acquisition over the requested channels, in request
// order. Channels that are disabled on the scope are skipped silently;
// channels that fail are recorded in the result's Failures without aborting
// the rest. Only when every requested channel fails does Capture return an
// error wrapping ErrCaptureFailed.
//
// ctx is consulted between queries only: once a command is on the wire its
// reply must be drained, so cancellation never interrupts a query in flight
// and always leaves the link reusable.
func (s *Session) Capture(ctx context.Context, channels []Channel) (*Capture, error) {
	c := &Capture{ID: ulid.Make().String(), Time: time.Now()}

	idn, err := s.opQuery(Chan1, OpIdentify)
	if err != nil {
		return nil, fmt.Errorf("identify instrument: %w", err)
	}
	c.Instrument = strings.TrimSpace(idn)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trig, err := s.fetchTrigger(ctx)
	if err != nil {
		return nil, fmt.Errorf("trigger settings: %w", err)
	}
	c.Trigger = trig

	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cc, err := s.captureChannel(ctx, ch)
		if err != nil {
			s.logger.Printf("capture %s: channel %s failed: %v", c.ID, ch, err)
			c.Failures = append(c.Failures, ChannelError{Channel: ch, Err: err})
			continue
		}
		if cc == nil { // disabled on the scope
			continue
		}
		c.Channels = append(c.Channels, *cc)
	}

	if len(c.Channels) == 0 && len(c.Failures) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCaptureFailed, joinFailures(c.Failures))
	}
	return c, nil
}

// captureChannel runs the fixed per-channel sequence: enabled check, channel
// configuration, preamble, waveform block, decode. A nil ChannelCapture with
// a nil error means the channel is disabled and was skipped; no further
// queries are issued for it.
func (s *Session) captureChannel(ctx context.Context, ch Channel) (*ChannelCapture, error) {
	enabledRaw, err := s.opQuery(ch, OpChannelEnabled)
	if err != nil {
		return nil, err
	}
	enabled, err := parseEnabled(enabledRaw)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	cfgRaw := map[string]string{cfgEnabled: enabledRaw}
	for _, q := range []struct {
		mnem string
		op   Op
	}{
		{cfgScale, OpChannelScale},
		{cfgOffset, OpChannelOffset},
		{cfgCoupling, OpChannelCoupling},
		{cfgProbe, OpChannelProbe},
		{cfgBandwidth, OpChannelBandwidthLimit},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.opQuery(ch, q.op)
		if errors.Is(err, ErrUnsupportedOperation) {
			continue // family gap, e.g. probe attenuation on MATH
		}
		if err != nil {
			return nil, err
		}
		cfgRaw[q.mnem] = raw
	}
	cfg, err := parseChannelConfig(cfgRaw)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.runOp(ch, OpSelectSource); err != nil {
		return nil, err
	}
	praw, err := s.opQuery(ch, OpPreamble)
	if err != nil {
		return nil, err
	}
	pre, err := ParsePreamble(praw)
	if err != nil {
		return nil, err
	}
	if pre.Mode != 0 {
		s.logger.Printf("channel %s: acquisition mode %d untested, proceeding", ch, pre.Mode)
	}
	enc, err := s.cmds.SampleEncoding(pre.Format)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply, err := s.runOp(ch, OpWaveformData)
	if err != nil {
		return nil, err
	}
	block, err := tmc.Decode(reply)
	if err != nil {
		return nil, err
	}
	wf, err := DecodeWaveform(pre, block, enc)
	if err != nil {
		return nil, err
	}

	return &ChannelCapture{
		Channel:  ch,
		Preamble: pre,
		Block:    block,
		Encoding: enc,
		Waveform: wf,
		Config:   cfg,
	}, nil
}

// fetchTrigger collects the trigger settings tree. Mode and sweep always;
// the mode-specific subtree only for EDGE, the one family whose capture has
// been exercised against hardware.
func (s *Session) fetchTrigger(ctx context.Context) (TriggerConfig, error) {
	raw := map[string]string{}
	mode, err := s.opQuery(Chan1, OpTriggerMode)
	if err != nil {
		return TriggerConfig{}, err
	}
	raw[trigMode] = mode

	if err := ctx.Err(); err != nil {
		return TriggerConfig{}, err
	}
	sweep, err := s.opQuery(Chan1, OpTriggerSweep)
	if err != nil {
		return TriggerConfig{}, err
	}
	raw[trigSweep] = sweep

	if strings.ToUpper(strings.TrimSpace(mode)) == "EDGE" {
		for _, q := range []struct {
			mnem string
			op   Op
		}{
			{trigEdgeSource, OpTriggerEdgeSource},
			{trigEdgeLevel, OpTriggerEdgeLevel},
			{trigEdgeSlope, OpTriggerEdgeSlope},
		} {
			if err := ctx.Err(); err != nil {
				return TriggerConfig{}, err
			}
			reply, err := s.opQuery(Chan1, q.op)
			if err != nil {
				return TriggerConfig{}, err
			}
			raw[q.mnem] = reply
		}
	} else {
		s.logger.Printf("trigger mode %s: capturing mode and sweep only", strings.TrimSpace(mode))
	}
	return parseTriggerConfig(raw)
}

// runOp issues op on the link and returns the raw reply bytes, nil for
// write-only operations.
func (s *Session) runOp(ch Channel, op Op) ([]byte, error) {
	cmd, err := s.cmds.Command(ch, op)
	if err != nil {
		return nil, err
	}
	return s.query(cmd)
}

// opQuery issues op and returns its reply as text, exactly as received.
func (s *Session) opQuery(ch Channel, op Op) (string, error) {
	raw, err := s.runOp(ch, op)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// query sends one command and, for operations that reply, reads the
// response. A timed-out read re-issues the whole query up to queryRetries
// more times; a query that has answered is never retried. Exhausting the
// budget reports ErrTransportTimeout, which aborts only the current channel.
func (s *Session) query(cmd Command) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= queryRetries; attempt++ {
		if err := s.link.Write(cmd.Text); err != nil {
			return nil, fmt.Errorf("write %q: %w", cmd.Text, err)
		}
		if cmd.Reply == ReplyNone {
			return nil, nil
		}
		reply, err := s.link.Read(s.timeout)
		if err == nil {
			return reply, nil
		}
		if !errors.Is(err, ErrLinkTimeout) {
			return nil, fmt.Errorf("read reply to %q: %w", cmd.Text, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %q unanswered after %d attempts: %v",
		ErrTransportTimeout, cmd.Text, queryRetries+1, lastErr)
}

func joinFailures(failures []ChannelError) string {
	msgs := make([]string, len(failures))
	for i := range failures {
		msgs[i] = failures[i].Error()
	}
	return strings.Join(msgs, "; ")
}
