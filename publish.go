package scopecap

import (
	"encoding/json"
	"fmt"

	zmq "github.com/pebbe/zmq4"
)

// Publisher broadcasts capture summaries on a ZeroMQ PUB socket, so live
// monitors can watch acquisitions without touching the data files. Only
// summaries travel here; the raw data stays in the capture document.
type Publisher struct {
	socket *zmq.Socket
}

// NewPublisher binds a PUB socket on the given TCP port.
func NewPublisher(port int) (*Publisher, error) {
	socket, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return nil, fmt.Errorf("create PUB socket: %w", err)
	}
	if err := socket.Bind(fmt.Sprintf("tcp://*:%d", port)); err != nil {
		socket.Close()
		return nil, fmt.Errorf("bind PUB port %d: %w", port, err)
	}
	return &Publisher{socket: socket}, nil
}

// PublishCapture sends one two-frame message per captured channel: the
// channel name as the subscription topic, then the JSON summary.
func (p *Publisher) PublishCapture(c *Capture) error {
	for i := range c.Channels {
		cc := &c.Channels[i]
		msg, err := json.Marshal(cc.Summarize())
		if err != nil {
			return err
		}
		if _, err := p.socket.SendMessage(cc.Channel.String(), msg); err != nil {
			return fmt.Errorf("publish %s: %w", cc.Channel, err)
		}
	}
	return nil
}

// Close closes the PUB socket.
func (p *Publisher) Close() error {
	return p.socket.Close()
}
