package messaging

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSConfig configures the NATS-backed Messaging implementation.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string
	// Options are passed through to nats.Connect.
	Options []nats.Option
}

// NATS implements Messaging on top of nats-io/nats.go core publish.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server and returns a publisher.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, cfg.Options...)
	if err != nil {
		return nil, err
	}

	return &NATS{conn: conn}, nil
}

// Publish sends one message on the subject. Kafka-style keys have no NATS
// equivalent and are carried as a header instead.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if strings.TrimSpace(destination) == "" {
		return errors.New("messaging: destination is required")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	m := nats.NewMsg(destination)
	m.Data = msg.Body
	if len(msg.Key) > 0 {
		m.Header.Set("Message-Key", string(msg.Key))
	}
	for _, h := range msg.Headers {
		m.Header.Add(h.Key, string(h.Value))
	}

	return n.conn.PublishMsg(m)
}

// Close drains the connection so buffered publishes are flushed.
func (n *NATS) Close() error {
	if n.conn == nil || n.conn.IsClosed() {
		return nil
	}
	return n.conn.Drain()
}
