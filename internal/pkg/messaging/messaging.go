package messaging

import (
	"context"
	"io"
)

// Messaging is a broker-agnostic client that can publish messages.
//
// Implementations wrap Kafka, NATS or any other messaging system. This
// service only produces events; consuming is left to downstream services.
type Messaging interface {
	io.Closer

	// Publish sends a message to the destination (topic/subject).
	Publish(ctx context.Context, destination string, msg OutgoingMessage) error
}

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte

	// Key is commonly used by Kafka for partitioning.
	Key []byte

	// Headers support arbitrary binary values and duplicate keys.
	Headers []Header
}

// Header is a key/value pair used for message headers.
type Header struct {
	// Key is the header name.
	Key string
	// Value is the header value.
	Value []byte
}
