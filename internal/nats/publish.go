package nats

import (
	"context"
	"fmt"

	nats "github.com/nats-io/nats.go"
)

// Publisher is the part of nats.JetStreamContext used to emit events.
type Publisher interface {
	Publish(subject string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

func Publish(ctx context.Context, js Publisher, subject string, payload []byte) (*nats.PubAck, error) {
	return publish(ctx, js, subject, payload)
}

// PublishEvent publishes with a message id, so JetStream drops a redelivered
// copy of the same event inside the stream's duplicate window.
func PublishEvent(ctx context.Context, js Publisher, subject, msgID string, payload []byte) (*nats.PubAck, error) {
	if msgID == "" {
		return nil, fmt.Errorf("message id required")
	}
	return publish(ctx, js, subject, payload, nats.MsgId(msgID))
}

func PublishDLQ(ctx context.Context, js Publisher, subject string, payload []byte) (*nats.PubAck, error) {
	return publish(ctx, js, DLQSubject(subject), payload)
}

func publish(ctx context.Context, js Publisher, subject string, payload []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream required")
	}
	if subject == "" {
		return nil, fmt.Errorf("subject required")
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("payload required for %s", subject)
	}
	if ctx != nil {
		opts = append(opts, nats.Context(ctx))
	}
	ack, err := js.Publish(subject, payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", subject, err)
	}
	return ack, nil
}
