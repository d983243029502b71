package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"
)

const (
	DefaultMaxDeliver = 5
	// DefaultMaxAge bounds how long outcome events are retained.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// StreamManager is the part of nats.JetStreamContext used to set up streams.
type StreamManager interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
}

func EnsureStream(ctx context.Context, js StreamManager) error {
	stream, err := js.StreamInfo(StreamName, nats.Context(ctx))
	if err == nil && stream != nil {
		return nil
	}
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("lookup stream: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		MaxMsgs:   -1,
		MaxBytes:  -1,
		MaxAge:    DefaultMaxAge,
	}, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("add stream: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      dlqStreamName(),
		Subjects:  []string{DLQSubject(SubjectAll)},
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		MaxMsgs:   -1,
		MaxBytes:  -1,
		MaxAge:    DefaultMaxAge,
	}, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("add dlq stream: %w", err)
	}
	return nil
}

func EnsureConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string, maxDeliver int) error {
	if maxDeliver <= 0 {
		maxDeliver = DefaultMaxDeliver
	}
	cfg := &nats.ConsumerConfig{
		Durable:       durable,
		Description:   fmt.Sprintf("%s consumer", subject),
		AckPolicy:     nats.AckExplicitPolicy,
		FilterSubject: subject,
		MaxDeliver:    maxDeliver,
	}
	_, err := js.AddConsumer(StreamName, cfg, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrConsumerNameAlreadyInUse) {
		return fmt.Errorf("add consumer %s: %w", durable, err)
	}
	return nil
}

func dlqStreamName() string {
	return StreamName + "_DLQ"
}

// ConsumerName turns a subject into a valid durable consumer name.
func ConsumerName(prefix, subject string) string {
	n := strings.NewReplacer(".", "_", "*", "STAR", ">", "ALL").Replace(subject)
	return prefix + "_" + n
}
