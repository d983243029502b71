package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/Rorical/filedrop/internal/codec"
	"github.com/Rorical/filedrop/internal/logging"
	internalnats "github.com/Rorical/filedrop/internal/nats"
)

// Tail consumes upload events and writes them to the structured log, giving
// operators an audit trail of what was stored and what was refused.
type Tail struct {
	NATS       nats.JetStreamContext
	Durable    string
	MaxDeliver int
	Subject    string
}

func (t *Tail) Run(ctx context.Context) error {
	if t.NATS == nil {
		return fmt.Errorf("nats required")
	}
	if t.Subject == "" {
		t.Subject = internalnats.SubjectAll
	}
	if t.Durable == "" {
		t.Durable = internalnats.ConsumerName("audit", t.Subject)
	}

	if err := internalnats.EnsureConsumer(ctx, t.NATS, t.Subject, t.Durable, t.MaxDeliver); err != nil {
		return err
	}

	sub, err := t.NATS.PullSubscribe(t.Subject, t.Durable)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msgs, err := sub.Fetch(16, nats.MaxWait(2*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			return err
		}

		for _, msg := range msgs {
			if err := Handle(ctx, msg.Subject, msg.Data); err != nil {
				logging.FromContext(ctx).Warn("bad upload event", "subject", msg.Subject, "err", err)
				_ = msg.Term()
				continue
			}
			_ = msg.Ack()
		}
	}
}

// Handle decodes one event payload and logs it.
func Handle(ctx context.Context, subject string, data []byte) error {
	fields, err := codec.DecodeFields(data)
	if err != nil {
		return err
	}
	args := make([]any, 0, 2*len(fields)+2)
	args = append(args, "subject", subject)
	for k, v := range fields {
		args = append(args, k, v)
	}
	logging.FromContext(ctx).Info("upload event", args...)
	return nil
}
