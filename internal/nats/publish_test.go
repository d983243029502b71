package nats

import (
	"context"
	"errors"
	"testing"

	natslib "github.com/nats-io/nats.go"
)

type fakePublisher struct {
	lastSubject string
	lastData    []byte
	lastOpts    int
	err         error
}

func (f *fakePublisher) Publish(subject string, data []byte, opts ...natslib.PubOpt) (*natslib.PubAck, error) {
	f.lastSubject = subject
	f.lastData = append([]byte(nil), data...)
	f.lastOpts = len(opts)
	return &natslib.PubAck{}, f.err
}

func TestPublish_ValidatesInputs(t *testing.T) {
	fp := &fakePublisher{}
	if _, err := Publish(context.Background(), fp, "", []byte("x")); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Publish(context.Background(), fp, "s", nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPublish_Publishes(t *testing.T) {
	fp := &fakePublisher{}
	_, err := Publish(context.Background(), fp, SubjectFileStored, []byte("b"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if fp.lastSubject != SubjectFileStored {
		t.Fatalf("subject: %q", fp.lastSubject)
	}
	if string(fp.lastData) != "b" {
		t.Fatalf("data: %q", string(fp.lastData))
	}
	if fp.lastOpts != 1 {
		t.Fatalf("expected context option, got %d opts", fp.lastOpts)
	}
}

func TestPublish_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	fp := &fakePublisher{err: boom}
	if _, err := Publish(context.Background(), fp, "a", []byte("b")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestPublishDLQ_UsesDLQSubject(t *testing.T) {
	fp := &fakePublisher{}
	_, err := PublishDLQ(context.Background(), fp, SubjectBatchDone, []byte("z"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if fp.lastSubject != "dlq.upload.batch.done" {
		t.Fatalf("subject: %q", fp.lastSubject)
	}
}

func TestPublishEvent_SetsMessageID(t *testing.T) {
	fp := &fakePublisher{}
	if _, err := PublishEvent(context.Background(), fp, SubjectFileStored, "", []byte("x")); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if _, err := PublishEvent(context.Background(), fp, SubjectFileStored, "evt-1", []byte("x")); err != nil {
		t.Fatalf("err: %v", err)
	}
	if fp.lastOpts != 2 {
		t.Fatalf("expected msg id and context options, got %d", fp.lastOpts)
	}
}

func TestPublish_NilPublisher(t *testing.T) {
	if _, err := Publish(context.Background(), nil, "a", []byte("b")); err == nil {
		t.Fatalf("expected error")
	}
}
