package events

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Rorical/filedrop/internal/codec"
	"github.com/Rorical/filedrop/internal/logging"
	internalnats "github.com/Rorical/filedrop/internal/nats"
	"github.com/Rorical/filedrop/internal/upload"
)

// Publisher emits one event per file outcome and one per batch.
type Publisher struct {
	JS  internalnats.Publisher
	Now func() time.Time
}

// Subject picks the subject that describes a file outcome.
func Subject(f upload.FileOutcome) string {
	switch {
	case f.Stored():
		return internalnats.SubjectFileStored
	case f.Failed():
		return internalnats.SubjectFileFailed
	case f.RejectReason != "":
		return internalnats.SubjectFileRejected
	default:
		return internalnats.SubjectFileSkipped
	}
}

func FileFields(batchID string, f upload.FileOutcome, ts time.Time) map[string]any {
	m := map[string]any{
		"v":             1,
		"id":            uuid.NewString(),
		"ts":            ts.UTC().Format(time.RFC3339Nano),
		"batch_id":      batchID,
		"mime_accepted": f.MimeAccepted,
		"stored":        f.Stored(),
	}
	if f.File != nil {
		m["name"] = f.File.Name()
		m["content_type"] = f.File.ContentType()
		m["size"] = f.File.Size()
	}
	if f.RejectReason != "" {
		m["reject_reason"] = f.RejectReason
	}
	if f.Stored() {
		m["stored_name"] = filepath.Base(f.StoredPath)
	}
	if f.Err != nil {
		m["error"] = f.Err.Error()
	}
	return m
}

func BatchFields(batchID string, b upload.BatchOutcome, ts time.Time) map[string]any {
	s := b.Summary()
	return map[string]any{
		"v":        1,
		"id":       uuid.NewString(),
		"ts":       ts.UTC().Format(time.RFC3339Nano),
		"batch_id": batchID,
		"enabled":  b.Enabled,
		"total":    s.Total,
		"accepted": s.Accepted,
		"stored":   s.Stored,
		"failed":   s.Failed,
	}
}

// PublishBatch publishes all events for b. A failed publish is retried on
// the subject's DLQ and does not stop the remaining events; the joined
// errors are returned.
func (p *Publisher) PublishBatch(ctx context.Context, batchID string, b upload.BatchOutcome) error {
	if p == nil || p.JS == nil {
		return fmt.Errorf("nats publisher required")
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	logger := logging.FromContext(ctx)

	var errs []error
	emit := func(subject string, fields map[string]any) {
		payload, err := codec.EncodeFields(fields)
		if err != nil {
			errs = append(errs, err)
			return
		}
		id, _ := fields["id"].(string)
		if _, err := internalnats.PublishEvent(ctx, p.JS, subject, id, payload); err != nil {
			logger.Warn("publish event failed", "subject", subject, "batch_id", batchID, "err", err)
			_, _ = internalnats.PublishDLQ(ctx, p.JS, subject, payload)
			errs = append(errs, err)
		}
	}

	for _, f := range b.Files {
		emit(Subject(f), FileFields(batchID, f, now()))
	}
	emit(internalnats.SubjectBatchDone, BatchFields(batchID, b, now()))

	return errors.Join(errs...)
}
