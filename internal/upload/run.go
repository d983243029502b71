package upload

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Rorical/filedrop/internal/filter"
	"github.com/Rorical/filedrop/internal/logging"
	"github.com/Rorical/filedrop/internal/naming"
)

// Runner validates and stores normalized batches.
type Runner struct {
	Allocator *naming.Allocator
	// Workers bounds the number of files processed at once. Zero means
	// GOMAXPROCS.
	Workers int
}

// Run processes every file of nb and returns one outcome per file. Per-file
// failures are reported on the outcome; Run itself never fails.
//
// When uploads are disabled or the destination directory is missing, no file
// is validated or written and every outcome reports MimeAccepted=false.
//
// A nil Runner uses the default allocator and GOMAXPROCS workers.
func (r *Runner) Run(ctx context.Context, nb NormalizedBatch) BatchOutcome {
	if r == nil {
		r = &Runner{}
	}
	p := nb.Policy
	files := nb.Files()

	ctx, span := tracer().Start(ctx, "upload.batch", trace.WithAttributes(
		attribute.Bool("upload.enabled", p.Enabled),
		attribute.String("upload.directory", p.Directory),
		attribute.Int("upload.files", len(files)),
	))
	defer span.End()

	logger := logging.FromContext(ctx)

	results := make([]FileOutcome, len(files))
	for i, f := range files {
		results[i] = FileOutcome{File: f}
	}

	canPersist := p.Enabled && dirExists(p.Directory)
	span.SetAttributes(attribute.Bool("upload.can_persist", canPersist))

	if canPersist {
		var g errgroup.Group
		g.SetLimit(r.workers())
		for i, f := range files {
			g.Go(func() error {
				results[i] = r.process(ctx, p, f)
				return nil
			})
		}
		_ = g.Wait()
	} else if len(files) > 0 {
		logger.Info("upload skipped",
			"enabled", p.Enabled,
			"directory", p.Directory,
			"files", len(files),
		)
	}

	out := BatchOutcome{Enabled: p.Enabled, Directory: p.Directory, Files: results}
	s := out.Summary()
	logger.Info("upload batch done",
		"total", s.Total,
		"accepted", s.Accepted,
		"stored", s.Stored,
		"failed", s.Failed,
	)
	return out
}

func (r *Runner) process(ctx context.Context, p Policy, f PostedFile) (out FileOutcome) {
	out = FileOutcome{File: f}

	ctx, span := tracer().Start(ctx, "upload.file")
	defer span.End()

	logger := logging.FromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			out.StoredPath = ""
			out.Err = fmt.Errorf("panic processing %s: %v", f.Name(), rec)
		}
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, "upload failed")
			logger.Warn("upload file failed", "name", f.Name(), "err", out.Err)
		}
		span.SetAttributes(
			attribute.Bool("upload.mime_accepted", out.MimeAccepted),
			attribute.Bool("upload.stored", out.Stored()),
		)
	}()

	mime := f.ContentType()
	span.SetAttributes(
		attribute.String("upload.name", f.Name()),
		attribute.String("upload.content_type", mime),
	)

	d := filter.Decide(mime, p.filter())
	out.MimeAccepted = d.Allowed
	out.RejectReason = d.Reason
	if !d.Allowed {
		logger.Debug("upload rejected", "name", f.Name(), "content_type", mime, "reason", d.Reason)
		return out
	}

	path, err := r.Allocator.Allocate(ctx, p.Directory, p.RetryBudget)
	if err != nil {
		out.Err = fmt.Errorf("allocate name: %w", err)
		return out
	}
	if path == "" {
		logger.Warn("upload name allocation exhausted", "name", f.Name(), "retry_budget", p.RetryBudget)
		return out
	}

	if err := f.SaveAs(path); err != nil {
		out.Err = fmt.Errorf("save %s: %w", f.Name(), err)
		return out
	}
	out.StoredPath = path
	return out
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
