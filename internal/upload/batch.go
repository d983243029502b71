package upload

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("upload batch not configured")

// Batch is the configure-then-execute form of Normalize and Runner.Run.
// Setup may be called again to replace the configuration; each Execute
// produces a fresh outcome.
type Batch struct {
	runner *Runner
	nb     *NormalizedBatch
}

func NewBatch(r *Runner) *Batch {
	if r == nil {
		r = &Runner{}
	}
	return &Batch{runner: r}
}

func (b *Batch) Setup(p Policy, files []PostedFile) *Batch {
	nb := Normalize(p, files)
	b.nb = &nb
	return b
}

// Normalized returns the batch prepared by the last Setup.
func (b *Batch) Normalized() (NormalizedBatch, bool) {
	if b.nb == nil {
		return NormalizedBatch{}, false
	}
	return *b.nb, true
}

func (b *Batch) Execute(ctx context.Context) (BatchOutcome, error) {
	if b.nb == nil {
		return BatchOutcome{}, ErrNotConfigured
	}
	return b.runner.Run(ctx, *b.nb), nil
}
