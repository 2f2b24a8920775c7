package app

import (
	"context"
	"fmt"

	"cine-stats/notifier"
	"cine-stats/report"
	"cine-stats/runner"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// JobLoad is the name of the batch job that loads the dataset.
const JobLoad = "load"

// Batch runs the whole pipeline once without prompting: load, head, info and
// every chart in menu order. With WithCharts it loads and renders only the
// named charts.
type Batch struct {
	session  *Session
	notifier notifier.Notifier
	path     string
	charts   []string
	loadErr  error
}

type BatchOption func(*Batch)

// WithCharts limits the batch to the charts registered under keys.
func WithCharts(keys ...string) BatchOption {
	return func(b *Batch) {
		b.charts = keys
	}
}

func NewBatch(session *Session, n notifier.Notifier, path string, opts ...BatchOption) *Batch {
	b := &Batch{session: session, notifier: n, path: path}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run returns an error only when the dataset cannot be loaded or ctx is done.
// Other failures are notified and counted.
func (b *Batch) Run(ctx context.Context) error {
	r, err := b.runner()
	if err != nil {
		return err
	}
	if len(b.charts) > 0 {
		return b.runSelected(ctx, r)
	}

	errs := r.RunAll(ctx)
	if b.loadErr != nil {
		return b.loadErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.done(len(multierr.Errors(errs)), len(r.Jobs()))
	return nil
}

func (b *Batch) runSelected(ctx context.Context, r *runner.Runner) error {
	for _, key := range b.charts {
		if _, ok := report.Lookup(key); !ok {
			return errors.Errorf("unknown chart %q", key)
		}
	}

	if err := r.RunJobNow(ctx, JobLoad); err != nil {
		Notify(b.notifier, err)
		return err
	}

	failed := 0
	for _, key := range b.charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.RunJobNow(ctx, key); err != nil {
			Notify(b.notifier, err)
			failed++
		}
	}

	b.done(failed, len(b.charts)+1)
	return nil
}

func (b *Batch) done(failed, steps int) {
	if failed > 0 {
		b.notifier.Warning("Done", fmt.Sprintf("%d of %d steps failed", failed, steps))
		return
	}
	b.notifier.Success("Done", fmt.Sprintf("%d steps completed for %s", steps, b.path))
}

func (b *Batch) runner() (*runner.Runner, error) {
	r := runner.NewRunner(runner.WithErrorHandler(func(_ string, err error) {
		Notify(b.notifier, err)
	}))

	if err := r.AddFatal(runner.NewJob(JobLoad, func(ctx context.Context) error {
		b.loadErr = b.session.Load(ctx, b.path)
		return b.loadErr
	})); err != nil {
		return nil, err
	}

	jobs := []runner.Job{
		runner.NewJob("head", b.session.ShowHead),
		runner.NewJob("info", b.session.ShowInfo),
	}
	for _, def := range report.Definitions() {
		key := def.Key
		jobs = append(jobs, runner.NewJob(key, func(ctx context.Context) error {
			_, err := b.session.Chart(ctx, key)
			return err
		}))
	}

	for _, job := range jobs {
		if err := r.Add(job); err != nil {
			return nil, err
		}
	}
	return r, nil
}
