package runner

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Job is a named unit of work run by a Runner.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j *funcJob) Name() string {
	return j.name
}

func (j *funcJob) Run(ctx context.Context) error {
	return j.run(ctx)
}

// NewJob wraps a function as a Job.
func NewJob(name string, run func(ctx context.Context) error) Job {
	return &funcJob{name: name, run: run}
}

// ErrorHandler is called with every failed job.
type ErrorHandler func(name string, err error)

type Option func(*Runner)

func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Runner) {
		r.onError = h
	}
}

// Runner runs registered jobs in registration order, one at a time.
type Runner struct {
	jobs    map[string]Job
	order   []string
	fatal   map[string]bool
	onError ErrorHandler
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		jobs:  make(map[string]Job),
		fatal: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a job whose failure is reported but does not stop RunAll.
func (r *Runner) Add(job Job) error {
	return r.add(job, false)
}

// AddFatal registers a job whose failure stops RunAll.
func (r *Runner) AddFatal(job Job) error {
	return r.add(job, true)
}

func (r *Runner) add(job Job, fatal bool) error {
	name := job.Name()
	if _, exists := r.jobs[name]; exists {
		return errors.Errorf("job %s already registered", name)
	}
	r.jobs[name] = job
	r.order = append(r.order, name)
	r.fatal[name] = fatal
	return nil
}

// Jobs lists registered job names in run order.
func (r *Runner) Jobs() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// RunJobNow runs a single registered job.
func (r *Runner) RunJobNow(ctx context.Context, name string) error {
	job, exists := r.jobs[name]
	if !exists {
		return errors.Errorf("job %s not registered", name)
	}
	return r.run(ctx, job)
}

// RunAll runs every job and returns the combined failures. It stops after a
// failed fatal job or when ctx is done.
func (r *Runner) RunAll(ctx context.Context) error {
	var errs error
	for _, name := range r.order {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, errors.Wrap(err, "run interrupted"))
		}

		err := r.run(ctx, r.jobs[name])
		if err == nil {
			continue
		}
		if r.onError != nil {
			r.onError(name, err)
		}
		errs = multierr.Append(errs, errors.Wrapf(err, "job %s", name))
		if r.fatal[name] {
			log.WithField("job", name).Warn("fatal job failed, skipping remaining jobs")
			break
		}
	}
	return errs
}

func (r *Runner) run(ctx context.Context, job Job) error {
	name := job.Name()
	logger := log.WithField("job", name)
	logger.Debug("starting job")
	startTime := time.Now()

	if err := job.Run(ctx); err != nil {
		logger.WithError(err).Error("job failed")
		return err
	}

	logger.WithField("duration", time.Since(startTime)).Debug("job completed")
	return nil
}
