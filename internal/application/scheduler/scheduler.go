package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"go.uber.org/zap"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (models.CycleResult, error)
}

// CycleHook observes every finished cycle.
type CycleHook func(result models.CycleResult, err error)

type Scheduler struct {
	log          *zap.Logger
	runner       CycleRunner
	interval     time.Duration
	retryInitial time.Duration
	hooks        []CycleHook
	after        func(time.Duration) <-chan time.Time
}

type Option func(*Scheduler)

func WithCycleHook(hook CycleHook) Option {
	return func(s *Scheduler) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithTimer replaces time.After, mostly for tests.
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) {
		if after != nil {
			s.after = after
		}
	}
}

func New(log *zap.Logger, runner CycleRunner, interval, retryInitial time.Duration, opts ...Option) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scheduler{
		log:          log,
		runner:       runner,
		interval:     interval,
		retryInitial: retryInitial,
		after:        time.After,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes the first cycle right away and then one cycle per timer until ctx is done.
// Cycles never overlap; the next timer is armed only after the previous cycle returns.
func (s *Scheduler) Run(ctx context.Context) error {
	const op = "scheduler.Run"
	logger := s.log.With(zap.String("op", op))

	retry := s.newBackOff()

	for {
		result, err := s.runner.RunCycle(ctx)
		for _, hook := range s.hooks {
			hook(result, err)
		}

		if ctx.Err() != nil {
			logger.Info("scheduler stopped")
			return nil
		}

		delay := s.interval
		if err != nil {
			delay = s.retryDelay(retry)
			logger.Info("cycle failed, scheduling retry", zap.Duration("delay", delay), zap.Error(err))
		} else {
			if retry != nil {
				retry.Reset()
			}
			logger.Debug("next cycle scheduled", zap.Duration("delay", delay))
		}

		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return nil
		case <-s.after(delay):
		}
	}
}

func (s *Scheduler) newBackOff() *backoff.ExponentialBackOff {
	if s.retryInitial <= 0 {
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInitial
	b.MaxInterval = s.interval
	b.Reset()
	return b
}

func (s *Scheduler) retryDelay(retry *backoff.ExponentialBackOff) time.Duration {
	if retry == nil {
		return s.interval
	}

	delay := retry.NextBackOff()
	if delay == backoff.Stop || delay > s.interval {
		return s.interval
	}
	return delay
}
