// Package scheduler runs the recurring advice reports on cron expressions
// from config and delivers the results through the configured notifiers.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gridiron-ai/gridiron/internal/agent"
	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/fantasy"
	"github.com/gridiron-ai/gridiron/internal/logging"
	"github.com/gridiron-ai/gridiron/internal/notify"
)

// Reporter produces the recurring advice reports. Week 0 selects the current
// NFL week.
type Reporter interface {
	StartSit(ctx context.Context, week int) (*agent.Result, error)
	Waivers(ctx context.Context, week int) (*agent.Result, error)
}

// Job describes one registered cron entry. Next is zero until Start.
type Job struct {
	Name string
	Spec string
	Next time.Time
}

type entry struct {
	name string
	spec string
	id   cron.EntryID
}

// Service owns the cron runtime for recurring advice runs. Jobs are declared
// in config; an empty cron expression leaves that report unscheduled.
type Service struct {
	cron     *cron.Cron
	notifier notify.Notifier

	mu      sync.Mutex
	entries []entry
	runCtx  context.Context
	started bool
}

// New registers the reports enabled in cfg. Invalid cron expressions fail
// here rather than at first fire. Overlapping fires of the same job are
// skipped, not queued.
func New(cfg config.ScheduleConfig, reporter Reporter, notifier notify.Notifier) (*Service, error) {
	if reporter == nil {
		return nil, errors.New("scheduler reporter is required")
	}

	s := &Service{
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		notifier: notifier,
	}

	jobs := []struct {
		name  string
		spec  string
		title string
		run   func(ctx context.Context) (*agent.Result, error)
	}{
		{
			name:  "start_sit",
			spec:  cfg.StartSit,
			title: "Start/Sit",
			run: func(ctx context.Context) (*agent.Result, error) {
				return reporter.StartSit(ctx, 0)
			},
		},
		{
			name:  "waivers",
			spec:  cfg.Waivers,
			title: "Waiver Wire",
			run: func(ctx context.Context) (*agent.Result, error) {
				return reporter.Waivers(ctx, 0)
			},
		},
	}
	for _, job := range jobs {
		spec := strings.TrimSpace(job.spec)
		if spec == "" {
			continue
		}
		job := job
		id, err := s.cron.AddFunc(spec, func() {
			s.fire(job.name, job.title, job.run)
		})
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q for %s: %w", spec, job.name, err)
		}
		s.entries = append(s.entries, entry{name: job.name, spec: spec, id: id})
	}
	return s, nil
}

// Start begins cron execution. The context becomes the parent of every
// scheduled run.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}
	s.runCtx = ctx
	s.cron.Start()
	s.started = true
	logging.Logger().Info("scheduler started", "jobs", len(s.entries))
	return nil
}

// Stop halts scheduling and waits for in-flight runs to finish or ctx to
// expire. Stopping an unstarted service is a no-op.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		logging.Logger().Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs reports the registered entries with their next fire time.
func (s *Service) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]Job, 0, len(s.entries))
	for _, e := range s.entries {
		jobs = append(jobs, Job{Name: e.name, Spec: e.spec, Next: s.cron.Entry(e.id).Next})
	}
	return jobs
}

// fire runs one report and delivers the result. Failures are logged, never
// propagated; the next fire gets a fresh attempt.
func (s *Service) fire(name, title string, run func(context.Context) (*agent.Result, error)) {
	ctx := s.fireContext()
	started := time.Now()

	res, err := run(ctx)
	if err != nil {
		logging.Logger().Warn("scheduled run failed", "job", name, "err", err)
		return
	}
	logging.Logger().Info(
		"scheduled run complete",
		"job", name,
		"duration", time.Since(started).Round(time.Millisecond),
		"turns", res.TurnsUsed,
		"cost_usd", res.Cost,
	)

	if s.notifier == nil {
		return
	}
	subject := fmt.Sprintf("%s Week %d", title, fantasy.CurrentWeek(time.Now()))
	if err := s.notifier.Send(ctx, subject, res.Content); err != nil {
		logging.Logger().Warn("scheduled run delivery failed", "job", name, "err", err)
	}
}

func (s *Service) fireContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx != nil {
		return s.runCtx
	}
	return context.Background()
}
