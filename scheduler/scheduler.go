// Package scheduler runs the periodic sweeps on cron schedules evaluated in
// the application timezone. Every job is also invocable on demand through the
// /jobs endpoint.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with a by-name job registry.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]func(context.Context) error
}

func New(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: make(map[string]func(context.Context) error),
	}
}

// Register adds a named job on the given cron spec.
func (s *Scheduler) Register(name, spec string, run func(context.Context) error) error {
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.runJob(name, run); err != nil {
			log.Printf("job %q failed: %v", name, err)
		}
	}); err != nil {
		return fmt.Errorf("register job %q (%s): %w", name, spec, err)
	}
	s.jobs[name] = run
	log.Printf("job %q scheduled at %q", name, spec)
	return nil
}

// runJob isolates one invocation: a panic aborts only that run.
func (s *Scheduler) runJob(name string, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	start := time.Now()
	log.Printf("job %q starting", name)
	if err := run(context.Background()); err != nil {
		return err
	}
	log.Printf("job %q finished in %s", name, time.Since(start).Round(time.Millisecond))
	return nil
}

// RunNow executes a registered job immediately.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	run, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.runJob(name, func(context.Context) error { return run(ctx) })
}

// Has reports whether a job name is registered.
func (s *Scheduler) Has(name string) bool {
	_, ok := s.jobs[name]
	return ok
}

// Names lists the registered job names, sorted.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() { s.cron.Stop() }
