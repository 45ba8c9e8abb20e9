package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is how often jobs run when no interval is configured.
const DefaultInterval = 10 * time.Minute

const jobTimeout = 30 * time.Second

// Job is one unit of periodic work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler periodically runs the refresh jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	interval  time.Duration
	log       logrus.FieldLogger
}

// New creates a new Scheduler.
func New(interval time.Duration, log logrus.FieldLogger, jobs ...Job) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		jobs:      jobs,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		s.log.Info("scheduler: no jobs configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Tag("refresh").Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.WithField("interval", s.interval).Info("scheduler started")
	return nil
}

// RunOnce runs every job concurrently and waits for them.
func (s *Scheduler) RunOnce() {
	s.log.Debug("scheduler: running refresh")

	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			log := s.log.WithField("job", job.Name)
			start := time.Now()
			if err := job.Run(ctx); err != nil {
				log.WithError(err).Warn("scheduler: job failed")
				return
			}
			log.WithField("took", time.Since(start)).Debug("scheduler: job completed")
		}(job)
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
