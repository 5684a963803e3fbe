package services

import (
	"context"
	"sync"
	"time"

	"pitwall/internal/metrics"
	"pitwall/pkg/logger"

	"github.com/go-co-op/gocron"
)

type Schedule int

const (
	Hourly Schedule = iota
	Daily           // 04:00 UTC, after the overnight race-weekend traffic
)

// Job is a unit of background work. Execute receives a context that is
// cancelled when the scheduler stops.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
	Schedule() Schedule
}

type SchedulerService struct {
	cron    *gocron.Scheduler
	jobs    map[string]*gocron.Job
	order   []string
	log     logger.Logger
	running bool
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewSchedulerService() *SchedulerService {
	cron := gocron.NewScheduler(time.UTC)
	// a slow reconcile must not stack up behind itself
	cron.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())

	return &SchedulerService{
		cron:   cron,
		jobs:   make(map[string]*gocron.Job),
		log:    logger.New("services").File("scheduler.service"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *SchedulerService) run(job Job) {
	log := s.log.Function("run")
	start := time.Now()

	err := job.Execute(s.ctx)
	status := "ok"
	if err != nil {
		status = "error"
		log.Er("scheduled job failed", err, "job", job.Name(), "duration", time.Since(start))
	} else {
		log.Info("scheduled job finished", "job", job.Name(), "duration", time.Since(start))
	}

	metrics.RecordJobRun(job.Name(), status, time.Since(start))
}

// AddJob registers job under its name. Names are unique.
func (s *SchedulerService) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("AddJob")

	if _, exists := s.jobs[job.Name()]; exists {
		return log.Error("job already registered", "job", job.Name())
	}

	var every *gocron.Scheduler
	switch job.Schedule() {
	case Daily:
		every = s.cron.Every(1).Day().At("04:00")
	case Hourly:
		every = s.cron.Every(1).Hour()
	default:
		return log.Error("unknown job schedule", "job", job.Name(), "schedule", job.Schedule())
	}

	scheduled, err := every.Tag(job.Name()).Do(s.run, job)
	if err != nil {
		return log.Err("failed to schedule job", err, "job", job.Name())
	}

	s.jobs[job.Name()] = scheduled
	s.order = append(s.order, job.Name())
	log.Info("job registered", "job", job.Name(), "schedule", job.Schedule())

	return nil
}

// Start runs the scheduler in the background. It is a no-op without jobs or
// when already running.
func (s *SchedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("Start")

	if s.running {
		return nil
	}

	if len(s.jobs) == 0 {
		log.Info("no jobs registered, scheduler idle")
		return nil
	}

	s.cron.StartAsync()
	s.running = true

	for _, name := range s.order {
		log.Info("job scheduled", "job", name, "nextRun", s.jobs[name].NextRun())
	}

	return nil
}

// Stop cancels running jobs and halts the scheduler.
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.log.Function("Stop").Info("stopping scheduler")
	s.cancel()
	s.cron.Stop()
	s.running = false

	return nil
}

func (s *SchedulerService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun reports when the named job fires next. ok is false for unknown jobs
// and while the scheduler is stopped.
func (s *SchedulerService) NextRun(name string) (next time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[name]
	if !exists || !s.running {
		return time.Time{}, false
	}
	return job.NextRun(), true
}
