package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named unit of scheduled work. Run receives the scheduler's context,
// which is cancelled once Stop has drained running jobs.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// JobStatus describes a registered job
type JobStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Next      time.Time `json:"next,omitempty"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int       `json:"runs"`
}

type registration struct {
	id       cron.EntryID
	schedule string
	lastRun  time.Time
	lastErr  error
	runs     int
}

// Scheduler runs named jobs on cron schedules. A job still running when its
// next tick arrives is skipped for that tick.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*registration
}

// New creates a scheduler. Schedules take a leading seconds field and are
// evaluated in UTC.
func New(log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With().Str("component", "scheduler").Logger(),
		jobs:   make(map[string]*registration),
	}
}

// Start starts the scheduler and logs each job's next run
func (s *Scheduler) Start() {
	s.cron.Start()
	status := s.Status()
	for _, st := range status {
		s.log.Info().Str("job", st.Name).Time("next", st.Next).Msg("job scheduled")
	}
	s.log.Info().Int("jobs", len(status)).Msg("scheduler started")
}

// Stop waits for running jobs, then cancels the job context
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.log.Info().Msg("scheduler stopped")
}

// AddJob registers a job under its name, e.g.:
//   - "0 0 3 * * *"  - 03:00 UTC daily
//   - "@every 30m"   - every 30 minutes
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	reg := &registration{schedule: schedule}
	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.run(job, reg)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, job.Name(), err)
	}
	reg.id = id
	s.jobs[job.Name()] = reg

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("job registered")

	return nil
}

// RunNow executes a registered or ad hoc job immediately, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	s.mu.Lock()
	reg := s.jobs[job.Name()]
	s.mu.Unlock()

	s.log.Info().Str("job", job.Name()).Msg("running job immediately")
	return s.run(job, reg)
}

// Status returns the registered jobs sorted by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	now := time.Now().UTC()
	for name, reg := range s.jobs {
		entry := s.cron.Entry(reg.id)
		next := entry.Next
		if next.IsZero() && entry.Schedule != nil {
			next = entry.Schedule.Next(now)
		}
		st := JobStatus{
			Name:     name,
			Schedule: reg.schedule,
			Next:     next,
			LastRun:  reg.lastRun,
			Runs:     reg.runs,
		}
		if reg.lastErr != nil {
			st.LastError = reg.lastErr.Error()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) run(job Job, reg *registration) error {
	start := time.Now()
	err := job.Run(s.ctx)

	logger := s.log.With().Str("job", job.Name()).Dur("duration", time.Since(start)).Logger()
	if err != nil {
		logger.Error().Err(err).Msg("job failed")
	} else {
		logger.Debug().Msg("job completed")
	}

	if reg != nil {
		s.mu.Lock()
		reg.lastRun = start.UTC()
		reg.lastErr = err
		reg.runs++
		s.mu.Unlock()
	}
	return err
}
