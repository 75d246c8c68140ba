// Package cron runs the recurring background jobs on a robfig/cron schedule
package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is the body of a scheduled job
type JobFunc func(ctx context.Context) error

// Recorder receives one outcome per job run
type Recorder interface {
	RecordCronRun(job string, ok bool)
}

// Config holds cron runner configuration
type Config struct {
	JobTimeout time.Duration  // Upper bound for a single run
	Location   *time.Location // Time zone schedules are evaluated in
}

// JobInfo describes a registered job
type JobInfo struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	Next      time.Time `json:"next"`
	Prev      time.Time `json:"prev"`
	Runs      int       `json:"runs"`
	LastError string    `json:"last_error,omitempty"`
}

type job struct {
	name    string
	spec    string
	id      cron.EntryID
	fn      JobFunc
	runs    int
	lastErr error
}

// Runner manages scheduled job execution
type Runner struct {
	config   Config
	cron     *cron.Cron
	jobs     map[string]*job
	recorder Recorder
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
	mu       sync.RWMutex
}

// NewRunner creates a new cron runner
func NewRunner(config Config, recorder Recorder, logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())

	if config.JobTimeout <= 0 {
		config.JobTimeout = 10 * time.Minute
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLocation(config.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Runner{
		config:   config,
		cron:     c,
		jobs:     make(map[string]*job),
		recorder: recorder,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// AddJob registers fn under name with a standard cron spec or descriptor
// ("0 3 * * *", "@every 6h")
func (r *Runner) AddJob(name, spec string, fn JobFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	j := &job{name: name, spec: spec, fn: fn}
	id, err := r.cron.AddFunc(spec, func() { r.execute(j) })
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	j.id = id
	r.jobs[name] = j

	r.logger.Info("Scheduled job added",
		zap.String("name", name),
		zap.String("spec", spec),
	)
	return nil
}

// RemoveJob unschedules a job
func (r *Runner) RemoveJob(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jobs[name]; ok {
		r.cron.Remove(j.id)
		delete(r.jobs, name)
	}
}

// RunNow executes a registered job synchronously
func (r *Runner) RunNow(name string) error {
	r.mu.RLock()
	j, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return r.execute(j)
}

// Start starts the scheduler
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("cron runner already running")
	}

	r.running = true
	r.cron.Start()
	r.logger.Info("Cron runner started", zap.Int("jobs", len(r.jobs)))
	return nil
}

// Stop cancels running jobs and waits for them to return
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()
	<-r.cron.Stop().Done()
	r.logger.Info("Cron runner stopped")
}

// IsRunning returns whether the runner is active
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// ListJobs returns registered jobs ordered by name
func (r *Runner) ListJobs() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]JobInfo, 0, len(r.jobs))
	for _, j := range r.jobs {
		entry := r.cron.Entry(j.id)
		info := JobInfo{
			Name: j.name,
			Spec: j.spec,
			Next: entry.Next,
			Prev: entry.Prev,
			Runs: j.runs,
		}
		if j.lastErr != nil {
			info.LastError = j.lastErr.Error()
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(a, b int) bool { return infos[a].Name < infos[b].Name })
	return infos
}

// execute runs a single job with the configured timeout
func (r *Runner) execute(j *job) error {
	ctx, cancel := context.WithTimeout(r.ctx, r.config.JobTimeout)
	defer cancel()

	start := time.Now()
	r.logger.Info("Executing scheduled job", zap.String("name", j.name))

	err := j.fn(ctx)

	r.mu.Lock()
	j.runs++
	j.lastErr = err
	r.mu.Unlock()

	if r.recorder != nil {
		r.recorder.RecordCronRun(j.name, err == nil)
	}

	if err != nil {
		r.logger.Error("Job execution failed",
			zap.String("name", j.name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	r.logger.Info("Job completed",
		zap.String("name", j.name),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
