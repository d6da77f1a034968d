package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// jobDelayBetweenRuns is the pause between two queued runs so consecutive
// bookings never hammer the target site back to back.
const jobDelayBetweenRuns = 500 * time.Millisecond

// Job is one queued booking run, pointing at a spooled config file.
type Job struct {
	ConfigPath  string
	Description string
}

// RunFunc executes one booking run from a config file.
type RunFunc func(ctx context.Context, job Job)

// Queue serializes booking runs: exactly one run executes at a time, jobs
// are taken in FIFO order, and a fixed delay separates consecutive runs.
type Queue struct {
	jobs  chan Job
	run   RunFunc
	delay time.Duration

	mu     sync.Mutex
	timers []*time.Timer
}

// NewQueue creates a run queue. Start must be called before jobs execute.
func NewQueue(run RunFunc) *Queue {
	return &Queue{
		jobs:  make(chan Job, 64),
		run:   run,
		delay: jobDelayBetweenRuns,
	}
}

// Start launches the single worker goroutine. It drains until ctx is done.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				q.stopTimers()
				return
			case job := <-q.jobs:
				log.Info("Starting queued run", "config", job.ConfigPath, "context", job.Description)
				q.run(ctx, job)
				log.Info("Queued run finished", "config", job.ConfigPath)

				select {
				case <-ctx.Done():
					q.stopTimers()
					return
				case <-time.After(q.delay):
				}
			}
		}
	}()
}

// Enqueue adds a job to the back of the queue.
func (q *Queue) Enqueue(job Job) {
	select {
	case q.jobs <- job:
	default:
		log.Error("Run queue is full, dropping job", "config", job.ConfigPath)
	}
}

// ScheduleAt enqueues the job once the wall clock reaches at. Times already
// in the past enqueue immediately.
func (q *Queue) ScheduleAt(at time.Time, job Job) {
	delay := time.Until(at)
	if delay <= 0 {
		q.Enqueue(job)
		return
	}
	log.Info("Run scheduled", "config", job.ConfigPath, "at", at.Format(time.RFC3339))
	timer := time.AfterFunc(delay, func() { q.Enqueue(job) })
	q.mu.Lock()
	q.timers = append(q.timers, timer)
	q.mu.Unlock()
}

func (q *Queue) stopTimers() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.timers {
		t.Stop()
	}
	q.timers = nil
}
