package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is a unit of recurring background work
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on their intervals until stopped
type Scheduler struct {
	jobs    []Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new job scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a job to the scheduler. Jobs with a non-positive interval
// are skipped (disabled by configuration).
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.Interval() <= 0 {
		log.Printf("⏸️  [SCHEDULER] Job %s disabled (no interval)", job.Name())
		return
	}

	s.jobs = append(s.jobs, job)
	log.Printf("✅ [SCHEDULER] Registered job: %s (every %v)", job.Name(), job.Interval())
}

// Start begins running all registered jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	log.Printf("🚀 [SCHEDULER] Starting with %d jobs", len(s.jobs))

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(job)
	}
}

// runLoop ticks a single job until the scheduler stops
func (s *Scheduler) runLoop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(s.ctx); err != nil {
				log.Printf("❌ [SCHEDULER] Job %s failed: %v", job.Name(), err)
			} else {
				log.Printf("✅ [SCHEDULER] Job %s completed in %v", job.Name(), time.Since(start))
			}
		}
	}
}

// Stop cancels all jobs and waits for in-flight runs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Println("🛑 [SCHEDULER] Stopping...")
	s.cancel()
	s.wg.Wait()
	log.Println("🛑 [SCHEDULER] Stopped")
}
