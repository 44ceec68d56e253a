// Package enrichment runs background OCR and analysis for uploaded documents.
package enrichment

import (
	"sync"

	"medvault-backend/internal/shared/metrics"
	"medvault-backend/internal/shared/telemetry"
)

// Task is a unit of background work.
type Task interface {
	Name() string
	Execute()
}

// Pool runs tasks on a fixed set of workers with a bounded queue. Submit
// never blocks a request; when the queue is full the task is rejected and
// the caller decides how to surface that.
type Pool struct {
	queue   chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	p := &Pool{queue: make(chan Task, queueSize)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues the task, returning false when the pool is stopped or
// the queue is full.
func (p *Pool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case p.queue <- task:
		return true
	default:
		metrics.IncEnrichmentRejected()
		telemetry.Error("enrichment.queue_full", map[string]any{"task": task.Name()})
		return false
	}
}

// Stop rejects new tasks, drains the queue, and waits for workers to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("enrichment.task_panic", map[string]any{
				"task":  task.Name(),
				"panic": r,
			})
		}
	}()
	task.Execute()
}
