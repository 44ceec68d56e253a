package enrichment

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type funcTask struct {
	name string
	fn   func()
}

func (t funcTask) Name() string { return t.name }
func (t funcTask) Execute()     { t.fn() }

func TestPoolRunsSubmittedTasks(t *testing.T) {
	pool := NewPool(2, 8)
	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		ok := pool.Submit(funcTask{name: "count", fn: func() {
			ran.Add(1)
			wg.Done()
		}})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}
	wg.Wait()
	pool.Stop()
	if ran.Load() != 5 {
		t.Fatalf("expected 5 tasks run, got %d", ran.Load())
	}
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	// Occupy the single worker.
	pool.Submit(funcTask{name: "block", fn: func() {
		close(started)
		<-release
	}})
	<-started

	// Fill the queue slot.
	if !pool.Submit(funcTask{name: "queued", fn: func() {}}) {
		t.Fatal("expected queued task to be accepted")
	}
	// Nothing left to absorb this one.
	if pool.Submit(funcTask{name: "overflow", fn: func() {}}) {
		t.Fatal("expected overflow task to be rejected")
	}

	close(release)
	pool.Stop()
}

func TestPoolRecoversFromPanics(t *testing.T) {
	pool := NewPool(1, 4)
	done := make(chan struct{})

	pool.Submit(funcTask{name: "panic", fn: func() { panic("boom") }})
	pool.Submit(funcTask{name: "after", fn: func() { close(done) }})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
	pool.Stop()
}

func TestPoolRejectsAfterStop(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Stop()
	if pool.Submit(funcTask{name: "late", fn: func() {}}) {
		t.Fatal("expected submit after stop to be rejected")
	}
	// Stop must be idempotent.
	pool.Stop()
}
