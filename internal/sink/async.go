package sink

import (
	"log"
	"sync"

	"empire-monitor/internal/reconcile"
)

// Async dispatches write batches to a single worker goroutine so ingestion
// never blocks on the database. One worker keeps every batch in submission
// order, which is what the increment-based upserts require. When the buffer
// fills, Apply blocks, pushing backpressure up to the frame receive.
type Async struct {
	inner  *Writer
	ch     chan []reconcile.WriteOp
	wg     sync.WaitGroup
	logger *log.Logger

	closeOnce sync.Once
}

func NewAsync(inner *Writer, buffer int, logger *log.Logger) *Async {
	a := &Async{
		inner:  inner,
		ch:     make(chan []reconcile.WriteOp, buffer),
		logger: logger,
	}
	a.wg.Add(1)
	go a.drain()
	return a
}

func (a *Async) drain() {
	defer a.wg.Done()
	for ops := range a.ch {
		if err := a.inner.Apply(ops); err != nil {
			// A failed batch is logged and skipped; event processing
			// must not stop because one write did.
			a.logger.Printf("write batch failed: %v", err)
		}
	}
}

// Apply enqueues a batch for the worker.
func (a *Async) Apply(ops []reconcile.WriteOp) error {
	a.ch <- ops
	return nil
}

// Close stops accepting batches and waits for the queue to flush.
func (a *Async) Close() {
	a.closeOnce.Do(func() {
		close(a.ch)
	})
	a.wg.Wait()
}
