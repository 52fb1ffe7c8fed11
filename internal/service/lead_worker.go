package service

import (
	"context"
	"sync"
	"time"

	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
)

// LeadWorker delivers lead events in the background so that the contact form
// never waits on analytics.
type LeadWorker interface {
	// Enqueue returns false when the job was dropped because the queue is full.
	Enqueue(event model.UnifiedEvent) bool
	Shutdown()
}

// LeadMetrics counts worker outcomes.
type LeadMetrics interface {
	IncLeadJobDropped()
	IncLeadJobProcessed()
}

type leadWorker struct {
	dispatcher Dispatcher
	queue      chan model.UnifiedEvent
	jobTimeout time.Duration
	log        *logger.Logger
	metrics    LeadMetrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewLeadWorker starts the worker loop. Shutdown must be called to drain it.
func NewLeadWorker(dispatcher Dispatcher, bufferSize int, jobTimeout time.Duration, metrics LeadMetrics, log *logger.Logger) *leadWorker {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	w := &leadWorker{
		dispatcher: dispatcher,
		queue:      make(chan model.UnifiedEvent, bufferSize),
		jobTimeout: jobTimeout,
		log:        log.Named("lead_worker"),
		metrics:    metrics,
	}
	w.wg.Add(1)
	go w.startLoop()
	return w
}

func (w *leadWorker) Enqueue(event model.UnifiedEvent) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.log.Warnw("worker is shut down, dropping lead event", "event_id", event.ID)
		w.dropped()
		return false
	}
	select {
	case w.queue <- event:
		return true
	default:
		w.log.Warnw("lead queue is full, dropping lead event", "event_id", event.ID, "queue_size", cap(w.queue))
		w.dropped()
		return false
	}
}

// Shutdown stops accepting jobs and waits until queued ones are delivered.
func (w *leadWorker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.log.Infow("lead worker shutting down, draining queue", "pending", len(w.queue))
	w.wg.Wait()
	w.log.Info("lead worker stopped")
}

func (w *leadWorker) startLoop() {
	defer w.wg.Done()
	for event := range w.queue {
		w.process(event)
	}
}

func (w *leadWorker) process(event model.UnifiedEvent) {
	ctx := context.Background()
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	results := w.dispatcher.TrackEvent(ctx, event)
	if w.metrics != nil {
		w.metrics.IncLeadJobProcessed()
	}
	w.log.Infow("lead event tracked",
		"event_id", event.ID,
		"succeeded", results.Succeeded(),
		"platforms", len(results),
		"results", results)
}

func (w *leadWorker) dropped() {
	if w.metrics != nil {
		w.metrics.IncLeadJobDropped()
	}
}
