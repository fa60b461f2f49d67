package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"scraper/internal/domain"
)

// Worker consumes queued scrape batches one at a time. Batches are
// sequential with respect to each other; parallelism lives inside the
// Orchestrator's seed pool.
type Worker struct {
	orch     *Orchestrator
	queue    chan domain.ScrapeRequest
	stopChan chan struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger
}

func NewWorker(orch *Orchestrator, queueSize int, logger *zap.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Worker{
		orch:     orch,
		queue:    make(chan domain.ScrapeRequest, queueSize),
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop drains nothing: queued batches not yet started stay pending in
// the datastore and can be resubmitted by the job host.
func (w *Worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

// Submit enqueues a batch without blocking. Returns false when the
// queue is full.
func (w *Worker) Submit(req domain.ScrapeRequest) bool {
	select {
	case w.queue <- req:
		return true
	default:
		return false
	}
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case req := <-w.queue:
			if _, err := w.orch.RunBatch(context.Background(), req); err != nil {
				w.logger.Error("batch failed",
					zap.String("batch_id", req.BatchID), zap.Error(err))
			}
		case <-w.stopChan:
			return
		}
	}
}
