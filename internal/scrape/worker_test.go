package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"scraper/internal/domain"
	"scraper/internal/monitoring"
)

type signalReporter struct {
	completed chan string
}

func (r *signalReporter) MarkProcessing(context.Context, string) error { return nil }

func (r *signalReporter) MarkCompleted(_ context.Context, batchID string, _ []domain.ScrapeResult, _ int) error {
	r.completed <- batchID
	return nil
}

func TestWorkerProcessesSubmittedBatch(t *testing.T) {
	reporter := &signalReporter{completed: make(chan string, 1)}
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	orch := NewOrchestrator(&fakeFetcher{}, &fakeRenderer{}, &fakeRuleSource{},
		reporter, nil, 1, m, zap.NewNop())

	w := NewWorker(orch, 4, zap.NewNop())
	w.Start()
	defer w.Stop()

	if !w.Submit(domain.ScrapeRequest{BatchID: "b1", OwnerID: "u1", URLs: []string{"https://example.com"}}) {
		t.Fatal("Submit returned false on empty queue")
	}

	select {
	case id := <-reporter.completed:
		if id != "b1" {
			t.Errorf("completed batch = %q, want b1", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch was not processed")
	}
}

func TestWorkerSubmitFullQueue(t *testing.T) {
	reporter := &signalReporter{completed: make(chan string)}
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	orch := NewOrchestrator(&fakeFetcher{}, &fakeRenderer{}, &fakeRuleSource{},
		reporter, nil, 1, m, zap.NewNop())

	// Not started, so nothing drains the queue.
	w := NewWorker(orch, 1, zap.NewNop())

	first := domain.ScrapeRequest{BatchID: "b1", URLs: []string{"https://example.com"}}
	second := domain.ScrapeRequest{BatchID: "b2", URLs: []string{"https://example.com"}}
	if !w.Submit(first) {
		t.Fatal("first Submit returned false")
	}
	if w.Submit(second) {
		t.Error("second Submit returned true on a full queue")
	}
}
