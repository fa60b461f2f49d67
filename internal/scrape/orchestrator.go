package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"scraper/internal/domain"
	"scraper/internal/monitoring"
)

// RuleSource loads the filter rules configured by a batch owner.
type RuleSource interface {
	FilterRules(ctx context.Context, ownerID string) (domain.FilterRules, error)
}

// BatchReporter records batch lifecycle transitions in the datastore.
type BatchReporter interface {
	MarkProcessing(ctx context.Context, batchID string) error
	MarkCompleted(ctx context.Context, batchID string, results []domain.ScrapeResult, totalEmails int) error
}

// RenderCache remembers render-fallback results between batches so the
// expensive browser path is not repeated for recently rendered pages.
// Both methods are best effort.
type RenderCache interface {
	CachedRender(ctx context.Context, pageURL string) ([]string, bool)
	StoreRender(ctx context.Context, pageURL string, emails []string)
}

// Orchestrator runs scrape batches: for each seed URL it fetches the
// page, extracts emails, escalates to the headless render only when
// static extraction finds nothing, follows contact/about links one hop,
// filters, and records the per-seed result. Failures never cross seed
// or sub-link boundaries.
type Orchestrator struct {
	fetcher     PageFetcher
	renderer    Renderer
	rules       RuleSource
	reporter    BatchReporter
	renderCache RenderCache // may be nil
	seedWorkers int
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

func NewOrchestrator(
	fetcher PageFetcher,
	renderer Renderer,
	rules RuleSource,
	reporter BatchReporter,
	renderCache RenderCache,
	seedWorkers int,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Orchestrator {
	if seedWorkers < 1 {
		seedWorkers = 1
	}
	return &Orchestrator{
		fetcher:     fetcher,
		renderer:    renderer,
		rules:       rules,
		reporter:    reporter,
		renderCache: renderCache,
		seedWorkers: seedWorkers,
		metrics:     metrics,
		logger:      logger,
	}
}

// RunBatch processes every seed URL in the request and persists the
// aggregate report. The returned results are index-aligned with the
// input URLs regardless of per-seed outcomes. Only datastore failures
// make the invocation itself fail.
func (o *Orchestrator) RunBatch(ctx context.Context, req domain.ScrapeRequest) (*domain.BatchOutput, error) {
	if err := o.reporter.MarkProcessing(ctx, req.BatchID); err != nil {
		return nil, fmt.Errorf("mark batch %s processing: %w", req.BatchID, err)
	}

	rules, err := o.rules.FilterRules(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load filter rules for owner %s: %w", req.OwnerID, err)
	}

	o.logger.Info("batch started",
		zap.String("batch_id", req.BatchID),
		zap.Int("urls", len(req.URLs)),
		zap.Int("exclude_rules", len(rules.ExcludeSubstrings)),
		zap.Int("prefix_rules", len(rules.StripPrefixes)))

	// Seeds are independent; fan out to a bounded pool, writing each
	// result by index so output order always equals input order.
	results := make([]domain.ScrapeResult, len(req.URLs))
	sem := make(chan struct{}, o.seedWorkers)
	var wg sync.WaitGroup
	for i, seed := range req.URLs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, seed string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.scrapeSeed(ctx, seed, rules)
		}(i, seed)
	}
	wg.Wait()

	total := 0
	for _, res := range results {
		total += len(res.Emails)
	}

	if err := o.reporter.MarkCompleted(ctx, req.BatchID, results, total); err != nil {
		return nil, fmt.Errorf("mark batch %s completed: %w", req.BatchID, err)
	}

	o.metrics.IncBatchesTotal()
	o.logger.Info("batch completed",
		zap.String("batch_id", req.BatchID),
		zap.Int("total_emails", total))
	return &domain.BatchOutput{Success: true, Results: results}, nil
}

// scrapeSeed runs the full pipeline for one seed URL. It always
// returns a result; any failure, including a panic, collapses to an
// empty email list for this seed only.
func (o *Orchestrator) scrapeSeed(ctx context.Context, seedURL string, rules domain.FilterRules) (res domain.ScrapeResult) {
	res = domain.ScrapeResult{LinkScraped: seedURL, Emails: []string{}}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic while scraping seed",
				zap.String("url", seedURL), zap.Any("panic", r))
			o.metrics.IncErrorsTotal("seed_panic")
			res = domain.ScrapeResult{LinkScraped: seedURL, Emails: []string{}}
		}
		o.metrics.ObserveSeedDuration(time.Since(start).Seconds())
	}()

	home := o.fetcher.FetchResilient(ctx, seedURL)
	o.metrics.IncPagesFetched()
	if !home.OK() {
		// Sub-links derive from the homepage HTML, so there is nothing
		// further to try for this seed.
		o.logger.Warn("seed fetch failed",
			zap.String("url", seedURL),
			zap.String("kind", home.Err.Kind.String()),
			zap.Error(home.Err.Err))
		o.metrics.IncFetchFailures(home.Err.Kind.String())
		return res
	}

	found := newOrderedSet()
	found.AddAll(ExtractEmails(home.HTML))
	if found.Len() == 0 {
		found.AddAll(o.renderEmails(ctx, home.FinalURL))
	}

	for _, link := range ExtractContactLinks(home.HTML, home.FinalURL) {
		o.scrapeSubLink(ctx, link, found)
	}

	res.Emails = ApplyFilters(found.Values(), rules.ExcludeSubstrings, rules.StripPrefixes)
	o.metrics.AddEmailsFound(len(res.Emails))
	o.logger.Info("seed scraped",
		zap.String("url", seedURL),
		zap.Int("emails", len(res.Emails)))
	return res
}

// scrapeSubLink merges one contact/about page's emails into found. A
// failed or empty sub-link affects only itself.
func (o *Orchestrator) scrapeSubLink(ctx context.Context, link string, found *orderedSet) {
	out := o.fetcher.FetchResilient(ctx, link)
	o.metrics.IncPagesFetched()
	if !out.OK() {
		o.logger.Warn("sub-link fetch failed",
			zap.String("url", link),
			zap.String("kind", out.Err.Kind.String()),
			zap.Error(out.Err.Err))
		o.metrics.IncFetchFailures(out.Err.Kind.String())
		return
	}
	emails := ExtractEmails(out.HTML)
	if len(emails) == 0 {
		emails = o.renderEmails(ctx, out.FinalURL)
	}
	found.AddAll(emails)
}

// renderEmails is the best-effort escalation path: a render failure
// contributes zero emails and never surfaces to the caller.
func (o *Orchestrator) renderEmails(ctx context.Context, pageURL string) []string {
	if o.renderCache != nil {
		if emails, ok := o.renderCache.CachedRender(ctx, pageURL); ok {
			o.metrics.IncRenderCacheHits()
			return emails
		}
	}

	o.metrics.IncRenders()
	htmlContent, err := o.renderer.RenderHTML(ctx, pageURL)
	if err != nil {
		o.logger.Warn("render fallback failed",
			zap.String("url", pageURL), zap.Error(err))
		o.metrics.IncErrorsTotal("render_failed")
		return nil
	}

	emails := ExtractEmails(htmlContent)
	if o.renderCache != nil {
		o.renderCache.StoreRender(ctx, pageURL, emails)
	}
	return emails
}
