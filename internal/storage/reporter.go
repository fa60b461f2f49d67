package storage

import (
	"context"

	"go.uber.org/zap"

	"scraper/internal/domain"
)

// Reporter records batch lifecycle transitions in Postgres and mirrors
// the status into the Redis cache. Postgres is authoritative: its
// failure fails the transition, while a cache write failure is only
// logged.
type Reporter struct {
	pg     *PostgresStore
	cache  *RedisStore
	logger *zap.Logger
}

func NewReporter(pg *PostgresStore, cache *RedisStore, logger *zap.Logger) *Reporter {
	return &Reporter{pg: pg, cache: cache, logger: logger}
}

func (r *Reporter) MarkProcessing(ctx context.Context, batchID string) error {
	if err := r.pg.MarkProcessing(ctx, batchID); err != nil {
		return err
	}
	if err := r.cache.SetBatchStatus(ctx, batchID, domain.StatusProcessing); err != nil {
		r.logger.Warn("failed to cache batch status",
			zap.String("batch_id", batchID), zap.Error(err))
	}
	return nil
}

func (r *Reporter) MarkCompleted(ctx context.Context, batchID string, results []domain.ScrapeResult, totalEmails int) error {
	if err := r.pg.MarkCompleted(ctx, batchID, results, totalEmails); err != nil {
		return err
	}
	if err := r.cache.SetBatchStatus(ctx, batchID, domain.StatusCompleted); err != nil {
		r.logger.Warn("failed to cache batch status",
			zap.String("batch_id", batchID), zap.Error(err))
	}
	return nil
}
