package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scraper/internal/domain"
)

var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrDuplicateBatch = errors.New("batch already exists")
)

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// FilterRules loads the owner's email filter rules in creation order.
// The two nullable columns map to the two rule lists.
func (s *PostgresStore) FilterRules(ctx context.Context, ownerID string) (domain.FilterRules, error) {
	var rules domain.FilterRules
	rows, err := s.db.Query(ctx,
		`SELECT exclude_substring, strip_prefix
		 FROM email_filter_rules
		 WHERE owner_id = $1
		 ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return rules, fmt.Errorf("query filter rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var exclude, prefix *string
		if err := rows.Scan(&exclude, &prefix); err != nil {
			return rules, fmt.Errorf("scan filter rule: %w", err)
		}
		if exclude != nil && *exclude != "" {
			rules.ExcludeSubstrings = append(rules.ExcludeSubstrings, *exclude)
		}
		if prefix != nil && *prefix != "" {
			rules.StripPrefixes = append(rules.StripPrefixes, *prefix)
		}
	}
	return rules, rows.Err()
}

// CreateBatch inserts a pending batch record. Returns
// ErrDuplicateBatch if the batch id is already known.
func (s *PostgresStore) CreateBatch(ctx context.Context, req domain.ScrapeRequest) error {
	urls, err := json.Marshal(req.URLs)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`INSERT INTO scrape_batches (batch_id, owner_id, urls, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (batch_id) DO NOTHING`,
		req.BatchID, req.OwnerID, urls, domain.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateBatch
	}
	return nil
}

// DeleteBatch removes a batch row that never started processing, so
// the job host can resubmit the same batch id. Rows past pending are
// left alone.
func (s *PostgresStore) DeleteBatch(ctx context.Context, batchID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM scrape_batches WHERE batch_id = $1 AND status = $2`,
		batchID, domain.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// MarkProcessing records the start of batch execution.
func (s *PostgresStore) MarkProcessing(ctx context.Context, batchID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE scrape_batches
		 SET status = $2, started_at = NOW(), updated_at = NOW()
		 WHERE batch_id = $1`,
		batchID, domain.StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark batch processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBatchNotFound
	}
	return nil
}

// MarkCompleted persists the full result payload and aggregate count.
func (s *PostgresStore) MarkCompleted(ctx context.Context, batchID string, results []domain.ScrapeResult, totalEmails int) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal batch results: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE scrape_batches
		 SET status = $2, total_emails = $3, results = $4,
		     completed_at = NOW(), updated_at = NOW()
		 WHERE batch_id = $1`,
		batchID, domain.StatusCompleted, totalEmails, payload,
	)
	if err != nil {
		return fmt.Errorf("mark batch completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBatchNotFound
	}
	return nil
}

// GetBatch retrieves the current report for a batch.
func (s *PostgresStore) GetBatch(ctx context.Context, batchID string) (*domain.BatchReport, error) {
	report := domain.BatchReport{BatchID: batchID}
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT owner_id, status, COALESCE(total_emails, 0), results, started_at, completed_at
		 FROM scrape_batches WHERE batch_id = $1`,
		batchID,
	).Scan(&report.OwnerID, &report.Status, &report.TotalEmails,
		&payload, &report.StartedAt, &report.CompletedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query batch: %w", err)
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &report.Results); err != nil {
			return nil, fmt.Errorf("decode batch results: %w", err)
		}
	}
	return &report, nil
}
