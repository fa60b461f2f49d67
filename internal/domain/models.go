package domain

import "time"

// Batch lifecycle states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// ScrapeRequest is the payload the job host submits for one batch.
// Immutable once accepted; URLs are processed in the order given.
type ScrapeRequest struct {
	BatchID string   `json:"batch_id"`
	OwnerID string   `json:"owner_id"`
	URLs    []string `json:"urls"`
}

// FilterRules holds the owner's email filters, loaded once per batch.
// Prefix rules are applied in order (first match wins); all exclude
// rules are checked.
type FilterRules struct {
	ExcludeSubstrings []string
	StripPrefixes     []string
}

// ScrapeResult is the per-seed output: the original seed URL and the
// filtered, deduplicated emails found for it. Emails is never nil.
type ScrapeResult struct {
	LinkScraped string   `json:"link_scraped"`
	Emails      []string `json:"emails"`
}

// BatchReport is the persisted aggregate for one batch.
type BatchReport struct {
	BatchID     string         `json:"batch_id"`
	OwnerID     string         `json:"owner_id"`
	Status      string         `json:"status"`
	TotalEmails int            `json:"total_emails"`
	Results     []ScrapeResult `json:"results,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// BatchOutput is what a batch invocation returns to the job host.
type BatchOutput struct {
	Success bool           `json:"success"`
	Results []ScrapeResult `json:"results"`
}
