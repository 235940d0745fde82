package sitepush

import (
	"context"
	"time"
)

// URLRecord is the latest submission outcome for one URL discovered in one
// sitemap. Records are keyed by (URL, Source) and outlive the credentials
// that produced them.
type URLRecord struct {
	URL           string    `json:"url"`
	Source        string    `json:"source"`
	Success       bool      `json:"success"`
	LastAttemptAt time.Time `json:"lastAttemptAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *URLRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "record URL required")
	}
	if r.Source == "" {
		return Errorf(EINVALID, "record source required")
	}
	if r.LastAttemptAt.IsZero() {
		return Errorf(EINVALID, "record attempt time required")
	}
	return nil
}

// RecordService persists URL submission outcomes.
type RecordService interface {
	// UpsertRecord creates the record for (URL, Source) or overwrites the
	// success flag and attempt time of the existing one.
	UpsertRecord(ctx context.Context, rec *URLRecord) error

	// FindRecords retrieves records matching the filter.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*URLRecord, error)
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	URL     *string `json:"url"`
	Source  *string `json:"source"`
	Success *bool   `json:"success"`

	// AttemptedAfter limits results to records attempted strictly after
	// the given time.
	AttemptedAfter *time.Time `json:"attemptedAfter"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
