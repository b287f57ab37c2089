package core

import "context"

// Store defines the interface for validation history.
// Only reports are recorded; projects themselves are never persisted.
type Store interface {
	Close() error

	// RecordValidation stores a report and its diagnostics in emission order.
	RecordValidation(ctx context.Context, report *Report) error

	// GetValidation returns a report by ID, or ErrNotFound.
	GetValidation(ctx context.Context, id string) (*Report, error)

	// ListValidations returns the most recent reports, newest first.
	ListValidations(ctx context.Context, limit int) ([]*ReportSummary, error)
}
