// Package engine runs the checking pipeline for structural models: field-level
// schema checks, the referential-integrity validator, and optional recording
// of the resulting report in a history store.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/structview/structview/pkg/core"
	"github.com/structview/structview/pkg/schema"
	"github.com/structview/structview/pkg/validate"
)

// stubMessage is returned by Analyze until a solver is wired in.
const stubMessage = "Analysis not yet implemented. This is a placeholder response."

// Engine validates and analyzes models.
type Engine struct {
	store  core.Store
	logger *slog.Logger
	now    func() time.Time
}

// Config holds engine configuration.
type Config struct {
	// Store records validation reports. Nil disables history.
	Store core.Store
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Clock overrides time.Now for report timestamps.
	Clock func() time.Time
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:  cfg.Store,
		logger: logger,
		now:    now,
	}
}

// Store returns the configured history store, or nil.
func (e *Engine) Store() core.Store {
	return e.store
}

// Validate checks p and returns a report. The report ID is empty unless the
// report was recorded in the history store. Field-level violations are
// returned as schema.Errors and produce no report. source names where the
// model came from (a file path, "http") and is stored with the report.
func (e *Engine) Validate(ctx context.Context, p *core.Project, source string) (*core.Report, error) {
	if err := schema.Check(p); err != nil {
		e.logger.Debug("schema check failed", "source", source, "error", err)
		return nil, err
	}

	diags := validate.Validate(p)
	if diags == nil {
		diags = []core.Diagnostic{}
	}

	report := &core.Report{
		ID:          uuid.NewString(),
		Project:     p.Name,
		Source:      source,
		Valid:       len(diags) == 0,
		Diagnostics: diags,
		CheckedAt:   e.now().UTC(),
	}

	e.logger.Debug("model validated",
		"project", p.Name,
		"source", source,
		"valid", report.Valid,
		"errors", len(diags))

	// Only recorded reports keep their ID, so every ID handed out can be looked up.
	switch {
	case e.store == nil:
		report.ID = ""
	default:
		if err := e.store.RecordValidation(ctx, report); err != nil {
			e.logger.Warn("failed to record validation", "id", report.ID, "error", err)
			report.ID = ""
		}
	}

	return report, nil
}

// Analyze accepts a schema-valid model for analysis. No solver runs yet;
// the returned stub carries the model's element counts.
func (e *Engine) Analyze(_ context.Context, p *core.Project) (*core.AnalysisStub, error) {
	if err := schema.Check(p); err != nil {
		return nil, err
	}
	e.logger.Debug("analysis requested", "project", p.Name, "nodes", len(p.Nodes), "members", len(p.Members))

	return &core.AnalysisStub{
		Status:      "stub",
		Message:     stubMessage,
		NodeCount:   len(p.Nodes),
		MemberCount: len(p.Members),
	}, nil
}

// History returns the most recent validation reports.
func (e *Engine) History(ctx context.Context, limit int) ([]*core.ReportSummary, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	summaries, err := e.store.ListValidations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}
	return summaries, nil
}

// Report returns a recorded validation report by id.
func (e *Engine) Report(ctx context.Context, id string) (*core.Report, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	report, err := e.store.GetValidation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get validation %s: %w", id, err)
	}
	return report, nil
}

// pruner is implemented by stores that can delete old reports.
type pruner interface {
	PruneValidations(ctx context.Context, cutoff time.Time) (int64, error)
}

// Prune deletes reports checked before cutoff and returns how many were removed.
func (e *Engine) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	p, ok := e.store.(pruner)
	if !ok {
		return 0, ErrNoStore
	}
	n, err := p.PruneValidations(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	e.logger.Info("pruned validation history", "deleted", n, "cutoff", cutoff)
	return n, nil
}

// Close releases the history store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}
