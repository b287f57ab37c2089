package core

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// Diagnostic is a cross-reference finding.
// Path addresses the offending collection or field, e.g. "members.m1.start_node".
type Diagnostic struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Report is the outcome of validating one project.
type Report struct {
	ID          string       `json:"id"`
	Project     string       `json:"project"`
	Source      string       `json:"source,omitempty"` // file path or "http"
	Valid       bool         `json:"valid"`
	Diagnostics []Diagnostic `json:"errors"`
	CheckedAt   time.Time    `json:"checked_at"`
}

// ReportSummary is a report without its diagnostics, used for listings.
type ReportSummary struct {
	ID         string    `json:"id"`
	Project    string    `json:"project"`
	Source     string    `json:"source,omitempty"`
	Valid      bool      `json:"valid"`
	ErrorCount int       `json:"error_count"`
	CheckedAt  time.Time `json:"checked_at"`
}

// AnalysisStub is returned by the analysis entry point until a solver exists.
type AnalysisStub struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	NodeCount   int    `json:"node_count"`
	MemberCount int    `json:"member_count"`
}
