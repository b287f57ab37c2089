// Package core defines the shared language of the StructView system.
//
// This package contains:
//   - Domain entities (Project, Node, Member, Panel, Load, LoadCase, LoadCombination)
//   - Variant types (Support, SupportType, LoadType, ConnectionType)
//   - Validation results (Diagnostic, Report, AnalysisStub)
//   - Service interfaces (Store)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
