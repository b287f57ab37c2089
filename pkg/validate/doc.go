// Package validate checks the referential integrity of a structural model.
//
// Validate walks a core.Project in five passes (nodes, members, panels,
// loads, combinations) and returns every inconsistency it finds as a
// core.Diagnostic. It never stops at the first problem, never mutates its
// input, and performs no I/O, so it is safe to call concurrently.
//
// Diagnostics are emitted in traversal order, which follows the declaration
// order of the input collections:
//
//	diags := validate.Validate(project)
//	if len(diags) == 0 {
//		// cross-references are consistent
//	}
//
// Field-level constraints (non-empty identifiers, enum values, positive
// material properties) are the job of pkg/schema and are assumed to hold.
package validate
