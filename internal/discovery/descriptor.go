// Package discovery resolves the latest data directory and the latest file
// per logical dataset role from a root directory whose contents follow
// inconsistent, unversioned naming conventions.
package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Descriptor maps a logical dataset role to the naming heuristics that
// locate its file. Descriptors are pipeline configuration and immutable.
type Descriptor struct {
	// Role is the logical name consumed by the normalizer, e.g. "countries".
	Role string

	// DirToken is the case-insensitive substring that identifies the
	// family's data directory under the root, e.g. "ascor".
	DirToken string

	// FileGlob matches candidate files within the selected directory.
	FileGlob string

	// Keywords partitions multi-file matches into this role before any
	// latest-by-date selection. A file matches when its name contains any
	// keyword case-insensitively. Empty means no keyword routing.
	Keywords []string

	// Exclude rejects files whose name contains any of these substrings,
	// used to keep overlapping globs apart (e.g. "CP_Assessments*" vs
	// "CP_Assessments_Regional*").
	Exclude []string

	// CyclePattern, when set, expands this descriptor into one artifact
	// per matched file, each carrying the numeric cycle extracted by the
	// pattern (a capture-group regexp like `Methodology_(\d+)`).
	CyclePattern string
}

// Artifact is the resolved source for one role after a discovery pass.
// Created fresh each run and never persisted.
type Artifact struct {
	Role    string
	Path    string
	Date    time.Time
	Pattern string

	// Fallback marks that the selection degraded to lexicographic ordering
	// because no embedded date validated. It is surfaced into audit notes.
	Fallback bool

	// Cycle is the methodology cycle number for cycle-expanded roles, 0
	// otherwise.
	Cycle int
}

// Error reports a required role that could not be resolved. It names the
// root searched and the patterns tried so the failure is actionable. Err
// carries the underlying I/O error when the root itself was unreadable,
// distinguishing that case from a clean zero-match listing.
type Error struct {
	Role     string
	Root     string
	Patterns []string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("discovery: no match for role %q under %s (patterns tried: %s)",
		e.Role, e.Root, strings.Join(e.Patterns, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
