// Package pipeline orchestrates one ingestion run per dataset family:
// discover sources, extract and normalize them, validate the staging
// tables, and load the target store, writing the audit trail throughout.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/verdant-labs/climload/internal/discovery"
	"github.com/verdant-labs/climload/internal/schema"
	"github.com/verdant-labs/climload/internal/staging"
	"github.com/verdant-labs/climload/internal/validate"
)

// Sources is the family-specific bundle of extracted frames produced by
// Extract and consumed by Normalize.
type Sources any

// Pipeline is one dataset family's ingestion behavior. Implementations are
// selected by configuration; the runner owns the stage sequencing, the
// validation gate, and the audit trail, so a pipeline only knows how to
// find, read, and reshape its own sources.
type Pipeline interface {
	// Name is the family name, used as the audit process identifier.
	Name() string

	// Family returns the family's target schema.
	Family() *schema.Family

	// Discover resolves the family's source artifacts under the data root.
	Discover(ctx context.Context) ([]discovery.Artifact, error)

	// Extract reads the discovered artifacts into source frames.
	Extract(ctx context.Context, arts []discovery.Artifact) (Sources, error)

	// Normalize reshapes source frames into staging tables keyed by
	// target table name.
	Normalize(src Sources) (map[string]*staging.Table, error)

	// SourceFiles maps target table names to the artifact path each was
	// derived from, for the audit trail.
	SourceFiles(arts []discovery.Artifact) map[string]string
}

// ValidationError reports a family whose staging data failed validation.
// Nothing has been written.
type ValidationError struct {
	Family string
	Failed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("family %s: validation failed for %s",
		e.Family, strings.Join(e.Failed, ", "))
}

func failedTables(reports []validate.Report) []string {
	var failed []string
	for _, r := range reports {
		if r.Blocking() {
			failed = append(failed, r.Table)
		}
	}
	return failed
}

// artifactByRole indexes a discovery result set.
func artifactByRole(arts []discovery.Artifact) map[string]discovery.Artifact {
	m := make(map[string]discovery.Artifact, len(arts))
	for _, a := range arts {
		if _, dup := m[a.Role]; !dup {
			m[a.Role] = a
		}
	}
	return m
}
