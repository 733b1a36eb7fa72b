// Package platform defines the per-data-family collaborator interfaces the
// indexing pipeline pulls raw records through (contacts, calendar events,
// photos, call records, documents, notes), plus the optional
// foreground-notification collaborator. Both are host-provided on a real
// device (the mobile OS's contacts/calendar/photos providers) and out of this
// module's scope beyond the interface shape; this package also ships an
// in-memory fixture implementation for tests and the CLI demo.
package platform

import (
	"context"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// Record is a single raw item fetched from a data family: at minimum an id
// and a last-modified timestamp, plus an opaque field bag the matching direct
// extractor knows how to read.
type Record struct {
	ID           string
	LastModified int64
	Fields       map[string]any
}

// Source is the per-family collaborator: permission check/request plus an
// incremental fetch. The pipeline treats a permission-denied fetch as
// returning zero records rather than an error.
type Source interface {
	// CheckPermission reports whether the family is currently readable
	// without prompting the user.
	CheckPermission(ctx context.Context) (bool, error)

	// RequestPermission prompts the user (if supported) and reports the
	// resulting grant state.
	RequestPermission(ctx context.Context) (bool, error)

	// FetchSince returns records with LastModified > since (zero value for
	// a full fetch), newest-permitting-implementations may cap the result at
	// limit (0 means no cap). Returns an empty, nil-error slice when
	// permission is denied rather than failing the call.
	FetchSince(ctx context.Context, since int64, limit int) ([]Record, error)
}

// Notifier is the optional foreground-notification collaborator. Every call
// is best-effort: implementations must not let notification failures
// propagate to the pipeline, and the pipeline calls Stop even on an error
// path.
type Notifier interface {
	Start(ctx context.Context) error
	Update(ctx context.Context, progress float64, phase string, entities, relationships int) error
	Stop(ctx context.Context) error
}

// NoopNotifier is a Notifier that does nothing, for callers that don't need
// foreground-service updates (the CLI demo, most tests).
type NoopNotifier struct{}

func (NoopNotifier) Start(ctx context.Context) error    { return nil }
func (NoopNotifier) Update(ctx context.Context, progress float64, phase string, entities, relationships int) error {
	return nil
}
func (NoopNotifier) Stop(ctx context.Context) error { return nil }

// SourceSet maps each data family to its collaborator. A family absent from
// the map is treated as permission-denied (empty fetch) by the pipeline.
type SourceSet map[graphtypes.DataFamily]Source
