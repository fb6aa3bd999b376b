package storage

import (
	"context"

	"github.com/poiesic/launchit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases repository resources. It does not close the backend.
	Close() error
}

// CatalogRepository stores the installed program catalog.
type CatalogRepository interface {
	Repository

	// PutEntries inserts or updates entries.
	// IDs are derived from the entry path. IndexedAt is set if zero.
	PutEntries(ctx context.Context, entries ...*core.ProgramEntry) error

	// GetEntry retrieves one entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.ProgramEntry, error)

	// DeleteEntries removes entries by ID. Missing IDs are ignored.
	DeleteEntries(ctx context.Context, ids ...core.ID) error

	// SetEnabled toggles whether an entry is offered by the program source.
	// Returns ErrNotFound if the entry doesn't exist.
	SetEnabled(ctx context.Context, id core.ID, enabled bool) error

	// ReplaceAll swaps the whole catalog for entries.
	// Readers see either the old or the new catalog, never a mix.
	// The enabled flag of entries already present is preserved.
	ReplaceAll(ctx context.Context, entries []*core.ProgramEntry) error

	// ForEach calls fn for every entry in the current catalog.
	// Iteration stops at the first error from fn or ctx.
	ForEach(ctx context.Context, fn func(*core.ProgramEntry) error) error

	// Count returns the number of entries in the current catalog.
	Count(ctx context.Context) (int, error)
}

// CheckpointRepository records the outcome of index runs.
type CheckpointRepository interface {
	// SaveCheckpoint persists the checkpoint under name.
	SaveCheckpoint(ctx context.Context, name string, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for name.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error)
}
