package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
//
// Entries live under a generation prefix. ReplaceAll writes a complete new
// generation, then flips the current generation key in one transaction and
// drops the old prefix, so readers never observe a half-written catalog.
type CatalogRepository struct {
	backend *Backend

	// replaceMu serializes ReplaceAll with every other catalog write, so no
	// write lands in a generation that is about to be retired.
	replaceMu sync.Mutex
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (storage.CatalogRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &CatalogRepository{backend: backend}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *CatalogRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutEntries inserts or updates entries in the current generation.
func (r *CatalogRepository) PutEntries(ctx context.Context, entries ...*core.ProgramEntry) error {
	for _, entry := range entries {
		if err := core.ValidateProgramEntry(entry); err != nil {
			return err
		}
	}

	r.replaceMu.Lock()
	defer r.replaceMu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			prepareEntry(entry, now)
			key := makeCatalogEntryKey(generation, entry.Id)
			if err := tx.Set(key, storage.MarshalProgramEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by ID.
func (r *CatalogRepository) GetEntry(ctx context.Context, id core.ID) (*core.ProgramEntry, error) {
	var entry *core.ProgramEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		entry, err = readEntry(tx, makeCatalogEntryKey(generation, id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntries removes entries by ID.
func (r *CatalogRepository) DeleteEntries(ctx context.Context, ids ...core.ID) error {
	r.replaceMu.Lock()
	defer r.replaceMu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Delete(makeCatalogEntryKey(generation, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// SetEnabled toggles an entry's enabled flag.
func (r *CatalogRepository) SetEnabled(ctx context.Context, id core.ID, enabled bool) error {
	r.replaceMu.Lock()
	defer r.replaceMu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		key := makeCatalogEntryKey(generation, id)
		entry, err := readEntry(tx, key)
		if err != nil {
			return err
		}
		entry.Enabled = enabled
		if err := tx.Set(key, storage.MarshalProgramEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ReplaceAll swaps the catalog for entries.
func (r *CatalogRepository) ReplaceAll(ctx context.Context, entries []*core.ProgramEntry) error {
	r.replaceMu.Lock()
	defer r.replaceMu.Unlock()

	var (
		old      uint64
		disabled = make(map[core.ID]bool)
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		if old, err = currentGeneration(tx); err != nil {
			return err
		}
		return iterateGeneration(ctx, tx, old, func(entry *core.ProgramEntry) error {
			if !entry.Enabled {
				disabled[entry.Id] = true
			}
			return nil
		})
	}, false)
	if err != nil {
		return err
	}

	next := old + 1
	if err := r.writeGeneration(ctx, next, entries, disabled); err != nil {
		if dropErr := r.backend.DropPrefix(makeCatalogPrefix(next)); dropErr != nil {
			r.backend.logger.Warn("error discarding partial catalog", "generation", next, "err", dropErr)
		}
		return err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(catalogGenerationKey), encodeGeneration(next)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	if err := r.backend.DropPrefix(makeCatalogPrefix(old)); err != nil {
		// The old generation is unreachable; leaking it is harmless.
		r.backend.logger.Warn("error dropping previous catalog", "generation", old, "err", err)
	}
	r.backend.logger.Debug("catalog replaced", "generation", next, "entries", len(entries))
	return nil
}

// writeGeneration bulk loads entries under generation.
func (r *CatalogRepository) writeGeneration(ctx context.Context, generation uint64, entries []*core.ProgramEntry, disabled map[core.ID]bool) error {
	wb := r.backend.NewWriteBatch()
	defer wb.Cancel()

	now := time.Now().UTC()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := core.ValidateProgramEntry(entry); err != nil {
			return err
		}
		prepareEntry(entry, now)
		if disabled[entry.Id] {
			entry.Enabled = false
		}
		if err := wb.Set(makeCatalogEntryKey(generation, entry.Id), storage.MarshalProgramEntry(entry)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// ForEach calls fn for every entry of the current generation.
func (r *CatalogRepository) ForEach(ctx context.Context, fn func(*core.ProgramEntry) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		return iterateGeneration(ctx, tx, generation, fn)
	}, false)
}

// Count returns the number of entries of the current generation.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeCatalogPrefix(generation)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// prepareEntry derives the entry ID and stamps IndexedAt.
func prepareEntry(entry *core.ProgramEntry, now time.Time) {
	entry.Id = core.EntryIDForPath(entry.Path)
	if entry.IndexedAt.IsZero() {
		entry.IndexedAt = now
	}
}

// currentGeneration reads the live catalog generation; zero if none.
func currentGeneration(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get([]byte(catalogGenerationKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var generation uint64
	err = item.Value(func(val []byte) error {
		var err error
		generation, err = decodeGeneration(val)
		return err
	})
	return generation, err
}

// iterateGeneration decodes every entry of generation, checking ctx per entry.
func iterateGeneration(ctx context.Context, tx *badger.Txn, generation uint64, fn func(*core.ProgramEntry) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeCatalogPrefix(generation)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var entry *core.ProgramEntry
		err := iter.Item().Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalProgramEntry(val)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

// readEntry reads one entry, mapping a missing key to storage.ErrNotFound.
func readEntry(tx *badger.Txn, key []byte) (*core.ProgramEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var entry *core.ProgramEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalProgramEntry(val)
		return err
	})
	return entry, err
}
