package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
	"github.com/poiesic/cbr/storage"
)

// progressInterval is how many cases are written between progress callbacks.
const progressInterval = 1000

// CaseRepository implements storage.CaseBaseRepository for BadgerDB.
//
// Each case base is keyed by core.IDFromContent of its name. Its metadata
// record is written last on save and deleted first on replace, so a case
// base without metadata is never visible to readers.
type CaseRepository struct {
	backend     *Backend
	ownsBackend bool
}

var _ storage.CaseBaseRepository = (*CaseRepository)(nil)

// NewCaseRepository creates a CaseRepository on a shared backend.
// Closing the repository does not close the backend.
func NewCaseRepository(backend *Backend) *CaseRepository {
	return &CaseRepository{
		backend: backend,
	}
}

// NewRepository opens a BadgerDB database at path and returns a repository
// that owns it.
func NewRepository(path string) (storage.CaseBaseRepository, error) {
	backend, err := OpenBackend(path, false, nil)
	if err != nil {
		return nil, err
	}
	return &CaseRepository{backend: backend, ownsBackend: true}, nil
}

// Close closes the backend if the repository opened it.
func (r *CaseRepository) Close() error {
	if r.ownsBackend && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

func (r *CaseRepository) checkOpen() error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// SaveCaseBase stores the snapshot, replacing any case base with the same name.
func (r *CaseRepository) SaveCaseBase(ctx context.Context, snapshot *storage.Snapshot, progress func(written int)) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if progress == nil {
		progress = func(int) {}
	}

	id := core.IDFromContent(snapshot.Name)
	if err := r.delete(ctx, id); err != nil {
		return fmt.Errorf("replacing case base %s: %w", snapshot.Name, err)
	}

	err := r.backend.Batch(func(set func(key, value []byte) error) error {
		pending := 0
		for i, c := range snapshot.Cases {
			if err := set(makeCaseKey(id, i), storage.MarshalCase(c)); err != nil {
				return err
			}
			pending++
			if pending == progressInterval {
				if err := ctx.Err(); err != nil {
					return err
				}
				progress(pending)
				pending = 0
			}
		}
		if pending > 0 {
			progress(pending)
		}

		for field, table := range snapshot.Tables {
			if err := set(makeTableKey(id, field), storage.MarshalTable(table)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Remove whatever the batch flushed before failing
		if _, cleanupErr := r.backend.DeletePrefixes(context.Background(), makeCasePrefix(id), makeTablePrefix(id)); cleanupErr != nil {
			r.backend.logger.Warn("failed to clean up partial case base", "name", snapshot.Name, "err", cleanupErr)
		}
		return fmt.Errorf("writing case base %s: %w", snapshot.Name, err)
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeMetaKey(id), storage.MarshalInfo(&snapshot.Info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("writing case base %s: %w", snapshot.Name, err)
	}

	r.backend.logger.Debug("saved case base", "name", snapshot.Name, "cases", len(snapshot.Cases), "tables", len(snapshot.Tables))
	return nil
}

// LoadCaseBase returns the named case base with its cases in load order.
func (r *CaseRepository) LoadCaseBase(ctx context.Context, name string) (*storage.Snapshot, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	id := core.IDFromContent(name)
	var snapshot *storage.Snapshot

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		info, err := readInfo(tx, id)
		if err != nil {
			return err
		}
		if info.Name != name {
			return storage.ErrNotFound
		}

		cases := make([]*core.Case, 0, info.CaseCount)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCasePrefix(id)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if len(cases)%progressInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			var c *core.Case
			err := iter.Item().Value(func(val []byte) error {
				var err error
				c, err = storage.UnmarshalCase(val)
				return err
			})
			if err != nil {
				return err
			}
			cases = append(cases, c)
		}
		if len(cases) != info.CaseCount {
			return fmt.Errorf("%w: case base %s has %d of %d cases", storage.ErrTruncatedData, name, len(cases), info.CaseCount)
		}

		tables, err := readTables(tx, id)
		if err != nil {
			return err
		}

		snapshot = &storage.Snapshot{Info: *info, Cases: cases, Tables: tables}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// GetCaseBaseInfo returns the metadata of the named case base.
func (r *CaseRepository) GetCaseBaseInfo(ctx context.Context, name string) (*storage.Info, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	var info *storage.Info
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		info, err = readInfo(tx, core.IDFromContent(name))
		if err == nil && info.Name != name {
			err = storage.ErrNotFound
		}
		return err
	}, false)
	return info, err
}

// ListCaseBases returns the metadata of every stored case base, sorted by name.
func (r *CaseRepository) ListCaseBases(ctx context.Context) ([]*storage.Info, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	var infos []*storage.Info
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(caseBaseMetaPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				info, err := storage.UnmarshalInfo(val)
				if err != nil {
					return err
				}
				infos = append(infos, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(infos, func(a, b *storage.Info) int {
		return strings.Compare(a.Name, b.Name)
	})
	return infos, nil
}

// DeleteCaseBase removes the named case base.
func (r *CaseRepository) DeleteCaseBase(ctx context.Context, name string) error {
	if _, err := r.GetCaseBaseInfo(ctx, name); err != nil {
		return err
	}
	if err := r.delete(ctx, core.IDFromContent(name)); err != nil {
		return err
	}
	r.backend.logger.Debug("deleted case base", "name", name)
	return nil
}

// delete removes the metadata first, then the cases and tables.
func (r *CaseRepository) delete(ctx context.Context, id core.ID) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeMetaKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	_, err = r.backend.DeletePrefixes(ctx, makeCasePrefix(id), makeTablePrefix(id))
	return err
}

func readInfo(tx *badger.Txn, id core.ID) (*storage.Info, error) {
	item, err := tx.Get(makeMetaKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var info *storage.Info
	err = item.Value(func(val []byte) error {
		var err error
		info, err = storage.UnmarshalInfo(val)
		return err
	})
	return info, err
}

func readTables(tx *badger.Txn, id core.ID) (map[string]similarity.SymbolicTable, error) {
	tables := make(map[string]similarity.SymbolicTable)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeTablePrefix(id)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		field := fieldFromTableKey(id, item.Key())
		err := item.Value(func(val []byte) error {
			table, err := storage.UnmarshalTable(val)
			if err != nil {
				return err
			}
			tables[field] = table
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return tables, nil
}
