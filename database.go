// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cbr

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/cbr/casebase"
	"github.com/poiesic/cbr/config"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/ingestion"
	"github.com/poiesic/cbr/storage"
	"github.com/poiesic/cbr/storage/badger"
)

// Database stores named case bases in a BadgerDB directory.
type Database struct {
	backend *badger.Backend
	repo    *badger.CaseRepository
	logger  *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// WithInMemory keeps the database in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens or creates the database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory, options.logger)
	if err != nil {
		return nil, err
	}

	return &Database{
		backend: backend,
		repo:    badger.NewCaseRepository(backend),
		logger:  options.logger,
	}, nil
}

// Close closes the database.
func (db *Database) Close() error {
	if err := db.repo.Close(); err != nil {
		db.logger.Error("error closing case base repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Repository returns the underlying case base repository.
func (db *Database) Repository() storage.CaseBaseRepository {
	return db.repo
}

// Import stores cb under name, replacing any case base with that name.
// Progress lines are written to progress if it is not nil.
func (db *Database) Import(ctx context.Context, name string, cb *casebase.CaseBase, progress io.Writer) error {
	cases := make([]*core.Case, 0, cb.Len())
	for _, c := range cb.All() {
		cases = append(cases, c)
	}
	snapshot := storage.NewSnapshot(name, cb.Schema(), cases, cb.SymbolicTables())

	tracker := ingestion.NewProgressTracker(progress, name, len(cases), 1000)
	tracker.Start()
	if err := db.repo.SaveCaseBase(ctx, snapshot, tracker.Add); err != nil {
		return err
	}
	if progress != nil {
		tracker.Finish()
	}

	db.logger.Info("imported case base", "name", name, "cases", len(cases), "elapsed", tracker.Elapsed())
	return nil
}

// ImportProject builds the case base a project describes and stores it
// under the project name. The built case base is returned.
func (db *Database) ImportProject(ctx context.Context, project *config.Project, progress io.Writer, opts ...casebase.Option) (*casebase.CaseBase, error) {
	cb, err := project.Build(withDefaultLogger(db.logger, opts)...)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", project.Name, err)
	}
	if err := db.Import(ctx, project.Name, cb, progress); err != nil {
		cb.Release()
		return nil, err
	}
	return cb, nil
}

// Open loads the named case base and attaches its symbolic tables.
// Returns storage.ErrNotFound if no case base has that name.
func (db *Database) Open(ctx context.Context, name string, opts ...casebase.Option) (*casebase.CaseBase, error) {
	snapshot, err := db.repo.LoadCaseBase(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}

	cb, err := casebase.New(snapshot.Schema, snapshot.Cases, withDefaultLogger(db.logger, opts)...)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	for field, table := range snapshot.Tables {
		if err := cb.AddSymbolicSim(field, table); err != nil {
			cb.Release()
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
	}

	db.logger.Debug("opened case base", "name", name, "cases", cb.Len())
	return cb, nil
}

// List returns the stored case bases sorted by name.
func (db *Database) List(ctx context.Context) ([]*storage.Info, error) {
	return db.repo.ListCaseBases(ctx)
}

// Delete removes the named case base.
func (db *Database) Delete(ctx context.Context, name string) error {
	return db.repo.DeleteCaseBase(ctx, name)
}

// withDefaultLogger puts the database logger ahead of caller options so an
// explicit casebase.WithLogger still wins.
func withDefaultLogger(logger *slog.Logger, opts []casebase.Option) []casebase.Option {
	return append([]casebase.Option{casebase.WithLogger(logger)}, opts...)
}
