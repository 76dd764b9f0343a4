package storage

import (
	"context"
	"fmt"

	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
)

// Info describes a stored case base without its cases.
type Info struct {
	Name      string
	Schema    *core.Schema
	CaseCount int
}

// Snapshot is the persisted form of a case base.
type Snapshot struct {
	Info
	// Cases are kept in load order, which retrieval relies on to break ties.
	Cases  []*core.Case
	Tables map[string]similarity.SymbolicTable
}

// NewSnapshot builds a snapshot and fills in the case count.
func NewSnapshot(name string, schema *core.Schema, cases []*core.Case, tables map[string]similarity.SymbolicTable) *Snapshot {
	return &Snapshot{
		Info:   Info{Name: name, Schema: schema, CaseCount: len(cases)},
		Cases:  cases,
		Tables: tables,
	}
}

// Validate checks that the snapshot can be stored.
func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrInvalidSnapshot
	}
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSnapshot)
	}
	if err := core.ValidateSchema(s.Schema); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if s.CaseCount != len(s.Cases) {
		return fmt.Errorf("%w: info counts %d cases, have %d", ErrInvalidSnapshot, s.CaseCount, len(s.Cases))
	}
	for i, c := range s.Cases {
		if err := core.ValidateCase(s.Schema, c); err != nil {
			return fmt.Errorf("%w: case %d: %w", ErrInvalidSnapshot, i, err)
		}
	}
	for field, table := range s.Tables {
		if err := s.Schema.CheckField(field); err != nil {
			return fmt.Errorf("%w: table: %w", ErrInvalidSnapshot, err)
		}
		if err := table.Validate(); err != nil {
			return fmt.Errorf("%w: table for %s: %w", ErrInvalidSnapshot, field, err)
		}
	}
	return nil
}

// CaseBaseRepository stores case base snapshots by name.
type CaseBaseRepository interface {
	// SaveCaseBase stores the snapshot, replacing any case base with the same
	// name. progress, if not nil, is called with the number of cases written
	// by each batch.
	SaveCaseBase(ctx context.Context, snapshot *Snapshot, progress func(written int)) error

	// LoadCaseBase returns the named case base with its cases in load order.
	// Returns ErrNotFound if no case base has that name.
	LoadCaseBase(ctx context.Context, name string) (*Snapshot, error)

	// GetCaseBaseInfo returns the metadata of the named case base.
	// Returns ErrNotFound if no case base has that name.
	GetCaseBaseInfo(ctx context.Context, name string) (*Info, error)

	// ListCaseBases returns the metadata of every stored case base, sorted by name.
	ListCaseBases(ctx context.Context) ([]*Info, error)

	// DeleteCaseBase removes the named case base.
	// Returns ErrNotFound if no case base has that name.
	DeleteCaseBase(ctx context.Context, name string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
