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

// Package storage provides the persistence abstraction for case bases.
//
// A constructed case base is stored as a Snapshot: its name, schema, cases
// in load order and the symbolic tables attached to its fields. Saving a
// snapshot under an existing name replaces the previous one. Retrieval
// results are never stored.
//
// # Constructor Return Type Pattern
//
// Public constructors return the CaseBaseRepository interface so callers do
// not couple to a particular backend:
//
//	repo, err := badger.NewRepository(path)  // returns storage.CaseBaseRepository
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Usage
//
//	repo, err := badger.NewRepository("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	err = repo.SaveCaseBase(ctx, snapshot, nil)
//	snapshot, err = repo.LoadCaseBase(ctx, "cars")
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
