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

// Package casebase implements nearest-case retrieval over an in-memory
// case library.
//
// A CaseBase holds an ordered list of cases, the schema classifying their
// fields into problem and solution attributes, and one symbolic similarity
// table per symbolic field. Retrieve scans every case, sums the per-field
// similarity scores chosen by the caller's Assignment and returns the case
// with the highest aggregate. Ties go to the case loaded first.
//
// Cases and the schema never change after construction, so any number of
// goroutines may call Retrieve concurrently. Symbolic tables may be
// attached at any time; each retrieval works on the tables attached when
// it started.
package casebase
