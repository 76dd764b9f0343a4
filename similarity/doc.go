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

// Package similarity provides the per-field comparison functions used by
// case retrieval.
//
// Every function is a Func tagged with a Kind from a closed set:
//   - Metric functions compare two numbers (Manhattan, Euclidean)
//   - Symbolic functions look the pair up in a SymbolicTable attached to the field
//   - Text functions compare two tokens directly (EditSimilarity)
//
// Retrieval switches on the Kind to decide what a function receives. Named
// functions are available through Lookup so configuration files and the CLI
// can refer to them by name.
package similarity
