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

// Package config reads YAML project files that describe a case base: the
// case source, the problem and solution fields with their types, reader
// settings, symbolic similarity tables and a default similarity assignment.
//
// Example project file:
//
//	name: cars
//	source: cars.csv
//	delimiter: ","
//	problem:
//	  - name: Price
//	    type: integer
//	  - name: Body
//	solution:
//	  - name: Manufacturer
//	  - name: Model
//	symbolic:
//	  Body: body.csv
//	similarity:
//	  - field: Price
//	    function: manhattan
//	  - field: Body
//	    function: symbolic
//
// Relative paths are resolved against the directory of the project file.
package config
