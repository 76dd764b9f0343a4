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

package ingestion

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Config holds settings for reading case and table files.
type Config struct {
	// Encoding is the character encoding of text files.
	// Example: "utf-8", "latin1", "windows-1252"
	// Default: "utf-8"
	Encoding string

	// Delimiter separates columns in delimited text files.
	// Default: ','
	Delimiter rune

	// CoerceIntegers converts decimal digit strings to integers in fields
	// declared with core.FieldAuto. Declared Integer and Float fields are
	// always parsed.
	// Default: false
	CoerceIntegers bool

	// Sheet selects the worksheet of spreadsheet files. Empty selects the
	// active sheet.
	Sheet string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEncoding sets the text encoding.
func WithEncoding(name string) ConfigOption {
	return func(c *Config) {
		c.Encoding = name
	}
}

// WithDelimiter sets the column delimiter.
func WithDelimiter(delim rune) ConfigOption {
	return func(c *Config) {
		c.Delimiter = delim
	}
}

// WithCoerceIntegers enables or disables digit-string coercion.
func WithCoerceIntegers(coerce bool) ConfigOption {
	return func(c *Config) {
		c.CoerceIntegers = coerce
	}
}

// WithSheet selects a spreadsheet worksheet.
func WithSheet(name string) ConfigOption {
	return func(c *Config) {
		c.Sheet = name
	}
}

// DefaultConfig returns a Config with the defaults {"utf-8", ',', false}.
func DefaultConfig() *Config {
	return &Config{
		Encoding:       "utf-8",
		Delimiter:      ',',
		CoerceIntegers: false,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDelimiter(';'),
//	    WithCoerceIntegers(true),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.encoding(); err != nil {
		return err
	}
	if !validDelimiter(c.Delimiter) {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, c.Delimiter)
	}
	return nil
}

func (c *Config) encoding() (encoding.Encoding, error) {
	name := c.Encoding
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, c.Encoding)
	}
	return enc, nil
}

// validDelimiter mirrors the restrictions of encoding/csv.
func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
