package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.Equal(t, ',', cfg.Delimiter)
	assert.False(t, cfg.CoerceIntegers)
	assert.Empty(t, cfg.Sheet)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithEncoding("latin1"),
		WithDelimiter(';'),
		WithCoerceIntegers(true),
		WithSheet("Cars"),
	)
	assert.Equal(t, &Config{Encoding: "latin1", Delimiter: ';', CoerceIntegers: true, Sheet: "Cars"}, cfg)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{name: "windows-1252", cfg: NewConfig(WithEncoding("windows-1252"))},
		{name: "empty encoding means utf-8", cfg: NewConfig(WithEncoding(""))},
		{name: "tab delimiter", cfg: NewConfig(WithDelimiter('\t'))},
		{name: "unknown encoding", cfg: NewConfig(WithEncoding("klingon")), wantErr: ErrUnknownEncoding},
		{name: "quote delimiter", cfg: NewConfig(WithDelimiter('"')), wantErr: ErrInvalidDelimiter},
		{name: "newline delimiter", cfg: NewConfig(WithDelimiter('\n')), wantErr: ErrInvalidDelimiter},
		{name: "zero delimiter", cfg: NewConfig(WithDelimiter(0)), wantErr: ErrInvalidDelimiter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
