// Unit tests for store configuration validation.
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"sqlite", Config{Backend: BackendSQLite, DataDir: "/tmp/db"}, nil},
		{"sqlite without data dir", Config{Backend: BackendSQLite}, nil},
		{"postgres with dsn", Config{Backend: BackendPostgres, DSN: "postgres://localhost/casebook"}, nil},
		{"postgres without dsn", Config{Backend: BackendPostgres}, ErrDSNEmpty},
		{"empty backend", Config{}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "mysql"}, ErrBackendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
