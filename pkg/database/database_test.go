package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-command/pkg/config"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		dsn    string
	}{
		{name: "sqlite", driver: "sqlite", dsn: "file::memory:"},
		{name: "mysql", driver: "mysql", dsn: "user:pass@tcp(localhost:3306)/app"},
		{name: "postgres", driver: "postgres", dsn: "host=localhost user=app dbname=app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Dialector(config.DatabaseConfig{Driver: tt.driver, DSN: tt.dsn})
			require.NoError(t, err)
			assert.Equal(t, tt.driver, d.Name())
		})
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
