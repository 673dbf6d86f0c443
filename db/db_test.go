package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://u@host/db", "pgx5://u@host/db"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MigrateURL(tc.in))
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_cases.up.sql")
	assert.Contains(t, names, "000001_create_cases.down.sql")
}

func TestNewPool_EmptyConnString(t *testing.T) {
	_, err := NewPool(context.Background(), "")
	assert.Error(t, err)
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	bare, err := NewRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer bare.Close()

	_, err = NewRedis(context.Background(), "")
	assert.Error(t, err)
}
