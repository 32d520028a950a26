package db

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"inventory-service/migrations"
)

func TestLoadMigrationsOrdersAndChecksums(t *testing.T) {
	fsys := fstest.MapFS{
		"002_more.sql":  {Data: []byte("SELECT 2;")},
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("ignored")},
		"sub/003_x.sql": {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "001", got[0].Version)
	require.Equal(t, "002_more.sql", got[1].Filename)
	require.Len(t, got[0].Checksum, 64)
	require.NotEqual(t, got[0].Checksum, got[1].Checksum)
}

func TestLoadMigrationsRejectsDuplicatesAndBadNames(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	})
	require.ErrorContains(t, err, "duplicate migration version 001")

	_, err = LoadMigrations(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}})
	require.ErrorContains(t, err, "invalid migration filename")
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	got, err := LoadMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, "001_init.sql", got[0].Filename)
	require.Contains(t, got[0].SQL, "CREATE TABLE IF NOT EXISTS stock_change_logs")
}
