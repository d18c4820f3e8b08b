package persistence

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	files := fstest.MapFS{
		"0002_changesets.sql": {Data: []byte("SELECT 2")},
		"0001_domain.sql":     {Data: []byte("SELECT 1")},
		"README.md":           {Data: []byte("notes")},
		"archive/0000.sql":    {Data: []byte("SELECT 0")},
	}

	names, err := migrationFiles(files)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_domain.sql", "0002_changesets.sql"}, names)
}
