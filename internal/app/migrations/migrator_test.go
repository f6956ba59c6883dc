package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("001_init.sql"))
	assert.Equal(t, "002", Version("migrations/002_add_indexes_to_users.sql"))
	assert.Equal(t, "plain.sql", Version("plain.sql"))
}

func TestPendingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md", "010_c.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "010_c.sql"}, PendingFiles(entries))
}
