package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(tempDir, nil)

	t.Run("ArchiveImport creates audit directory and saves file", func(t *testing.T) {
		raw := []byte(`{"books":{"to-read":[{"id":"b1","title":"Dune"}]},"metadata":{"version":"1.0.0"}}`)

		filename, err := auditor.ArchiveImport(raw)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".json"))

		_, err = os.Stat(tempDir)
		assert.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)
		assert.Contains(t, string(content), "\n  \"books\"", "valid JSON is indented")

		var saved map[string]any
		require.NoError(t, json.Unmarshal(content, &saved))
		assert.Contains(t, saved, "books")
	})

	t.Run("ArchiveImport keeps invalid payloads verbatim", func(t *testing.T) {
		raw := []byte("not json at all")

		filename, err := auditor.ArchiveImport(raw)
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)
		assert.Equal(t, raw, content)
	})

	t.Run("ArchiveImport generates unique filenames", func(t *testing.T) {
		filename1, err := auditor.ArchiveImport([]byte(`{}`))
		require.NoError(t, err)

		filename2, err := auditor.ArchiveImport([]byte(`{}`))
		require.NoError(t, err)

		assert.NotEqual(t, filename1, filename2)
	})
}

func TestAuditor_PruneArchives(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(dir, nil)

	removed, err := auditor.PruneArchives(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed, "missing directory")

	oldName, err := auditor.ArchiveImport([]byte(`{}`))
	require.NoError(t, err)
	freshName, err := auditor.ArchiveImport([]byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldName), past, past))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "notes.txt"), past, past))

	removed, err = auditor.PruneArchives(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, oldName))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, freshName))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err, "only archives are pruned")
}
