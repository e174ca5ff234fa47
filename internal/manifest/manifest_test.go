// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canon-engine/pkg/types"
)

func meta(id, sha string) types.DocumentMeta {
	return types.DocumentMeta{
		Document: types.Document{
			ID:          id,
			Filename:    id + ".txt",
			SHA256:      sha,
			ByteSize:    10,
			ModTime:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			ContentType: types.ContentTypeText,
			IngestedAt:  time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		RelPath:        "in/" + id + ".txt",
		ClaimsCount:    2,
		EquationsCount: 1,
		SectionsCount:  3,
	}
}

func TestLoadMissingCreatesFresh(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "manifests", "canon_manifest.json"))
	require.NoError(t, err)

	snap := m.Snapshot()
	assert.Equal(t, types.ManifestVersion, snap.Version)
	assert.False(t, snap.CreatedAt.IsZero())
	assert.Empty(t, snap.Documents)
	assert.False(t, m.Has("abc"))
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifests", "canon_manifest.json")

	m, err := Load(path)
	require.NoError(t, err)
	m.Add(meta("aaaa", "sha-a"))
	m.Add(meta("bbbb", "sha-b"))
	require.NoError(t, m.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, "0.1", onDisk["version"])
	assert.EqualValues(t, 2, onDisk["total_documents"])
	assert.Contains(t, onDisk, "updated_at")
	docs := onDisk["documents"].([]any)
	first := docs[0].(map[string]any)
	assert.Equal(t, "aaaa", first["doc_id"])
	assert.Equal(t, "in/aaaa.txt", first["relpath"])
	assert.Nil(t, first["pages"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	again, err := Load(path)
	require.NoError(t, err)
	assert.True(t, again.Has("sha-a"))
	assert.True(t, again.Has("sha-b"))
	assert.False(t, again.Has("sha-c"))
	require.Len(t, again.Documents(), 2)
	assert.Equal(t, m.Snapshot().CreatedAt.Unix(), again.Snapshot().CreatedAt.Unix())
	assert.Equal(t, 3, again.Documents()[1].SectionsCount)
}

func TestSaveAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canon_manifest.json")

	m, err := Load(path)
	require.NoError(t, err)
	m.Add(meta("aaaa", "sha-a"))
	require.NoError(t, m.Save())

	m2, err := Load(path)
	require.NoError(t, err)
	m2.Add(meta("bbbb", "sha-b"))
	require.NoError(t, m2.Save())

	m3, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m3.Snapshot().TotalDocuments)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canon_manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
