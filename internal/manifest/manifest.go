// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest maintains the durable list of ingested documents
// (manifests/canon_manifest.json) that survives across runs.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pdiddy/canon-engine/internal/fsutil"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// Manifest wraps the on-disk manifest together with an index of the content
// hashes it already records. It is not safe for concurrent mutation.
type Manifest struct {
	path   string
	data   types.Manifest
	hashes map[string]struct{}
}

// Load reads the manifest at path. A missing file yields a fresh manifest
// with the current version, the current time as created_at and no documents.
func Load(path string) (*Manifest, error) {
	m := &Manifest{path: path, hashes: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		m.data = types.Manifest{
			Version:   types.ManifestVersion,
			CreatedAt: time.Now().UTC(),
			Documents: []types.DocumentMeta{},
		}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &m.data); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.data.Documents == nil {
		m.data.Documents = []types.DocumentMeta{}
	}
	for _, d := range m.data.Documents {
		m.hashes[d.SHA256] = struct{}{}
	}
	return m, nil
}

// Path returns the file the manifest is loaded from and saved to.
func (m *Manifest) Path() string { return m.path }

// Has reports whether a document with the given content hash is recorded.
func (m *Manifest) Has(sha string) bool {
	_, ok := m.hashes[sha]
	return ok
}

// Add appends a processed document.
func (m *Manifest) Add(meta types.DocumentMeta) {
	m.data.Documents = append(m.data.Documents, meta)
	m.hashes[meta.SHA256] = struct{}{}
}

// Documents returns the recorded documents in insertion order.
func (m *Manifest) Documents() []types.DocumentMeta {
	return m.data.Documents
}

// Snapshot returns a copy of the manifest contents.
func (m *Manifest) Snapshot() types.Manifest {
	out := m.data
	out.Documents = append([]types.DocumentMeta(nil), m.data.Documents...)
	return out
}

// Save stamps updated_at and total_documents and replaces the manifest file
// atomically.
func (m *Manifest) Save() error {
	m.data.UpdatedAt = time.Now().UTC()
	m.data.TotalDocuments = len(m.data.Documents)
	if err := fsutil.WriteJSON(m.path, m.data); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}
	return nil
}
