// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry identifies source documents by content. It hashes files,
// walks input directories, decides which files still need ingesting, and
// archives raw copies into the sources directory.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// chunkSize is the read size used while streaming a file through SHA-256.
const chunkSize = 1 << 20

// idLength is the number of hex characters of the digest used as a doc id.
const idLength = 16

// Candidate is a file discovered under the input path.
type Candidate struct {
	// Path is the absolute path of the file.
	Path string

	// RelPath is the path relative to the parent of the input root, with
	// forward slashes.
	RelPath string
}

// Entry is a hashed candidate ready for processing.
type Entry struct {
	Candidate
	SHA256  string
	ID      string
	Size    int64
	ModTime time.Time
}

// Known reports whether a content hash has already been ingested.
type Known interface {
	Has(sha string) bool
}

// ErrChanged is returned by Archive when a file no longer matches the hash
// recorded for it by Select.
var ErrChanged = errors.New("file changed since it was hashed")

// HashFile returns the lowercase hex SHA-256 of the file at path, reading it
// in 1 MiB chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DocID derives a document id from a content hash.
func DocID(sha string) string {
	if len(sha) < idLength {
		return sha
	}
	return sha[:idLength]
}

// Registry hashes candidates, remembering digests for files whose path,
// size and modification time have not changed. Use one Registry for a whole
// run so Archive can reuse the digests computed by Select.
type Registry struct {
	memo *gocache.Cache

	// hashed counts memo misses.
	hashed int
}

// New creates a Registry with an empty digest memo.
func New() *Registry {
	return &Registry{memo: gocache.New(gocache.NoExpiration, 0)}
}

// Digest returns the content hash of path and its file info.
func (r *Registry) Digest(path string) (string, fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	key := memoKey(path, info)
	if v, ok := r.memo.Get(key); ok {
		return v.(string), info, nil
	}

	sha, err := HashFile(path)
	if err != nil {
		return "", nil, err
	}
	r.hashed++
	r.memo.Set(key, sha, gocache.NoExpiration)
	return sha, info, nil
}

func memoKey(path string, info fs.FileInfo) string {
	return path + "|" + strconv.FormatInt(info.Size(), 10) + "|" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

// Collect lists the files to consider for ingestion. A regular file yields
// itself regardless of extension. A directory is walked recursively and only
// files whose lowercase extension is in exts are kept, sorted by RelPath.
func Collect(input string, exts []string) ([]Candidate, error) {
	root, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", input, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input path %s: %w", input, err)
	}
	if !info.IsDir() {
		return []Candidate{{Path: root, RelPath: filepath.Base(root)}}, nil
	}

	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[e] = struct{}{}
	}

	base := filepath.Dir(root)
	var out []Candidate
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		out = append(out, Candidate{Path: path, RelPath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", input, err)
	}

	slices.SortFunc(out, func(a, b Candidate) int { return strings.Compare(a.RelPath, b.RelPath) })
	return out, nil
}

// Failure is a candidate that could not be hashed.
type Failure struct {
	Candidate
	Err error
}

// Select hashes each candidate and splits them into files to process, files
// skipped because their hash is already known, and files that could not be
// read. Skipping happens only when skipExisting is set. One unreadable
// candidate does not affect the others.
func (r *Registry) Select(candidates []Candidate, known Known, skipExisting bool) (process, skipped []Entry, failed []Failure) {
	for _, c := range candidates {
		sha, info, err := r.Digest(c.Path)
		if err != nil {
			failed = append(failed, Failure{Candidate: c, Err: err})
			continue
		}
		e := Entry{
			Candidate: c,
			SHA256:    sha,
			ID:        DocID(sha),
			Size:      info.Size(),
			ModTime:   info.ModTime().UTC(),
		}
		if skipExisting && known != nil && known.Has(sha) {
			skipped = append(skipped, e)
			continue
		}
		process = append(process, e)
	}
	return process, skipped, failed
}

// Archive copies the entry's file into dir and returns the archived path and
// whether a copy was made. The file must still hash to e.SHA256, otherwise
// ErrChanged is returned. An existing file is never overwritten: one with
// the same content is reused, and a different file under the same name
// sends the copy to <stem>_<doc id><ext>. The modification time of the
// source is preserved.
func (r *Registry) Archive(e Entry, dir string) (string, bool, error) {
	sha, info, err := r.Digest(e.Path)
	if err != nil {
		return "", false, err
	}
	if sha != e.SHA256 {
		return "", false, fmt.Errorf("%s: %w", e.Path, ErrChanged)
	}

	base := filepath.Base(e.Path)
	ext := filepath.Ext(base)
	names := []string{base, strings.TrimSuffix(base, ext) + "_" + e.ID + ext}
	for _, name := range names {
		dst := filepath.Join(dir, name)
		exists, same, err := r.holds(dst, sha)
		if err != nil {
			return "", false, fmt.Errorf("checking %s: %w", dst, err)
		}
		if same {
			return dst, false, nil
		}
		if exists {
			continue
		}
		if err := copyFile(e.Path, dst, info.ModTime()); err != nil {
			return "", false, err
		}
		return dst, true, nil
	}
	return "", false, fmt.Errorf("no free archive name for %s in %s", base, dir)
}

// holds reports whether path exists and whether its content hashes to sha.
func (r *Registry) holds(path, sha string) (exists, same bool, err error) {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return false, false, nil
	} else if err != nil {
		return false, false, err
	}
	got, _, err := r.Digest(path)
	if err != nil {
		return true, false, err
	}
	return true, got == sha, nil
}

// copyFile copies src to dst through a temp file in dst's directory and
// stamps it with mtime.
func copyFile(src, dst string, mtime time.Time) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chtimes(tmpName, mtime, mtime); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}
