// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the canon-engine pipeline.
// Document, Section and Manifest describe ingested files; Equation and Claim
// describe the entities extracted from their sections.
package types

import "time"

// ManifestVersion is written to every newly initialized manifest.
const ManifestVersion = "0.1"

// Content types reported by the document decoders.
const (
	ContentTypeText     = "text/plain"
	ContentTypeMarkdown = "text/markdown"
	ContentTypeHTML     = "text/html"
	ContentTypePDF      = "application/pdf"
	ContentTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Document identifies one ingested source file. It is immutable once created.
type Document struct {
	// ID is the first 16 hex characters of SHA256.
	ID string `json:"doc_id" yaml:"doc_id"`

	// Filename is the base name of the source file.
	Filename string `json:"filename" yaml:"filename"`

	// SHA256 is the lowercase hex digest of the file bytes.
	SHA256 string `json:"sha256" yaml:"sha256"`

	// ByteSize is the size of the source file in bytes.
	ByteSize int64 `json:"bytes" yaml:"bytes"`

	// ModTime is the source file modification time in UTC.
	ModTime time.Time `json:"mtime_utc" yaml:"mtime_utc"`

	// ContentType is the label reported by the decoder (e.g. "application/pdf").
	ContentType string `json:"content_type" yaml:"content_type"`

	// Pages is the page count when the decoder can determine one.
	Pages *int `json:"pages" yaml:"pages"`

	// IngestedAt is when extraction of this document finished.
	IngestedAt time.Time `json:"ingested_at" yaml:"ingested_at"`
}

// DocumentMeta is the manifest record for a successfully processed document.
type DocumentMeta struct {
	Document `yaml:",inline"`

	// RelPath is the path relative to the parent of the input root.
	RelPath string `json:"relpath" yaml:"relpath"`

	ClaimsCount    int `json:"claims_count" yaml:"claims_count"`
	EquationsCount int `json:"equations_count" yaml:"equations_count"`
	SectionsCount  int `json:"sections_count" yaml:"sections_count"`
}

// Manifest is the durable registry of every document ingested across runs.
type Manifest struct {
	Version        string         `json:"version" yaml:"version"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
	Documents      []DocumentMeta `json:"documents" yaml:"documents"`
	UpdatedAt      time.Time      `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
	TotalDocuments int            `json:"total_documents" yaml:"total_documents"`
}

// Section is a contiguous span of document text under one heading.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`

	// StartLine is the 0-based index of the heading line.
	StartLine int `json:"start_line" yaml:"start_line"`

	// EndLine is the exclusive 0-based index where the next section starts.
	EndLine int `json:"end_line" yaml:"end_line"`
}

// ExtractedRecord is the per-document dump written to extracted/<doc_id>.json.
type ExtractedRecord struct {
	DocID       string    `json:"doc_id" yaml:"doc_id"`
	Filename    string    `json:"filename" yaml:"filename"`
	SHA256      string    `json:"sha256" yaml:"sha256"`
	Pages       *int      `json:"pages" yaml:"pages"`
	ContentType string    `json:"content_type" yaml:"content_type"`
	Sections    []Section `json:"sections" yaml:"sections"`
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// LineRange is an inclusive pair of 1-based line numbers.
type LineRange [2]int
