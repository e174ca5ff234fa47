package types

// DefaultExtensions is the allow-list used when walking an input directory.
var DefaultExtensions = []string{".pdf", ".docx", ".txt", ".md", ".html", ".htm"}

// IngestConfig holds settings for the ingestion stage.
type IngestConfig struct {
	// Input is a single file or a directory walked recursively.
	Input string `json:"input" yaml:"input"`

	// OutputDir is the base directory for the canon (contains sources/,
	// extracted/, canon/, manifests/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SkipExisting skips files whose hash is already in the manifest.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`

	// Extensions is the lowercase allow-list applied to directory walks
	// (default DefaultExtensions).
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Workers is the number of concurrent decoders (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// SchemaPath is an optional claim schema YAML validated before ingestion.
	SchemaPath string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// DecodeConfig holds settings for the document decoders.
type DecodeConfig struct {
	// PDFImage is the container image used to convert PDFs (default "markitdown:latest").
	PDFImage string `json:"pdf_image" yaml:"pdf_image"`

	// DisablePDF skips container detection; PDFs then fail as unsupported.
	DisablePDF bool `json:"disable_pdf" yaml:"disable_pdf"`
}

// IndexConfig holds settings for the claim index stage.
type IndexConfig struct {
	// OutputDir is the canon base directory (contains canon/, extracted/, index/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
