// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest drives a batch of source documents through decoding,
// normalization, segmentation, and equation and claim extraction, writes the
// per-document artifacts, and records each processed document in the
// manifest.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/canon-engine/internal/claim"
	"github.com/pdiddy/canon-engine/internal/decode"
	"github.com/pdiddy/canon-engine/internal/equation"
	"github.com/pdiddy/canon-engine/internal/fsutil"
	"github.com/pdiddy/canon-engine/internal/manifest"
	"github.com/pdiddy/canon-engine/internal/normalize"
	"github.com/pdiddy/canon-engine/internal/registry"
	"github.com/pdiddy/canon-engine/internal/schema"
	"github.com/pdiddy/canon-engine/internal/segment"
	"github.com/pdiddy/canon-engine/internal/worker"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// Output tree layout, relative to the output directory.
const (
	SourcesDir    = "sources"
	ExtractedDir  = "extracted"
	ClaimsDir     = "canon/claims"
	EquationsDir  = "canon/equations"
	SectionsDir   = "canon/sections"
	ManifestsDir  = "manifests"
	ManifestFile  = "canon_manifest.json"
	claimsSuffix  = "_claims.json"
	eqSuffix      = "_equations.json"
	eqTeXSuffix   = "_equations.tex"
	sectionSuffix = "_sections.json"
)

// OutputDirs lists every directory of the output tree.
var OutputDirs = []string{SourcesDir, ExtractedDir, ClaimsDir, EquationsDir, SectionsDir, ManifestsDir}

// Decoder turns one source file into text.
type Decoder interface {
	Decode(ctx context.Context, path string) (decode.Result, error)
}

// Summary counts the outcome of one ingestion run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of files considered.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Pipeline holds the collaborators of an ingestion run.
type Pipeline struct {
	Config  types.IngestConfig
	Decoder Decoder

	// Out receives one status line per file and the batch summary.
	Out io.Writer

	// Logger receives debug tracing; nil discards it.
	Logger *slog.Logger

	// Now stamps ingested_at and extracted_at; nil uses time.Now.
	Now func() time.Time

	// Registry hashes and archives sources; nil creates one per Pipeline.
	Registry *registry.Registry

	collect func(input string, exts []string) ([]registry.Candidate, error)
}

// Run ingests cfg.Input into cfg.OutputDir using dec, writing status lines to w.
func Run(ctx context.Context, cfg types.IngestConfig, dec Decoder, w io.Writer) (Summary, error) {
	p := &Pipeline{Config: cfg, Decoder: dec, Out: w}
	return p.Run(ctx)
}

// decoded is the outcome of decoding one entry on the worker pool.
type decoded struct {
	res decode.Result
	err error
}

// extractors are shared by every document of a run so ids keep increasing.
type extractors struct {
	equations *equation.Extractor
	claims    *claim.Extractor
}

// Run executes the pipeline. Per-document failures are reported and counted;
// the returned error is non-nil only when the run itself cannot proceed.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	p.defaults()
	cfg := p.Config

	if err := p.validate(); err != nil {
		return sum, err
	}

	for _, d := range OutputDirs {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, d), 0o755); err != nil {
			return sum, fmt.Errorf("%w: creating output tree: %v", ErrIO, err)
		}
	}

	m, err := manifest.Load(filepath.Join(cfg.OutputDir, ManifestsDir, ManifestFile))
	if err != nil {
		return sum, fmt.Errorf("%w: %v", ErrIO, err)
	}

	candidates, err := p.collect(cfg.Input, cfg.Extensions)
	if err != nil {
		return sum, fmt.Errorf("%w: %v", ErrIO, err)
	}
	p.Logger.Debug("collected candidates", "input", cfg.Input, "count", len(candidates))

	process, skipped, failed := p.Registry.Select(candidates, m, cfg.SkipExisting)
	for _, f := range failed {
		fmt.Fprintf(p.Out, "failed  %s: %v\n", filepath.Base(f.Path), f.Err)
		sum.Failed++
	}
	for _, e := range skipped {
		fmt.Fprintf(p.Out, "skipped %s (already in manifest)\n", filepath.Base(e.Path))
		sum.Skipped++
	}

	results, err := worker.Map(ctx, cfg.Workers, process, func(ctx context.Context, e registry.Entry) decoded {
		res, err := p.Decoder.Decode(ctx, e.Path)
		return decoded{res: res, err: err}
	})
	if err != nil {
		return sum, err
	}

	ex := extractors{equations: equation.New(), claims: claim.New()}
	for i, e := range process {
		name := filepath.Base(e.Path)
		if results[i].err != nil {
			fmt.Fprintf(p.Out, "failed  %s: %v\n", name, results[i].err)
			sum.Failed++
			continue
		}

		meta, err := p.ingestDocument(e, results[i].res, ex)
		if err != nil {
			fmt.Fprintf(p.Out, "failed  %s: %v\n", name, err)
			sum.Failed++
			continue
		}
		m.Add(meta)
		sum.Processed++
		fmt.Fprintf(p.Out, "ingested %s -> %s (%d sections, %d equations, %d claims)\n",
			name, meta.ID, meta.SectionsCount, meta.EquationsCount, meta.ClaimsCount)
	}

	if err := m.Save(); err != nil {
		return sum, fmt.Errorf("%w: %v", ErrIO, err)
	}

	fmt.Fprintf(p.Out, "\nBatch summary: %d ingested, %d skipped, %d failed (total: %d)\n",
		sum.Processed, sum.Skipped, sum.Failed, sum.Total())
	return sum, nil
}

func (p *Pipeline) defaults() {
	if p.Out == nil {
		p.Out = io.Discard
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Registry == nil {
		p.Registry = registry.New()
	}
	if p.collect == nil {
		p.collect = registry.Collect
	}
	if len(p.Config.Extensions) == 0 {
		p.Config.Extensions = types.DefaultExtensions
	}
	if p.Config.Workers < 1 {
		p.Config.Workers = 1
	}
}

// validate checks required settings and the claim schema. With no explicit
// schema path, a claim_schema.yaml next to the output directory is validated
// when present.
func (p *Pipeline) validate() error {
	cfg := p.Config
	if strings.TrimSpace(cfg.Input) == "" {
		return fmt.Errorf("%w: input path is required", ErrValidation)
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is required", ErrValidation)
	}
	if p.Decoder == nil {
		return fmt.Errorf("%w: no decoder configured", ErrValidation)
	}

	path := cfg.SchemaPath
	if path == "" {
		abs, err := filepath.Abs(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("%w: resolving %s: %v", ErrIO, cfg.OutputDir, err)
		}
		candidate := filepath.Join(filepath.Dir(abs), schema.FileName)
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = candidate
	}

	s, err := schema.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: claim schema %s: %v", ErrValidation, path, err)
	}
	p.Logger.Debug("claim schema valid", "path", path)
	return nil
}

// ingestDocument archives, segments and extracts one decoded document and
// writes its artifacts. Nothing is added to the manifest here.
func (p *Pipeline) ingestDocument(e registry.Entry, res decode.Result, ex extractors) (types.DocumentMeta, error) {
	out := p.Config.OutputDir
	name := filepath.Base(e.Path)

	archived, copied, err := p.Registry.Archive(e, filepath.Join(out, SourcesDir))
	if err != nil {
		return types.DocumentMeta{}, fmt.Errorf("%w: archiving: %v", ErrIO, err)
	}
	p.Logger.Debug("archived source", "file", name, "path", archived, "copied", copied)

	text := normalize.Normalize(res.Text)
	sections := segment.Segment(text)
	if sections == nil {
		sections = []types.Section{}
	}

	var docEquations []string
	var docClaims []types.Claim
	for _, sec := range sections {
		// Page numbers are not tracked per section.
		eqs := ex.equations.Extract(sec.Text, sec.Title, nil)
		claims := ex.claims.Extract(sec.Text, sec.Title, name, nil)
		link(ex.equations, eqs, claims)

		for _, eq := range eqs {
			docEquations = append(docEquations, eq.ID)
		}
		docClaims = append(docClaims, claims...)
		p.Logger.Debug("section extracted", "file", name, "section", sec.Title,
			"equations", len(eqs), "claims", len(claims))
	}

	equations := make([]types.Equation, 0, len(docEquations))
	for _, id := range docEquations {
		if eq, ok := ex.equations.Get(id); ok {
			equations = append(equations, eq)
		}
	}

	now := p.Now().UTC()
	record := types.ExtractedRecord{
		DocID:       e.ID,
		Filename:    name,
		SHA256:      e.SHA256,
		Pages:       res.Pages,
		ContentType: res.ContentType,
		Sections:    sections,
		ExtractedAt: now,
	}
	if err := p.writeArtifacts(record, docClaims, equations); err != nil {
		return types.DocumentMeta{}, err
	}

	return types.DocumentMeta{
		Document: types.Document{
			ID:          e.ID,
			Filename:    name,
			SHA256:      e.SHA256,
			ByteSize:    e.Size,
			ModTime:     e.ModTime,
			ContentType: res.ContentType,
			Pages:       res.Pages,
			IngestedAt:  now,
		},
		RelPath:        e.RelPath,
		ClaimsCount:    len(docClaims),
		EquationsCount: len(equations),
		SectionsCount:  len(sections),
	}, nil
}

// link records each claim on the equations of its section whose formula
// appears verbatim in the claim statement. Claims are left as extracted.
func link(eqx *equation.Extractor, eqs []types.Equation, claims []types.Claim) {
	for _, c := range claims {
		for _, eq := range eqs {
			if strings.Contains(c.Statement, eq.Formula) {
				eqx.Link(eq.ID, c.ID)
			}
		}
	}
}

func (p *Pipeline) writeArtifacts(record types.ExtractedRecord, claims []types.Claim, equations []types.Equation) error {
	out := p.Config.OutputDir
	id := record.DocID

	writes := []struct {
		path string
		v    any
	}{
		{filepath.Join(out, ExtractedDir, id+".json"), record},
		{filepath.Join(out, ClaimsDir, id+claimsSuffix), claim.NewExport(claims)},
		{filepath.Join(out, EquationsDir, id+eqSuffix), equation.NewExport(equations)},
		{filepath.Join(out, SectionsDir, id+sectionSuffix), record.Sections},
	}
	for _, wr := range writes {
		if err := fsutil.WriteJSON(wr.path, wr.v); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}

	var tex bytes.Buffer
	if err := equation.WriteLaTeXIndex(&tex, equations); err != nil {
		return fmt.Errorf("%w: rendering LaTeX index: %v", ErrIO, err)
	}
	if err := fsutil.WriteFile(filepath.Join(out, EquationsDir, id+eqTeXSuffix), tex.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
