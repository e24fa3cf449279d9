// Package app drives the ingestion pipeline: the per-file stage sequence and
// the batch orchestration across countries.
package app

import (
	"context"
	"log"

	"ghgpipe/adapters/excel"
	"ghgpipe/domain/inventory"
	"ghgpipe/internal/columns"
	"ghgpipe/internal/config"
	"ghgpipe/internal/errors"
	"ghgpipe/internal/extract"
	"ghgpipe/internal/header"
	"ghgpipe/internal/hierarchy"
	"ghgpipe/internal/vocab"
)

// Stage is one step of the per-file state machine.
type Stage string

const (
	StagePending        Stage = "pending"
	StageHeaderDetected Stage = "header_detected"
	StageHierarchyBuilt Stage = "hierarchy_built"
	StageExtracted      Stage = "extracted"
	StageCommitted      Stage = "committed"
	StageFailed         Stage = "failed"
)

// FileResult captures one workbook's outcome. On failure, FailedAt names
// the stage that was running and Err carries the structural error.
type FileResult struct {
	File     string
	Country  string
	Year     int
	Stage    Stage
	FailedAt Stage
	Err      error
	Records  []inventory.GasRecord
	Warnings []string
}

// Failed reports whether the file ended in failure.
func (r *FileResult) Failed() bool { return r.Stage == StageFailed }

func (r *FileResult) fail(at Stage, err error) *FileResult {
	r.Stage = StageFailed
	r.FailedAt = at
	r.Err = err
	return r
}

// Pipeline runs the detection, classification, hierarchy and extraction
// stages over a single workbook. It is stateless across files and safe for
// concurrent use by the orchestrator's workers.
type Pipeline struct {
	detector    *header.Detector
	classifier  *columns.Classifier
	builder     *hierarchy.Builder
	extractor   *extract.Extractor
	sheetPrefix string
}

// NewPipeline wires the pipeline stages over one shared vocabulary.
func NewPipeline(v *vocab.Vocabulary, cfg *config.Config) *Pipeline {
	return &Pipeline{
		detector:    header.New(v, cfg.Detector),
		classifier:  columns.New(v),
		builder:     hierarchy.New(v),
		extractor:   extract.New(v),
		sheetPrefix: cfg.Batch.SheetPrefix,
	}
}

// ProcessFile takes one workbook through the stage sequence. It never
// panics on malformed content: every structural problem ends in a typed
// failure result, and per-row anomalies accumulate as warnings.
func (p *Pipeline) ProcessFile(ctx context.Context, country, path string) *FileResult {
	res := &FileResult{File: path, Country: country, Stage: StagePending}

	meta, err := excel.ParseFileMeta(path)
	if err != nil {
		return res.fail(StagePending, err)
	}
	res.Year = meta.Year

	wb, err := excel.Open(path)
	if err != nil {
		return res.fail(StagePending, errors.WithCode(errors.CodeInputInvalid, err))
	}
	defer wb.Close()

	sheets := wb.SummarySheets(p.sheetPrefix)
	if len(sheets) == 0 {
		return res.fail(StagePending, errors.InvalidInput("no recognized summary sheet in "+path))
	}

	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return res.fail(res.Stage, errors.Wrapf(err, "processing cancelled for %s", path))
		}
		if err := p.processSheet(ctx, wb, sheet, country, meta.Year, res); err != nil {
			return res
		}
	}

	res.Stage = StageExtracted
	log.Printf("[Pipeline] %s: %d records, %d warnings", path, len(res.Records), len(res.Warnings))
	return res
}

// processSheet advances res through the stages for one sheet. A non-nil
// return means res has already been marked failed.
func (p *Pipeline) processSheet(ctx context.Context, wb *excel.Workbook, sheet, country string, year int, res *FileResult) error {
	g, err := wb.Grid(sheet)
	if err != nil {
		res.fail(StagePending, errors.WithCode(errors.CodeInputInvalid, err))
		return err
	}

	band, err := p.detector.Detect(g)
	if err != nil {
		res.fail(StagePending, err)
		return err
	}
	res.Stage = StageHeaderDetected

	classified, err := p.classifier.Classify(band)
	if err != nil {
		res.fail(StageHeaderDetected, err)
		return err
	}
	band.Columns = classified.Columns
	res.Warnings = append(res.Warnings, classified.Warnings...)

	tree, err := p.builder.Build(g, band)
	if err != nil {
		res.fail(StageHeaderDetected, err)
		return err
	}
	res.Stage = StageHierarchyBuilt
	res.Warnings = append(res.Warnings, tree.Warnings...)

	extracted := p.extractor.Extract(g, band, tree, country, year)
	res.Records = append(res.Records, extracted.Records...)
	res.Warnings = append(res.Warnings, extracted.Warnings...)
	return nil
}
