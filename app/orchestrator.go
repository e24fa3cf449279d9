package app

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ghgpipe/domain/inventory"
	"ghgpipe/internal/config"
	"ghgpipe/internal/errors"
	"ghgpipe/internal/manifest"
	"ghgpipe/ports"
)

// Orchestrator walks the input tree and drives the pipeline over every
// workbook. Files are processed in parallel; each country's results are
// merged and committed serially so the dataset is published exactly once,
// after all of its source files finished or failed.
type Orchestrator struct {
	pipeline *Pipeline
	store    ports.DatasetStore
	manifest ports.ManifestRecorder
	cfg      config.BatchConfig
}

// NewOrchestrator creates a batch orchestrator.
func NewOrchestrator(pipeline *Pipeline, store ports.DatasetStore, recorder ports.ManifestRecorder, cfg config.BatchConfig) *Orchestrator {
	return &Orchestrator{pipeline: pipeline, store: store, manifest: recorder, cfg: cfg}
}

// RunReport summarizes one batch run. Failures carry the stage and error of
// every file that did not commit; consumers surface the warning count next
// to the data so partially-degraded sheets stay visible.
type RunReport struct {
	RunID     string
	Processed int
	Committed int
	Failures  []manifest.Entry
	Warnings  int
}

type task struct {
	country string
	path    string
}

// Run processes every recognized workbook under inputDir. One bad file
// never aborts the batch: it becomes a manifest failure and the remaining
// files proceed. Cancelling the context stops scheduling new files but
// leaves already-committed country datasets intact.
func (o *Orchestrator) Run(ctx context.Context, inputDir string) (*RunReport, error) {
	tasks, err := discoverFiles(inputDir)
	if err != nil {
		return nil, err
	}
	report := &RunReport{RunID: uuid.NewString()}
	log.Printf("[Orchestrator] run %s: %d files under %s", report.RunID, len(tasks), inputDir)

	var mu sync.Mutex
	resultsByCountry := make(map[string][]*FileResult)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			fileCtx := gctx
			var cancel context.CancelFunc
			if o.cfg.FileTimeout > 0 {
				fileCtx, cancel = context.WithTimeout(gctx, o.cfg.FileTimeout)
				defer cancel()
			}
			res := o.pipeline.ProcessFile(fileCtx, t.country, t.path)
			mu.Lock()
			resultsByCountry[t.country] = append(resultsByCountry[t.country], res)
			mu.Unlock()
			// Failures are data, not errors: returning non-nil here
			// would cancel the whole group.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	countries := make([]string, 0, len(resultsByCountry))
	for c := range resultsByCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	for _, country := range countries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		o.commitCountry(ctx, country, resultsByCountry[country], report)
	}

	log.Printf("[Orchestrator] run %s finished: %d processed, %d committed, %d failed, %d warnings",
		report.RunID, report.Processed, report.Committed, len(report.Failures), report.Warnings)
	return report, nil
}

// commitCountry merges the country's successful file results and publishes
// them in one atomic commit. Within a run, a later file for the same year
// supersedes an earlier one (last write wins), mirroring how re-runs
// supersede previous commits.
func (o *Orchestrator) commitCountry(ctx context.Context, country string, results []*FileResult, report *RunReport) {
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	byYear := make(map[int][]inventory.GasRecord)
	var years []int
	committed := 0

	for _, res := range results {
		report.Processed++
		report.Warnings += len(res.Warnings)
		entry := manifest.Entry{
			RunID:    report.RunID,
			Country:  country,
			File:     res.File,
			Year:     res.Year,
			Stage:    string(res.Stage),
			Warnings: len(res.Warnings),
		}
		if res.Failed() {
			entry.Stage = string(StageFailed)
			entry.ErrorCode = errors.GetCode(res.Err)
			entry.Error = res.Err.Error()
			report.Failures = append(report.Failures, entry)
			log.Printf("[Orchestrator] %s failed at %s: %v", res.File, res.FailedAt, res.Err)
		} else {
			if _, seen := byYear[res.Year]; !seen {
				years = append(years, res.Year)
			}
			byYear[res.Year] = res.Records
			committed++
		}
		o.recordEntry(ctx, entry)
	}

	if committed == 0 {
		log.Printf("[Orchestrator] %s: no file succeeded, nothing committed", country)
		return
	}

	sort.Ints(years)
	var merged []inventory.GasRecord
	for _, y := range years {
		merged = append(merged, byYear[y]...)
	}

	if err := o.store.Commit(country, merged); err != nil {
		log.Printf("[Orchestrator] commit failed for %s: %v", country, err)
		for _, res := range results {
			if res.Failed() {
				continue
			}
			entry := manifest.Entry{
				RunID: report.RunID, Country: country, File: res.File, Year: res.Year,
				Stage: string(StageFailed), ErrorCode: errors.CodeStoreError, Error: err.Error(),
				Warnings: len(res.Warnings),
			}
			report.Failures = append(report.Failures, entry)
			o.recordEntry(ctx, entry)
		}
		return
	}

	report.Committed += committed
	for _, res := range results {
		if res.Failed() {
			continue
		}
		res.Stage = StageCommitted
		o.recordEntry(ctx, manifest.Entry{
			RunID: report.RunID, Country: country, File: res.File, Year: res.Year,
			Stage: string(StageCommitted), Warnings: len(res.Warnings),
		})
	}
}

func (o *Orchestrator) recordEntry(ctx context.Context, e manifest.Entry) {
	if o.manifest == nil {
		return
	}
	e.RecordedAt = time.Now().UTC()
	if err := o.manifest.Record(ctx, e); err != nil {
		log.Printf("[Orchestrator] manifest write failed for %s: %v", e.File, err)
	}
}

// discoverFiles lists root/{country}/*.xlsx sorted by country then name, so
// scheduling order is deterministic.
func discoverFiles(root string) ([]task, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read input directory %s", root)
	}

	var tasks []task
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		country := e.Name()
		files, err := filepath.Glob(filepath.Join(root, country, "*.xlsx"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list workbooks for %s", country)
		}
		sort.Strings(files)
		for _, f := range files {
			tasks = append(tasks, task{country: country, path: f})
		}
	}
	return tasks, nil
}
