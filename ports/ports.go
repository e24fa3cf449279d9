// Package ports declares the seams between the batch orchestrator and its
// adapters, so tests can substitute in-memory fakes for the workbook
// reader, the dataset store and the manifest recorder.
package ports

import (
	"context"

	"ghgpipe/domain/inventory"
	"ghgpipe/internal/manifest"
)

// DatasetStore publishes committed country datasets.
type DatasetStore interface {
	Commit(country string, records []inventory.GasRecord) error
}

// ManifestRecorder persists per-file outcomes of a batch run.
type ManifestRecorder interface {
	Record(ctx context.Context, e manifest.Entry) error
}
