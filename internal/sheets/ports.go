// Package sheets defines the ports the sync worker writes the mirror
// spreadsheet through.
package sheets

import (
	"context"

	"notas/internal/core"
)

type (
	// RecordWriter upserts a record row, keyed by record id.
	RecordWriter interface {
		Write(ctx context.Context, rec core.Record) error
	}

	// RecordRemover drops the row for a deleted record. Removing a row
	// that is not there is not an error.
	RecordRemover interface {
		Remove(ctx context.Context, id int64) error
	}
)
