// internal/app/system/csvutil/decisions.go

// Package csvutil renders decision records as CSV for offline review.
package csvutil

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	decisionstore "github.com/dalemusser/classhub/internal/app/store/decisions"
)

// MaxExportRows caps a single CSV export so one request cannot stream an
// unbounded result set.
const MaxExportRows = 20000

var header = []string{"timestamp", "actor", "operation", "path", "allowed", "rule", "ruleset", "source", "ip", "note"}

// WriteDecisions writes records to w as CSV with a header row.
func WriteDecisions(w io.Writer, records []decisionstore.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.Actor,
			rec.Operation,
			rec.Path,
			strconv.FormatBool(rec.Allowed),
			rec.Rule,
			rec.Ruleset,
			rec.Source,
			rec.IP,
			rec.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
