package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Column is one output column of a merged table.
type Column struct {
	Name       string
	Instrument Instrument
	Field      Field
}

// Row holds one date and a value per column, in column order.
type Row struct {
	Date   time.Time
	Values []null.Float
}

// MergedTable is the date-aligned result of combining per-instrument series.
type MergedTable struct {
	Columns []Column
	Rows    []Row
}

// ColumnNames returns the column names in table order.
func (t *MergedTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ExportArtifact describes a CSV file written for a request.
type ExportArtifact struct {
	Filename string
	Filepath string
	Rows     int
	Columns  int
}

// ChartSample is the bounded, display-only view of a merged table.
type ChartSample struct {
	Dates   []string
	Columns []string
	Series  map[string][]float64
}

// Preview is the tail of a merged table as shown to the user.
type Preview struct {
	Dates []string
	Rows  []map[string]null.Float
}

// FileInfo describes an exported file on disk.
type FileInfo struct {
	Filename string
	Size     int64
	Modified time.Time
}

// FileError is a per-file failure during housekeeping.
type FileError struct {
	Filename string
	Err      string
}

// DeleteReport summarises a best-effort delete run.
type DeleteReport struct {
	Deleted int
	Errors  []FileError
}
