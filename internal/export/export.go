// Package export writes merged tables to CSV and derives display views from them.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"FinDataCollector/internal/model"
)

const (
	// FilenameGlob matches every file this package produces.
	FilenameGlob = "financial_data_*.csv"

	isoDate   = "2006-01-02"
	shortDate = "06-01-02"
	bom       = "\ufeff"
)

var filenamePattern = regexp.MustCompile(`^financial_data_\d{4}_\d{2}_\d{2}_\d{4}_\d{2}_\d{2}\.csv$`)

// IsExportName reports whether name has exactly the shape of an exported file name.
func IsExportName(name string) bool {
	return filenamePattern.MatchString(name)
}

// Filename derives the artifact name from the requested range.
func Filename(start, end time.Time) string {
	return fmt.Sprintf("financial_data_%s_%s.csv", start.Format("2006_01_02"), end.Format("2006_01_02"))
}

// Exporter writes CSV artifacts into DataDir.
type Exporter struct {
	DataDir string
}

// NewExporter creates an Exporter for dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{DataDir: dir}
}

// Export writes table to its derived file name, replacing any previous file of that name.
// The file is UTF-8 with a BOM; null cells are written as empty fields.
func (e *Exporter) Export(table *model.MergedTable, start, end time.Time) (*model.ExportArtifact, error) {
	if err := os.MkdirAll(e.DataDir, 0o755); err != nil {
		return nil, fileErr("create data dir", err)
	}
	name := Filename(start, end)
	path := filepath.Join(e.DataDir, name)

	tmp, err := os.CreateTemp(e.DataDir, ".export-*.tmp")
	if err != nil {
		return nil, fileErr("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeCSV(tmp, table); err != nil {
		tmp.Close()
		return nil, fileErr("write csv", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fileErr("close csv", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return nil, fileErr("chmod csv", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fileErr("rename csv", err)
	}

	return &model.ExportArtifact{
		Filename: name,
		Filepath: path,
		Rows:     len(table.Rows),
		Columns:  len(table.Columns),
	}, nil
}

func writeCSV(f *os.File, table *model.MergedTable) error {
	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(bom); err != nil {
		return err
	}
	w := csv.NewWriter(bw)

	header := append([]string{"Date"}, table.ColumnNames()...)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(table.Columns)+1)
	for _, row := range table.Rows {
		record[0] = row.Date.Format(isoDate)
		for i, v := range row.Values {
			if v.Valid {
				record[i+1] = strconv.FormatFloat(v.Float64, 'f', -1, 64)
			} else {
				record[i+1] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

func fileErr(op string, err error) error {
	return &model.RequestError{
		Kind:    model.KindFileIO,
		Message: "파일 저장 실패",
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}
