package export

import (
	"github.com/guregu/null/v6"

	"FinDataCollector/internal/model"
)

// DefaultMaxPoints caps the chart sample.
const DefaultMaxPoints = 1000

// Sample returns at most maxPoints rows of table for charting, starting at row 0
// with a uniform stride of ceil(rows/maxPoints). Nulls become 0 here only.
func Sample(table *model.MergedTable, maxPoints int) *model.ChartSample {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	n := len(table.Rows)
	stride := 1
	if n > maxPoints {
		stride = (n + maxPoints - 1) / maxPoints
	}

	cols := table.ColumnNames()
	s := &model.ChartSample{
		Dates:   make([]string, 0, n/stride+1),
		Columns: cols,
		Series:  make(map[string][]float64, len(cols)),
	}
	for _, c := range cols {
		s.Series[c] = make([]float64, 0, n/stride+1)
	}
	for i := 0; i < n; i += stride {
		row := table.Rows[i]
		s.Dates = append(s.Dates, row.Date.Format(shortDate))
		for ci, c := range cols {
			s.Series[c] = append(s.Series[c], row.Values[ci].ValueOrZero())
		}
	}
	return s
}

// Preview returns the last n rows of table with short dates. Nulls stay null.
func Preview(table *model.MergedTable, n int) *model.Preview {
	rows := table.Rows
	if n < 0 {
		n = 0
	}
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	p := &model.Preview{
		Dates: make([]string, 0, len(rows)),
		Rows:  make([]map[string]null.Float, 0, len(rows)),
	}
	cols := table.ColumnNames()
	for _, row := range rows {
		p.Dates = append(p.Dates, row.Date.Format(shortDate))
		m := make(map[string]null.Float, len(cols))
		for ci, c := range cols {
			m[c] = row.Values[ci]
		}
		p.Rows = append(p.Rows, m)
	}
	return p
}
