// Package merger aligns per-instrument series on a shared date axis.
package merger

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"FinDataCollector/internal/model"
)

const msgNoData = "추출된 데이터가 없습니다."

// ColumnName is the output column label for one instrument field.
func ColumnName(inst model.Instrument, f model.Field) string {
	return inst.Name + " (" + f.Label() + ")"
}

// Merge outer-joins the successful results on date.
//
// Columns follow result order, then field order. Rows are ascending by date and
// rows with no value in any column are dropped. When nothing succeeded the
// returned error is a NoDataCollected RequestError carrying every failure.
func Merge(results []model.SeriesResult, fields []model.Field) (*model.MergedTable, error) {
	var (
		columns []model.Column
		sources []model.SeriesResult
	)
	for _, r := range results {
		if r.Outcome != model.OutcomeSuccess {
			continue
		}
		sources = append(sources, r)
		for _, f := range fields {
			columns = append(columns, model.Column{
				Name:       ColumnName(r.Instrument, f),
				Instrument: r.Instrument,
				Field:      f,
			})
		}
	}
	if len(sources) == 0 {
		e := model.NewRequestError(model.KindNoDataCollected, msgNoData)
		e.Failures = failures(results)
		return nil, e
	}

	rows := make(map[time.Time][]null.Float)
	for si, src := range sources {
		for _, bar := range src.Bars {
			vals, ok := rows[bar.Date]
			if !ok {
				vals = make([]null.Float, len(columns))
				rows[bar.Date] = vals
			}
			// a later bar for the same date overwrites an earlier one
			for fi, f := range fields {
				vals[si*len(fields)+fi] = pick(bar, f)
			}
		}
	}

	table := &model.MergedTable{Columns: columns, Rows: make([]model.Row, 0, len(rows))}
	for date, vals := range rows {
		if allNull(vals) {
			continue
		}
		table.Rows = append(table.Rows, model.Row{Date: date, Values: vals})
	}
	sort.Slice(table.Rows, func(i, j int) bool { return table.Rows[i].Date.Before(table.Rows[j].Date) })
	return table, nil
}

func pick(bar model.OHLCV, f model.Field) null.Float {
	switch f {
	case model.FieldVolume:
		return bar.Volume
	default:
		return bar.Close
	}
}

func allNull(vals []null.Float) bool {
	for _, v := range vals {
		if v.Valid {
			return false
		}
	}
	return true
}

func failures(results []model.SeriesResult) []model.SeriesResult {
	var out []model.SeriesResult
	for _, r := range results {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}
