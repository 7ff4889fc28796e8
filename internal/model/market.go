package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// OHLCV represents a single daily bar as returned by a provider.
// Cells are nullable because providers report missing sessions as null.
type OHLCV struct {
	Date   time.Time // calendar date, midnight UTC
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Float
}

// Outcome classifies the result of fetching one instrument.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// EmptyMessage is reported for an instrument whose provider call succeeded without rows.
const EmptyMessage = "데이터 없음"

// SeriesResult is the per-instrument outcome of a fetch.
type SeriesResult struct {
	Instrument Instrument
	Outcome    Outcome
	Rows       int
	Message    string
	Bars       []OHLCV
}

// Failed reports whether the instrument contributed nothing to the table.
func (r SeriesResult) Failed() bool { return r.Outcome != OutcomeSuccess }

// Reason is the human readable failure text.
func (r SeriesResult) Reason() string {
	if r.Outcome == OutcomeEmpty {
		return EmptyMessage
	}
	return r.Message
}
