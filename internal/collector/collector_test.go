package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinDataCollector/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRequest(insts ...model.Instrument) *model.SelectionRequest {
	return &model.SelectionRequest{
		StartDate:   day(2023, 1, 1),
		EndDate:     day(2023, 1, 10),
		Instruments: insts,
		Fields:      []model.Field{model.FieldPrice},
	}
}

var (
	gold   = model.Instrument{Name: "금", Code: "GC=F", Category: model.Commodity}
	silver = model.Instrument{Name: "은", Code: "SI=F", Category: model.Commodity}
	apple  = model.Instrument{Name: "애플", Code: "AAPL", Category: model.Equity}
)

// panicFetcher blows up for one code to prove isolation holds even for panics.
type panicFetcher struct {
	MockFetcher
	code string
}

func (p *panicFetcher) FetchHistorical(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error) {
	if code == p.code {
		panic("provider exploded")
	}
	return p.MockFetcher.FetchHistorical(ctx, code, start, end)
}

func TestCollect_IsolatesFailures(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		mock := &MockFetcher{
			Price:  50,
			Errors: map[string]error{"SI=F": errors.New("404 Not Found")},
			Bars:   map[string][]model.OHLCV{"AAPL": {}},
		}
		c := NewCollector(mock, nil, concurrency)

		results := c.Collect(context.Background(), testRequest(gold, silver, apple))
		require.Len(t, results, 3)

		assert.Equal(t, gold, results[0].Instrument)
		assert.Equal(t, model.OutcomeSuccess, results[0].Outcome)
		// 2023-01-02 .. 2023-01-09 weekdays
		assert.Equal(t, 6, results[0].Rows)
		assert.Len(t, results[0].Bars, 6)

		assert.Equal(t, silver, results[1].Instrument)
		assert.Equal(t, model.OutcomeError, results[1].Outcome)
		assert.Equal(t, "404 Not Found", results[1].Reason())
		assert.Nil(t, results[1].Bars)

		assert.Equal(t, apple, results[2].Instrument)
		assert.Equal(t, model.OutcomeEmpty, results[2].Outcome)
		assert.Equal(t, model.EmptyMessage, results[2].Reason())

		assert.ElementsMatch(t, []string{"GC=F", "SI=F", "AAPL"}, mock.Calls())
	}
}

func TestCollect_SequentialKeepsRequestOrder(t *testing.T) {
	mock := &MockFetcher{}
	c := NewCollector(mock, nil, 1)
	c.Collect(context.Background(), testRequest(apple, gold, silver))
	assert.Equal(t, []string{"AAPL", "GC=F", "SI=F"}, mock.Calls())
}

func TestCollect_RecoversPanics(t *testing.T) {
	f := &panicFetcher{code: "GC=F"}
	c := NewCollector(f, nil, 1)

	results := c.Collect(context.Background(), testRequest(gold, apple))
	require.Len(t, results, 2)
	assert.Equal(t, model.OutcomeError, results[0].Outcome)
	assert.Contains(t, results[0].Message, "provider exploded")
	assert.Equal(t, model.OutcomeSuccess, results[1].Outcome)
}

func TestMockFetcher_FiltersFixedBarsToRange(t *testing.T) {
	mock := &MockFetcher{Bars: map[string][]model.OHLCV{
		"GC=F": {
			{Date: day(2022, 12, 30), Close: null.FloatFrom(1)},
			{Date: day(2023, 1, 3), Close: null.FloatFrom(2)},
			{Date: day(2023, 1, 10), Close: null.FloatFrom(3)},
		},
	}}
	bars, err := mock.FetchHistorical(context.Background(), "GC=F", day(2023, 1, 1), day(2023, 1, 10))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, day(2023, 1, 3), bars[0].Date)
}
