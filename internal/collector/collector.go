package collector

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"FinDataCollector/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Bars and Errors are keyed by symbol code; any other code gets generated
// weekday bars around Price.
type MockFetcher struct {
	Price  float64
	Bars   map[string][]model.OHLCV
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns every code requested so far, in call order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockFetcher) FetchHistorical(_ context.Context, code string, start, end time.Time) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls = append(m.calls, code)
	m.mu.Unlock()
	if err, ok := m.Errors[code]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[code]; ok {
		out := make([]model.OHLCV, 0, len(bars))
		for _, b := range bars {
			if inRange(b.Date, start, end) {
				out = append(out, b)
			}
		}
		return out, nil
	}
	price := m.Price
	if price == 0 {
		price = 100
	}
	return generateMockBars(price, start, end), nil
}

// generateMockBars emits one bar per weekday in [start, end).
func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := dateOf(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.001)
		bars = append(bars, model.OHLCV{
			Date:   d,
			Open:   null.FloatFrom(p * 0.999),
			High:   null.FloatFrom(p * 1.005),
			Low:    null.FloatFrom(p * 0.995),
			Close:  null.FloatFrom(p),
			Volume: null.FloatFrom(1000000),
		})
		i++
	}
	if bars == nil {
		bars = []model.OHLCV{}
	}
	return bars
}

// Collector fetches every instrument of a request, isolating failures per instrument.
type Collector struct {
	Fetcher Fetcher
	Logger  *logrus.Logger
	// Concurrency bounds in-flight provider calls; values below 2 fetch sequentially.
	Concurrency int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, logger *logrus.Logger, concurrency int) *Collector {
	return &Collector{Fetcher: fetcher, Logger: logger, Concurrency: concurrency}
}

// Collect returns exactly one result per requested instrument, in request order.
// It never fails as a whole: provider errors are recorded on the instrument's result.
func (c *Collector) Collect(ctx context.Context, req *model.SelectionRequest) []model.SeriesResult {
	results := make([]model.SeriesResult, len(req.Instruments))

	if c.Concurrency < 2 {
		for i, inst := range req.Instruments {
			results[i] = c.fetchOne(ctx, inst, req.StartDate, req.EndDate)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(c.Concurrency)
	for i, inst := range req.Instruments {
		g.Go(func() error {
			results[i] = c.fetchOne(ctx, inst, req.StartDate, req.EndDate)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Collector) fetchOne(ctx context.Context, inst model.Instrument, start, end time.Time) (res model.SeriesResult) {
	res.Instrument = inst
	log := c.logger().WithFields(logrus.Fields{
		"symbol":   inst.Name,
		"code":     inst.Code,
		"provider": c.Fetcher.Name(),
	})

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = model.OutcomeError
			res.Message = fmt.Sprintf("%v", r)
			res.Bars = nil
			log.WithField("panic", r).Error("fetch panicked")
		}
	}()

	bars, err := c.Fetcher.FetchHistorical(ctx, inst.Code, start, end)
	switch {
	case err != nil:
		res.Outcome = model.OutcomeError
		res.Message = err.Error()
		log.WithError(err).Warn("fetch failed")
	case len(bars) == 0:
		res.Outcome = model.OutcomeEmpty
		log.Warn("no data returned")
	default:
		res.Outcome = model.OutcomeSuccess
		res.Rows = len(bars)
		res.Bars = bars
		log.WithField("rows", len(bars)).Info("fetched")
	}
	return res
}

func (c *Collector) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
