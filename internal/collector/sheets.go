package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"golang.org/x/time/rate"

	"FinDataCollector/internal/model"
)

// SheetsFetcher implements Fetcher against a spreadsheet web app that evaluates
// GOOGLEFINANCE for a ticker and returns dated closing prices. Volume is not available.
type SheetsFetcher struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewSheetsFetcher creates a fetcher with optional proxy support.
func NewSheetsFetcher(baseURL, proxyURL string, timeout time.Duration, requestsPerSecond float64) *SheetsFetcher {
	return &SheetsFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		Limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (f *SheetsFetcher) Name() string { return "sheets" }

// sheetsResponse is the JSON shape of the web app.
type sheetsResponse struct {
	Success bool   `json:"success"`
	Ticker  string `json:"ticker"`
	Error   string `json:"error"`
	Data    []struct {
		Date  string     `json:"date"`
		Price null.Float `json:"price"`
	} `json:"data"`
}

func (f *SheetsFetcher) FetchHistorical(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("sheets rate limit: %w", err)
		}
	}

	q := url.Values{}
	q.Set("action", "fetch_stock")
	q.Set("ticker", code)
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch sheet: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}

	var out sheetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sheet: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("sheet error: %s", out.Error)
	}
	if !out.Success {
		return nil, fmt.Errorf("sheet error: unsuccessful response")
	}

	bars := make([]model.OHLCV, 0, len(out.Data))
	for _, d := range out.Data {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, fmt.Errorf("decode sheet: bad date %q: %w", d.Date, err)
		}
		if !d.Price.Valid || !inRange(date, start, end) {
			continue
		}
		bars = append(bars, model.OHLCV{Date: date, Close: d.Price})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
