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

// DefaultYahooBaseURL is the public chart endpoint.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewYahooFetcher creates a fetcher paced at requestsPerSecond.
func NewYahooFetcher(proxyURL string, timeout time.Duration, requestsPerSecond float64) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		Limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []null.Float `json:"open"`
					High   []null.Float `json:"high"`
					Low    []null.Float `json:"low"`
					Close  []null.Float `json:"close"`
					Volume []null.Float `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []null.Float `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []null.Float, i int) null.Float {
	if i < len(vals) {
		return vals[i]
	}
	return null.Float{}
}

// FetchHistorical returns daily bars dated in the exchange's calendar, restricted to [start, end).
// Close is the split/dividend adjusted close when Yahoo supplies one.
func (f *YahooFetcher) FetchHistorical(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("yahoo rate limit: %w", err)
		}
	}

	// widen by a day on each side; exchange-local dates are filtered below
	q := url.Values{}
	q.Set("period1", fmt.Sprint(start.AddDate(0, 0, -1).Unix()))
	q.Set("period2", fmt.Sprint(end.AddDate(0, 0, 1).Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")
	q.Set("includeAdjustedClose", "true")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(code), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if len(chart.Chart.Result) == 0 {
		return []model.OHLCV{}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []model.OHLCV{}, nil
	}
	quote := result.Indicators.Quote[0]
	var adj []null.Float
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := model.OHLCV{
			Date:   dateOf(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  at(quote.Close, i),
			Volume: at(quote.Volume, i),
		}
		if !bar.Open.Valid && !bar.High.Valid && !bar.Low.Valid && !bar.Close.Valid {
			continue // null bars (holidays etc.)
		}
		if a := at(adj, i); a.Valid {
			bar.Close = a
		}
		if !inRange(bar.Date, start, end) {
			continue
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
