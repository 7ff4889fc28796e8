package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"FinDataCollector/internal/model"
)

// Fetcher defines the provider boundary: one call per symbol over [start, end).
// A successful call with no rows returns an empty slice and a nil error.
type Fetcher interface {
	FetchHistorical(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// NewFetcher builds the provider named by provider: "yahoo", "sheets" or "mock".
func NewFetcher(provider, baseURL, proxyURL string, timeout time.Duration, requestsPerSecond float64) (Fetcher, error) {
	switch provider {
	case "yahoo":
		f := NewYahooFetcher(proxyURL, timeout, requestsPerSecond)
		if baseURL != "" {
			f.BaseURL = baseURL
		}
		return f, nil
	case "sheets":
		if baseURL == "" {
			return nil, fmt.Errorf("sheets provider needs a base url")
		}
		return NewSheetsFetcher(baseURL, proxyURL, timeout, requestsPerSecond), nil
	case "mock":
		return &MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// dateOf truncates t to its calendar date as midnight UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inRange reports whether date lies in [start, end).
func inRange(date, start, end time.Time) bool {
	return !date.Before(start) && date.Before(end)
}
