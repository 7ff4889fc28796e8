package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinDataCollector/internal/collector"
	"FinDataCollector/internal/model"
	"FinDataCollector/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func goldBars() []model.OHLCV {
	var bars []model.OHLCV
	for i, d := range []int{3, 4, 5, 6, 9} {
		bars = append(bars, model.OHLCV{
			Date:   time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC),
			Close:  null.FloatFrom(1830 + float64(i)),
			Volume: null.FloatFrom(100),
		})
	}
	return bars
}

func newTestServer(t *testing.T, mock *collector.MockFetcher) (*gin.Engine, *service.Service) {
	t.Helper()
	svc := service.New(mock, 1, nil, nil, service.Options{
		DataDir:        filepath.Join(t.TempDir(), "data"),
		MaxChartPoints: 1000,
		PreviewRows:    5,
	})
	svc.Validator.Now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local) }
	router := NewRouter(&Config{Handler: NewHandler(svc, nil), CORSOrigins: []string{"*"}})
	return router, svc
}

func do(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t, &collector.MockFetcher{})
	w, out := do(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestIndicators(t *testing.T) {
	router, _ := newTestServer(t, &collector.MockFetcher{})
	w, out := do(t, router, http.MethodGet, "/api/indicators", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.Contains(t, out["commodities"], "금")
	assert.Contains(t, out["stocks"], "S&P500")
	assert.Contains(t, out["exchange"], "KRW/USD")
}

func TestDownload_Success(t *testing.T) {
	mock := &collector.MockFetcher{Bars: map[string][]model.OHLCV{"GC=F": goldBars()}}
	router, _ := newTestServer(t, mock)

	w, out := do(t, router, http.MethodPost, "/api/download", map[string]any{
		"start_date":  "2023-01-01",
		"end_date":    "2023-01-10",
		"commodities": []string{"금"},
		"features":    []string{"가격"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "financial_data_2023_01_01_2023_01_10.csv", out["filename"])
	assert.EqualValues(t, 5, out["total_rows"])
	assert.EqualValues(t, 1, out["total_columns"])
	assert.Len(t, out["preview"], 5)
	assert.Len(t, out["chart_dates"], 5)
	assert.Equal(t, []any{"금 (Price)"}, out["chart_columns"])
	assert.Len(t, out["chart_data"].(map[string]any)["금 (Price)"], 5)

	results := out["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, map[string]any{"name": "금", "code": "GC=F", "count": 5.0, "status": "success"}, results[0])
	assert.Empty(t, out["errors"])

	// the written file can be fetched back
	w, _ = do(t, router, http.MethodGet, "/api/download-file/financial_data_2023_01_01_2023_01_10.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\ufeffDate,금 (Price)\n")))
}

func TestDownload_PartialFailure(t *testing.T) {
	mock := &collector.MockFetcher{
		Bars:   map[string][]model.OHLCV{"GC=F": goldBars()},
		Errors: map[string]error{"AAPL": errors.New("HTTP 404")},
	}
	router, _ := newTestServer(t, mock)

	w, out := do(t, router, http.MethodPost, "/api/download", map[string]any{
		"start_date":  "2023-01-01",
		"end_date":    "2023-01-10",
		"commodities": []string{"금"},
		"stocks":      []string{"애플"},
		"features":    []string{"가격"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.Len(t, out["results"], 1)
	require.Len(t, out["errors"], 1)
	assert.Equal(t, map[string]any{"name": "애플", "code": "AAPL", "message": "HTTP 404"}, out["errors"].([]any)[0])
}

func TestDownload_NoDataCollected(t *testing.T) {
	mock := &collector.MockFetcher{
		Bars:   map[string][]model.OHLCV{"GC=F": {}},
		Errors: map[string]error{"AAPL": errors.New("timeout")},
	}
	router, _ := newTestServer(t, mock)

	w, out := do(t, router, http.MethodPost, "/api/download", map[string]any{
		"start_date":  "2023-01-01",
		"end_date":    "2023-01-10",
		"commodities": []string{"금"},
		"stocks":      []string{"애플"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "추출된 데이터가 없습니다.", out["error"])
	errs := out["errors"].([]any)
	require.Len(t, errs, 2)
	assert.Equal(t, "데이터 없음", errs[0].(map[string]any)["message"])
}

func TestDownload_FutureEndDate(t *testing.T) {
	mock := &collector.MockFetcher{}
	router, _ := newTestServer(t, mock)

	w, out := do(t, router, http.MethodPost, "/api/download", map[string]any{
		"start_date":  "2024-03-01",
		"end_date":    "2024-03-16",
		"commodities": []string{"금"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
	assert.Empty(t, mock.Calls())
}

func TestDownload_BadBody(t *testing.T) {
	router, _ := newTestServer(t, &collector.MockFetcher{})
	req := httptest.NewRequest(http.MethodPost, "/api/download", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_ExportFailureIs500(t *testing.T) {
	mock := &collector.MockFetcher{Bars: map[string][]model.OHLCV{"GC=F": goldBars()}}
	router, svc := newTestServer(t, mock)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	svc.Exporter.DataDir = blocker

	w, out := do(t, router, http.MethodPost, "/api/download", map[string]any{
		"start_date":  "2023-01-01",
		"end_date":    "2023-01-10",
		"commodities": []string{"금"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, out["error"], "데이터 처리 중 오류 발생: ")
}

func TestDownloadFile_NotFound(t *testing.T) {
	router, svc := newTestServer(t, &collector.MockFetcher{})
	require.NoError(t, os.MkdirAll(svc.Store.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(svc.Store.Dir, "secret.txt"), []byte("x"), 0o644))

	for _, name := range []string{
		"financial_data_2020_01_01_2020_01_02.csv",
		"secret.txt",
		"..%2Fsecret.txt",
	} {
		w, _ := do(t, router, http.MethodGet, "/api/download-file/"+name, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, name)
	}
}

func TestListAndDeleteFiles(t *testing.T) {
	router, svc := newTestServer(t, &collector.MockFetcher{})
	require.NoError(t, os.MkdirAll(svc.Store.Dir, 0o755))
	mod := time.Date(2024, 3, 1, 10, 20, 30, 0, time.Local)
	for _, n := range []string{"financial_data_2023_01_01_2023_01_10.csv", "financial_data_2023_02_01_2023_02_10.csv"} {
		p := filepath.Join(svc.Store.Dir, n)
		require.NoError(t, os.WriteFile(p, []byte("abc"), 0o644))
		require.NoError(t, os.Chtimes(p, mod, mod))
	}

	w, out := do(t, router, http.MethodGet, "/api/list-files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	files := out["files"].([]any)
	require.Len(t, files, 2)
	assert.Equal(t, map[string]any{
		"filename": "financial_data_2023_01_01_2023_01_10.csv",
		"size":     3.0,
		"modified": "2024-03-01 10:20:30",
	}, files[0])

	w, out = do(t, router, http.MethodPost, "/api/delete-files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.EqualValues(t, 2, out["deleted_count"])
	assert.Empty(t, out["errors"])

	_, out = do(t, router, http.MethodGet, "/api/list-files", nil)
	assert.Empty(t, out["files"])
}

func TestHistory(t *testing.T) {
	router, _ := newTestServer(t, &collector.MockFetcher{})

	w, out := do(t, router, http.MethodGet, "/api/history?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.Empty(t, out["exports"])

	w, _ = do(t, router, http.MethodGet, "/api/history?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestServer(t, &collector.MockFetcher{})
	req := httptest.NewRequest(http.MethodOptions, "/api/download", nil)
	// must differ from the request host or cors treats it as same-origin
	req.Header.Set("Origin", "http://other.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
