package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecentExportsNewestFirst(t *testing.T) {
	r := newTestRecorder(t)
	base := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordExport(&ExportEvent{
		ID:         "a",
		RecordedAt: base,
		StartDate:  "2023-01-01",
		EndDate:    "2023-01-10",
		Filename:   "financial_data_2023_01_01_2023_01_10.csv",
		Rows:       5,
		Columns:    1,
		Outcomes: []FetchOutcome{
			{Name: "금", Code: "GC=F", Status: "success", Rows: 5},
			{Name: "은", Code: "SI=F", Status: "error", Message: "timeout"},
		},
	}))
	require.NoError(t, r.RecordExport(&ExportEvent{
		ID:         "b",
		RecordedAt: base.Add(time.Minute),
		StartDate:  "2023-02-01",
		EndDate:    "2023-02-10",
		Filename:   "financial_data_2023_02_01_2023_02_10.csv",
		Rows:       7,
		Columns:    2,
	}))

	events, err := r.RecentExports(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	assert.Empty(t, events[0].Outcomes)

	a := events[1]
	assert.Equal(t, "a", a.ID)
	assert.True(t, base.Equal(a.RecordedAt))
	assert.Equal(t, "financial_data_2023_01_01_2023_01_10.csv", a.Filename)
	assert.Equal(t, 5, a.Rows)
	require.Len(t, a.Outcomes, 2)
	assert.Equal(t, FetchOutcome{Name: "금", Code: "GC=F", Status: "success", Rows: 5}, a.Outcomes[0])
	assert.Equal(t, "timeout", a.Outcomes[1].Message)

	limited, err := r.RecentExports(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].ID)
}

func TestSQLiteRecorder_DuplicateIDRollsBack(t *testing.T) {
	r := newTestRecorder(t)
	evt := &ExportEvent{ID: "dup", StartDate: "2023-01-01", EndDate: "2023-01-10", Filename: "f.csv"}
	require.NoError(t, r.RecordExport(evt))

	evt.Outcomes = []FetchOutcome{{Name: "금", Code: "GC=F", Status: "success"}}
	require.Error(t, r.RecordExport(evt))

	events, err := r.RecentExports(0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Outcomes)
}

func TestSQLiteRecorder_RecordCleanup(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.RecordCleanup(&CleanupEvent{Source: "retention", Deleted: 3, Failed: 1}))

	var deleted, failed int
	require.NoError(t, r.db.QueryRow(`SELECT deleted, failed FROM cleanups WHERE source = 'retention'`).Scan(&deleted, &failed))
	assert.Equal(t, 3, deleted)
	assert.Equal(t, 1, failed)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	require.NoError(t, r.RecordExport(&ExportEvent{}))
	events, err := r.RecentExports(5)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
