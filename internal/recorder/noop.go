package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordExport(_ *ExportEvent) error   { return nil }
func (n *NoopRecorder) RecordCleanup(_ *CleanupEvent) error { return nil }
func (n *NoopRecorder) RecentExports(_ int) ([]ExportEvent, error) {
	return []ExportEvent{}, nil
}
func (n *NoopRecorder) Close() error { return nil }
