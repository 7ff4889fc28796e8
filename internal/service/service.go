// Package service runs the collection pipeline shared by the HTTP and terminal front-ends.
package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"FinDataCollector/internal/collector"
	"FinDataCollector/internal/export"
	"FinDataCollector/internal/housekeeping"
	"FinDataCollector/internal/merger"
	"FinDataCollector/internal/model"
	"FinDataCollector/internal/recorder"
	"FinDataCollector/internal/registry"
	"FinDataCollector/internal/validator"
)

// Report is the outcome of one successful collection run.
type Report struct {
	ID       string
	Request  *model.SelectionRequest
	Results  []model.SeriesResult
	Table    *model.MergedTable
	Artifact *model.ExportArtifact
	Chart    *model.ChartSample
	Preview  *model.Preview
}

// Succeeded returns the results that contributed columns, in request order.
func (r *Report) Succeeded() []model.SeriesResult {
	var out []model.SeriesResult
	for _, res := range r.Results {
		if !res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the empty and errored results, in request order.
func (r *Report) Failed() []model.SeriesResult {
	var out []model.SeriesResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Service wires validator, collector, merger, exporter and housekeeping together.
type Service struct {
	Registry  *registry.Registry
	Validator *validator.Validator
	Collector *collector.Collector
	Exporter  *export.Exporter
	Store     *housekeeping.Store
	Recorder  recorder.Recorder
	Logger    *logrus.Logger

	MaxChartPoints int
	PreviewRows    int
	Now            func() time.Time
}

// Options configures New.
type Options struct {
	DataDir        string
	MaxChartPoints int
	PreviewRows    int
}

// New builds a Service over the default registry.
func New(fetcher collector.Fetcher, concurrency int, rec recorder.Recorder, logger *logrus.Logger, opts Options) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	reg := registry.Default()
	return &Service{
		Registry:       reg,
		Validator:      validator.New(reg, logger),
		Collector:      collector.NewCollector(fetcher, logger, concurrency),
		Exporter:       export.NewExporter(opts.DataDir),
		Store:          housekeeping.NewStore(opts.DataDir),
		Recorder:       rec,
		Logger:         logger,
		MaxChartPoints: opts.MaxChartPoints,
		PreviewRows:    opts.PreviewRows,
		Now:            time.Now,
	}
}

// Run validates raw, fetches every instrument, merges the successes, writes the CSV
// and derives the chart sample and preview.
//
// Validation failures return before any provider call. A run where every instrument
// failed returns a NoDataCollected error; partial failures are reported on the Report.
func (s *Service) Run(ctx context.Context, raw *model.RawSelection) (*Report, error) {
	id := uuid.NewString()
	log := s.Logger.WithField("request_id", id)

	req, err := s.Validator.Validate(raw)
	if err != nil {
		log.WithError(err).Info("request rejected")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"start":       req.StartDate.Format("2006-01-02"),
		"end":         req.EndDate.Format("2006-01-02"),
		"instruments": len(req.Instruments),
		"fields":      len(req.Fields),
	}).Info("collecting")

	results := s.Collector.Collect(ctx, req)

	table, err := merger.Merge(results, req.Fields)
	if err != nil {
		log.WithError(err).Error("no data collected")
		return nil, err
	}

	art, err := s.Exporter.Export(table, req.StartDate, req.EndDate)
	if err != nil {
		log.WithError(err).Error("export failed")
		return nil, err
	}

	rep := &Report{
		ID:       id,
		Request:  req,
		Results:  results,
		Table:    table,
		Artifact: art,
		Chart:    export.Sample(table, s.MaxChartPoints),
		Preview:  export.Preview(table, s.PreviewRows),
	}
	log.WithFields(logrus.Fields{
		"file":    art.Filename,
		"rows":    art.Rows,
		"columns": art.Columns,
		"failed":  len(rep.Failed()),
	}).Info("export written")

	if err := s.Recorder.RecordExport(exportEvent(rep, s.now())); err != nil {
		log.WithError(err).Error("record export")
	}
	return rep, nil
}

func exportEvent(rep *Report, at time.Time) *recorder.ExportEvent {
	evt := &recorder.ExportEvent{
		ID:         rep.ID,
		RecordedAt: at,
		StartDate:  rep.Request.StartDate.Format("2006-01-02"),
		EndDate:    rep.Request.EndDate.Format("2006-01-02"),
		Filename:   rep.Artifact.Filename,
		Rows:       rep.Artifact.Rows,
		Columns:    rep.Artifact.Columns,
	}
	for _, r := range rep.Results {
		evt.Outcomes = append(evt.Outcomes, recorder.FetchOutcome{
			Name:    r.Instrument.Name,
			Code:    r.Instrument.Code,
			Status:  r.Outcome.String(),
			Rows:    r.Rows,
			Message: r.Reason(),
		})
	}
	return evt
}

// Indicators returns the registry names per category key, in registry order.
func (s *Service) Indicators() map[string][]string {
	out := make(map[string][]string, len(model.Categories))
	for _, c := range model.Categories {
		out[c.Key()] = s.Registry.Names(c)
	}
	return out
}

// ListFiles returns the exported files.
func (s *Service) ListFiles() ([]model.FileInfo, error) {
	return s.Store.List()
}

// FilePath resolves an exported file name to its path.
func (s *Service) FilePath(name string) (string, bool) {
	return s.Store.Path(name)
}

// DeleteFiles removes every exported file, best effort.
func (s *Service) DeleteFiles() (*model.DeleteReport, error) {
	rep, err := s.Store.DeleteAll()
	if err != nil {
		return nil, err
	}
	s.recordCleanup("manual", rep)
	return rep, nil
}

// CleanupOlderThan removes exported files older than age.
func (s *Service) CleanupOlderThan(age time.Duration) (*model.DeleteReport, error) {
	rep, err := s.Store.DeleteOlderThan(age, s.now())
	if err != nil {
		return nil, err
	}
	s.recordCleanup("retention", rep)
	return rep, nil
}

// History returns the most recent exports, newest first.
func (s *Service) History(limit int) ([]recorder.ExportEvent, error) {
	return s.Recorder.RecentExports(limit)
}

func (s *Service) recordCleanup(source string, rep *model.DeleteReport) {
	s.Logger.WithFields(logrus.Fields{
		"source":  source,
		"deleted": rep.Deleted,
		"failed":  len(rep.Errors),
	}).Info("files deleted")
	for _, fe := range rep.Errors {
		s.Logger.WithField("file", fe.Filename).Warn("delete failed: " + fe.Err)
	}
	if err := s.Recorder.RecordCleanup(&recorder.CleanupEvent{
		RecordedAt: s.now(),
		Source:     source,
		Deleted:    rep.Deleted,
		Failed:     len(rep.Errors),
	}); err != nil {
		s.Logger.WithError(err).Error("record cleanup")
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
