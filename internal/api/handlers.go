package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"

	"FinDataCollector/internal/model"
	"FinDataCollector/internal/recorder"
	"FinDataCollector/internal/service"
)

const (
	msgInternalPrefix = "데이터 처리 중 오류 발생: "
	msgFileNotFound   = "파일을 찾을 수 없습니다."
	msgBadBody        = "요청 본문을 해석할 수 없습니다."
	modifiedLayout    = "2006-01-02 15:04:05"
)

// Pipeline is the part of the service the handlers use.
type Pipeline interface {
	Run(ctx context.Context, raw *model.RawSelection) (*service.Report, error)
	Indicators() map[string][]string
	ListFiles() ([]model.FileInfo, error)
	FilePath(name string) (string, bool)
	DeleteFiles() (*model.DeleteReport, error)
	History(limit int) ([]recorder.ExportEvent, error)
}

// Handler serves the /api routes.
type Handler struct {
	svc    Pipeline
	logger *logrus.Logger
}

func NewHandler(svc Pipeline, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Handler{svc: svc, logger: logger}
}

type resultItem struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Count  int    `json:"count"`
	Status string `json:"status"`
}

type errorItem struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type downloadResponse struct {
	Success      bool                    `json:"success"`
	Filename     string                  `json:"filename"`
	Filepath     string                  `json:"filepath"`
	TotalRows    int                     `json:"total_rows"`
	TotalColumns int                     `json:"total_columns"`
	PreviewDates []string                `json:"preview_dates"`
	Preview      []map[string]null.Float `json:"preview"`
	ChartDates   []string                `json:"chart_dates"`
	ChartColumns []string                `json:"chart_columns"`
	ChartData    map[string][]float64    `json:"chart_data"`
	Results      []resultItem            `json:"results"`
	Errors       []errorItem             `json:"errors"`
}

type fileItem struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

type deleteErrorItem struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Stock Data API is running"})
}

func (h *Handler) Indicators(c *gin.Context) {
	ind := h.svc.Indicators()
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"commodities": ind["commodities"],
		"stocks":      ind["stocks"],
		"exchange":    ind["exchange"],
	})
}

func (h *Handler) Download(c *gin.Context) {
	var raw model.RawSelection
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgBadBody})
		return
	}

	rep, err := h.svc.Run(c.Request.Context(), &raw)
	if err != nil {
		h.writeRunError(c, err)
		return
	}

	resp := downloadResponse{
		Success:      true,
		Filename:     rep.Artifact.Filename,
		Filepath:     rep.Artifact.Filepath,
		TotalRows:    rep.Artifact.Rows,
		TotalColumns: rep.Artifact.Columns,
		PreviewDates: rep.Preview.Dates,
		Preview:      rep.Preview.Rows,
		ChartDates:   rep.Chart.Dates,
		ChartColumns: rep.Chart.Columns,
		ChartData:    rep.Chart.Series,
		Results:      []resultItem{},
		Errors:       errorItems(rep.Failed()),
	}
	for _, r := range rep.Succeeded() {
		resp.Results = append(resp.Results, resultItem{
			Name:   r.Instrument.Name,
			Code:   r.Instrument.Code,
			Count:  r.Rows,
			Status: r.Outcome.String(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writeRunError(c *gin.Context, err error) {
	var reqErr *model.RequestError
	if errors.As(err, &reqErr) && reqErr.Client() {
		body := gin.H{"success": false, "error": reqErr.Message}
		if reqErr.Kind == model.KindNoDataCollected {
			body["errors"] = errorItems(reqErr.Failures)
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}
	h.logger.WithError(err).Error("download failed")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msgInternalPrefix + err.Error()})
}

func errorItems(failed []model.SeriesResult) []errorItem {
	items := make([]errorItem, 0, len(failed))
	for _, r := range failed {
		items = append(items, errorItem{Name: r.Instrument.Name, Code: r.Instrument.Code, Message: r.Reason()})
	}
	return items
}

func (h *Handler) DownloadFile(c *gin.Context) {
	name := c.Param("filename")
	path, ok := h.svc.FilePath(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgFileNotFound})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.FileAttachment(path, name)
}

func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.svc.ListFiles()
	if err != nil {
		h.logger.WithError(err).Error("list files")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "파일 목록 조회 중 오류: " + err.Error()})
		return
	}
	items := make([]fileItem, 0, len(files))
	for _, f := range files {
		items = append(items, fileItem{
			Filename: f.Filename,
			Size:     f.Size,
			Modified: f.Modified.Format(modifiedLayout),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": items})
}

func (h *Handler) DeleteFiles(c *gin.Context) {
	rep, err := h.svc.DeleteFiles()
	if err != nil {
		h.logger.WithError(err).Error("delete files")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "파일 삭제 중 오류: " + err.Error()})
		return
	}
	errs := make([]deleteErrorItem, 0, len(rep.Errors))
	for _, e := range rep.Errors {
		errs = append(errs, deleteErrorItem{Filename: e.Filename, Error: e.Err})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": rep.Deleted, "errors": errs})
}

func (h *Handler) History(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	events, err := h.svc.History(limit)
	if err != nil {
		h.logger.WithError(err).Error("history")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exports": events})
}
