// Package report renders pipeline results as terminal text.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"FinDataCollector/internal/model"
	"FinDataCollector/internal/service"
)

// FormatRequest prints the period and selection of a validated request.
func FormatRequest(req *model.SelectionRequest) string {
	var b strings.Builder
	names := make([]string, len(req.Instruments))
	for i, inst := range req.Instruments {
		names[i] = inst.Name
	}
	labels := make([]string, len(req.Fields))
	for i, f := range req.Fields {
		labels[i] = f.Label()
	}
	b.WriteString(fmt.Sprintf("📅 기간: %s ~ %s\n", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("📈 선택한 지표: %s\n", strings.Join(names, ", ")))
	b.WriteString(fmt.Sprintf("🧾 선택한 항목: %s\n", strings.Join(labels, ", ")))
	return b.String()
}

// FormatOutcome is one line per instrument result.
func FormatOutcome(r model.SeriesResult) string {
	switch r.Outcome {
	case model.OutcomeSuccess:
		return fmt.Sprintf("✅ %s (%s) 데이터 %d건 수집 완료", r.Instrument.Name, r.Instrument.Code, r.Rows)
	case model.OutcomeEmpty:
		return fmt.Sprintf("⚠️ %s 데이터 없음 (심볼: %s)", r.Instrument.Name, r.Instrument.Code)
	default:
		return fmt.Sprintf("❌ %s 수집 실패: %s", r.Instrument.Name, r.Message)
	}
}

// FormatRun prints the full report of a successful run.
func FormatRun(rep *service.Report) string {
	var b strings.Builder
	b.WriteString(FormatRequest(rep.Request))
	b.WriteString("\n")
	for _, r := range rep.Results {
		b.WriteString(FormatOutcome(r))
		b.WriteString("\n")
	}

	b.WriteString("\n📊 데이터 미리보기:\n")
	b.WriteString(FormatPreview(rep.Table.ColumnNames(), rep.Preview))

	b.WriteString(fmt.Sprintf("\n💾 CSV 저장 완료: %s\n", rep.Artifact.Filename))
	b.WriteString(fmt.Sprintf("✅ 파일 저장 위치: %s\n", rep.Artifact.Filepath))
	b.WriteString(fmt.Sprintf("   %d행 × %d열\n", rep.Artifact.Rows, rep.Artifact.Columns))
	return b.String()
}

// FormatFailures prints per-instrument failures of an aborted run.
func FormatFailures(failures []model.SeriesResult) string {
	var b strings.Builder
	for _, r := range failures {
		b.WriteString(FormatOutcome(r))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatPreview lays the preview out as a tab separated table. Nulls print as NaN.
func FormatPreview(columns []string, p *model.Preview) string {
	var b strings.Builder
	b.WriteString("Date\t" + strings.Join(columns, "\t") + "\n")
	for i, d := range p.Dates {
		b.WriteString(d)
		for _, c := range columns {
			b.WriteString("\t")
			v := p.Rows[i][c]
			if v.Valid {
				b.WriteString(strconv.FormatFloat(v.Float64, 'f', 2, 64))
			} else {
				b.WriteString("NaN")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatFiles lists exported files.
func FormatFiles(files []model.FileInfo) string {
	if len(files) == 0 {
		return "📂 저장된 파일이 없습니다.\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📂 저장된 파일: %d개\n\n", len(files)))
	for _, f := range files {
		b.WriteString(fmt.Sprintf("  %s  %8d bytes  %s\n", f.Filename, f.Size, f.Modified.Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

// FormatDelete summarises a delete run.
func FormatDelete(rep *model.DeleteReport) string {
	var b strings.Builder
	for _, e := range rep.Errors {
		b.WriteString(fmt.Sprintf("❌ 삭제 실패: %s - %s\n", e.Filename, e.Err))
	}
	if rep.Deleted == 0 && len(rep.Errors) == 0 {
		b.WriteString("❌ 삭제할 파일이 없습니다.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("\n✨ 총 %d개 파일이 삭제되었습니다.\n", rep.Deleted))
	return b.String()
}

// FormatIndicators lists registry names per category.
func FormatIndicators(ind map[string][]string) string {
	var b strings.Builder
	for _, c := range model.Categories {
		b.WriteString(fmt.Sprintf("[%s]\n  %s\n", c.Key(), strings.Join(ind[c.Key()], ", ")))
	}
	return b.String()
}
