package validator

import (
	"time"

	"github.com/sirupsen/logrus"

	"FinDataCollector/internal/model"
	"FinDataCollector/internal/registry"
)

const dateLayout = "2006-01-02"

// User facing messages, shown verbatim by both front-ends.
const (
	msgMalformedDate  = "날짜 형식이 올바르지 않습니다. (YYYY-MM-DD 형식 사용)"
	msgInvertedRange  = "시작일이 종료일보다 늦습니다. 날짜를 확인하세요."
	msgFutureEndDate  = "종료일은 오늘 이후일 수 없습니다."
	msgEmptySelection = "최소 1개 이상 지표를 선택하세요."
	msgEmptyFieldSet  = "최소 1개 이상 항목(가격/거래량)을 선택하세요."
	msgAllUnknown     = "선택한 지표가 유효하지 않습니다. 미리 정의된 지표만 사용할 수 있습니다."
)

// Validator turns a RawSelection into a SelectionRequest. It has no side effects.
type Validator struct {
	Registry *registry.Registry
	Logger   *logrus.Logger
	// Now returns the current time; the server's local date is derived from it.
	Now func() time.Time
}

// New creates a Validator using the wall clock.
func New(reg *registry.Registry, logger *logrus.Logger) *Validator {
	return &Validator{Registry: reg, Logger: logger, Now: time.Now}
}

// Validate checks dates, then selection, then fields, then resolves names.
func (v *Validator) Validate(raw *model.RawSelection) (*model.SelectionRequest, error) {
	start, errStart := time.Parse(dateLayout, raw.StartDate)
	end, errEnd := time.Parse(dateLayout, raw.EndDate)
	if errStart != nil || errEnd != nil {
		return nil, model.NewRequestError(model.KindMalformedDate, msgMalformedDate)
	}
	if start.After(end) {
		return nil, model.NewRequestError(model.KindInvertedRange, msgInvertedRange)
	}
	if end.After(v.today()) {
		return nil, model.NewRequestError(model.KindFutureEndDate, msgFutureEndDate)
	}

	selected := 0
	for _, c := range model.Categories {
		selected += len(raw.Names(c))
	}
	if selected == 0 {
		return nil, model.NewRequestError(model.KindEmptySelection, msgEmptySelection)
	}

	features := raw.Features
	if features == nil {
		features = model.DefaultFeatures
	}
	fields := parseFields(features)
	if len(fields) == 0 {
		return nil, model.NewRequestError(model.KindEmptyFieldSet, msgEmptyFieldSet)
	}

	req := &model.SelectionRequest{StartDate: start, EndDate: end, Fields: fields}
	seen := make(map[model.Instrument]bool)
	for _, c := range model.Categories {
		for _, name := range raw.Names(c) {
			inst, ok := v.Registry.Resolve(c, name)
			if !ok {
				if v.Logger != nil {
					v.Logger.WithFields(logrus.Fields{"category": c.String(), "name": name}).
						Warn("dropping unknown instrument")
				}
				req.Dropped = append(req.Dropped, model.UnknownInstrument(c.String(), name))
				continue
			}
			if seen[inst] {
				continue
			}
			seen[inst] = true
			req.Instruments = append(req.Instruments, inst)
		}
	}
	if len(req.Instruments) == 0 {
		return nil, model.NewRequestError(model.KindEmptySelection, msgAllUnknown)
	}
	return req, nil
}

// today is the local calendar date expressed as midnight UTC, comparable with parsed dates.
func (v *Validator) today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseFields keeps request order and drops duplicates and unknown labels.
func parseFields(features []string) []model.Field {
	var fields []model.Field
	seen := make(map[model.Field]bool)
	for _, f := range features {
		field, ok := model.ParseField(f)
		if !ok || seen[field] {
			continue
		}
		seen[field] = true
		fields = append(fields, field)
	}
	return fields
}
