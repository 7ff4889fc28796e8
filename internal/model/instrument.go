package model

import (
	"strings"
	"time"
)

// Category partitions the instrument registry.
type Category int

const (
	Commodity Category = iota
	Equity
	ExchangeRate
)

// Categories lists every category in presentation order.
var Categories = []Category{Commodity, Equity, ExchangeRate}

// Key is the JSON key used by the HTTP surface for the category.
func (c Category) Key() string {
	switch c {
	case Commodity:
		return "commodities"
	case Equity:
		return "stocks"
	case ExchangeRate:
		return "exchange"
	default:
		return ""
	}
}

func (c Category) String() string {
	switch c {
	case Commodity:
		return "Commodity"
	case Equity:
		return "Equity"
	case ExchangeRate:
		return "ExchangeRate"
	default:
		return "Unknown"
	}
}

// Instrument is a quotable asset known to the registry.
type Instrument struct {
	Name     string
	Code     string
	Category Category
}

// Field is a requested data dimension.
type Field int

const (
	FieldPrice Field = iota
	FieldVolume
)

// Label is the suffix used in column names.
func (f Field) Label() string {
	if f == FieldVolume {
		return "Volume"
	}
	return "Price"
}

// ParseField maps a user supplied feature name to a Field.
// Korean labels are the ones shown by the UI; English aliases are accepted too.
func ParseField(s string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "가격", "price", "close":
		return FieldPrice, true
	case "거래량", "volume":
		return FieldVolume, true
	default:
		return 0, false
	}
}

// DefaultFeatures is used when a request omits the feature list entirely.
var DefaultFeatures = []string{"가격"}

// RawSelection is the unvalidated input of a download request.
type RawSelection struct {
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Commodities []string `json:"commodities"`
	Stocks      []string `json:"stocks"`
	Exchange    []string `json:"exchange"`
	Features    []string `json:"features"`
}

// Names returns the names selected for a category.
func (r *RawSelection) Names(c Category) []string {
	switch c {
	case Commodity:
		return r.Commodities
	case Equity:
		return r.Stocks
	case ExchangeRate:
		return r.Exchange
	default:
		return nil
	}
}

// SelectionRequest is a validated download request.
type SelectionRequest struct {
	StartDate   time.Time
	EndDate     time.Time
	Instruments []Instrument
	Fields      []Field
	Dropped     []*RequestError // UnknownInstrument, one per name that did not resolve
}
