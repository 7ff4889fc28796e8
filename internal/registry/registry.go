package registry

import "FinDataCollector/internal/model"

type entry struct {
	name string
	code string
}

type key struct {
	category model.Category
	name     string
}

var commodities = []entry{
	// precious metals
	{"금", "GC=F"},
	{"은", "SI=F"},
	{"백금", "PL=F"},
	// industrial metals
	{"구리", "HG=F"},
	{"알루미늄", "ALI=F"},
	// energy
	{"원유(미국)", "CL=F"},
	{"원유(브렌트)", "BZ=F"},
	{"천연가스", "NG=F"},
	// agriculture
	{"옥수수", "C=F"},
	{"대두", "S=F"},
	{"밀", "W=F"},
	{"커피", "KC=F"},
	{"설탕", "SB=F"},
}

var equities = []entry{
	// indices
	{"S&P500", "^GSPC"},
	{"NASDAQ", "^IXIC"},
	{"KOSPI", "^KS11"},
	{"VIX", "^VIX"},
	// overseas
	{"엔비디아", "NVDA"},
	{"Sandisk", "SNDK"},
	{"TSMC", "TSM"},
	{"애플", "AAPL"},
	{"알파벳", "GOOGL"},
	// domestic
	{"삼성전자", "005930.KS"},
	{"하이닉스", "000660.KS"},
	{"카카오", "035720.KS"},
	{"NAVER", "035420.KS"},
	{"하나투어", "039130.KS"},
	{"현대차", "005380.KS"},
	{"기아차", "000270.KS"},
}

var exchangeRates = []entry{
	{"KRW/USD", "USDKRW=X"},
	{"KRW/JPY", "JPYKRW=X"},
	{"KRW/GBP", "GBPKRW=X"},
	{"KRW/EUR", "EURKRW=X"},
	// US treasury yields
	{"미국 2년물", "^IRX"},
	{"미국 5년물", "^FVX"},
	{"미국 10년물", "^TNX"},
	{"미국 30년물", "^TYX"},
	{"달러 인덱스", "DX-Y.NYB"},
}

// Registry maps (category, display name) to provider codes. It is immutable after construction.
type Registry struct {
	byKey map[key]model.Instrument
	names map[model.Category][]string
}

// Default returns the built-in registry.
func Default() *Registry {
	return newRegistry(map[model.Category][]entry{
		model.Commodity:    commodities,
		model.Equity:       equities,
		model.ExchangeRate: exchangeRates,
	})
}

// newRegistry builds a registry; the first occurrence of a name within a category wins.
func newRegistry(entries map[model.Category][]entry) *Registry {
	r := &Registry{
		byKey: make(map[key]model.Instrument),
		names: make(map[model.Category][]string),
	}
	for _, c := range model.Categories {
		for _, e := range entries[c] {
			k := key{category: c, name: e.name}
			if _, dup := r.byKey[k]; dup {
				continue
			}
			r.byKey[k] = model.Instrument{Name: e.name, Code: e.code, Category: c}
			r.names[c] = append(r.names[c], e.name)
		}
	}
	return r
}

// Resolve looks up an instrument by category and display name.
func (r *Registry) Resolve(category model.Category, name string) (model.Instrument, bool) {
	inst, ok := r.byKey[key{category: category, name: name}]
	return inst, ok
}

// Names returns display names of a category in registry order.
func (r *Registry) Names(category model.Category) []string {
	out := make([]string, len(r.names[category]))
	copy(out, r.names[category])
	return out
}
