package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinDataCollector/internal/model"
)

func TestResolve(t *testing.T) {
	r := Default()

	tests := []struct {
		category model.Category
		name     string
		code     string
		found    bool
	}{
		{model.Commodity, "금", "GC=F", true},
		{model.Equity, "S&P500", "^GSPC", true},
		{model.Equity, "삼성전자", "005930.KS", true},
		{model.ExchangeRate, "KRW/USD", "USDKRW=X", true},
		{model.ExchangeRate, "달러 인덱스", "DX-Y.NYB", true},
		// right name, wrong category
		{model.Equity, "금", "", false},
		{model.Commodity, "KRW/USD", "", false},
		{model.Commodity, "없는 지표", "", false},
	}
	for _, tt := range tests {
		inst, ok := r.Resolve(tt.category, tt.name)
		assert.Equal(t, tt.found, ok, "%s/%s", tt.category, tt.name)
		if tt.found {
			assert.Equal(t, tt.code, inst.Code)
			assert.Equal(t, tt.category, inst.Category)
			assert.Equal(t, tt.name, inst.Name)
		}
	}
}

func TestNamesKeepRegistryOrder(t *testing.T) {
	r := Default()

	names := r.Names(model.Commodity)
	require.NotEmpty(t, names)
	assert.Equal(t, "금", names[0])
	assert.Equal(t, "설탕", names[len(names)-1])

	// callers must not be able to mutate the registry through the slice
	names[0] = "changed"
	assert.Equal(t, "금", r.Names(model.Commodity)[0])
}

func TestEveryNameResolves(t *testing.T) {
	r := Default()
	for _, c := range model.Categories {
		for _, n := range r.Names(c) {
			inst, ok := r.Resolve(c, n)
			require.True(t, ok, n)
			assert.NotEmpty(t, inst.Code, n)
		}
	}
}
