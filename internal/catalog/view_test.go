package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewCatalog() Catalog {
	return Catalog{
		{Source: "Norte", Code: "A1", Name: "Martillo grande", Stock: 4, Category: "Herramientas", CurrentMarginPercent: 20, SuggestedPrice: 12},
		{Source: "Norte", Code: "B2", Name: "Clavos", Stock: 0, Category: "Ferretería", CurrentMarginPercent: 5, SuggestedPrice: 1},
		{Source: "Sur", Code: "A1", Name: "Martillo", Stock: -1, Category: "Herramientas", CurrentMarginPercent: 40, SuggestedPrice: 14},
		{Source: "Sur", Code: "C3", Name: "Pala", Stock: 0, Category: "Jardín", CurrentMarginPercent: 30, SuggestedPrice: 20},
		{Source: "Este", Code: "A1", Name: "Martillo", Stock: 7, Category: "Herramientas", CurrentMarginPercent: 30, SuggestedPrice: 16},
	}
}

func TestFilterText(t *testing.T) {
	c := viewCatalog()
	got := Filter(c, Filters{Query: "MARTI"})
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, "A1", r.Code)
	}
	assert.Len(t, Filter(c, Filters{Query: "c3"}), 1)
	assert.Len(t, Filter(c, Filters{}), len(c))
}

func TestFilterCategoryIsExact(t *testing.T) {
	c := viewCatalog()
	assert.Len(t, Filter(c, Filters{Category: "Herramientas"}), 3)
	assert.Empty(t, Filter(c, Filters{Category: "herramientas"}))
	assert.Len(t, Filter(c, Filters{Category: AllCategories}), len(c))
}

func TestFilterStock(t *testing.T) {
	c := viewCatalog()
	tests := []struct {
		filter StockFilter
		want   int
	}{
		{StockAll, 5},
		{StockExcludeZero, 3},
		{StockOnlyZero, 2},
		{StockOnlyNegative, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Len(t, Filter(c, Filters{Stock: tt.filter}), tt.want)
		})
	}
}

func TestFilterDoesNotMutateCatalog(t *testing.T) {
	c := viewCatalog()
	before := c.Clone()
	_ = DeriveView(c, Filters{Query: "a", Category: "Herramientas", Stock: StockExcludeZero})
	assert.Equal(t, before, c)
}

func TestGroupFirstSeen(t *testing.T) {
	entries := DeriveView(viewCatalog(), Filters{})
	require.Equal(t, []string{"A1", "B2", "C3"}, Codes(entries))

	a1 := entries[0]
	assert.Equal(t, "Martillo grande", a1.Name)
	assert.Equal(t, 20.0, a1.CurrentMarginPercent)
	assert.Equal(t, 12.0, a1.SuggestedPrice)
	assert.Len(t, a1.BySource, 3)
	assert.Equal(t, -1.0, a1.BySource["Sur"].Stock)
	assert.NotContains(t, entries[1].BySource, "Sur")
}

func TestGroupReconcilePolicies(t *testing.T) {
	c := viewCatalog()
	tests := []struct {
		policy    Reconcile
		margin    float64
		suggested float64
	}{
		{ReconcileFirst, 20, 12},
		{ReconcileMax, 40, 16},
		{ReconcileMin, 20, 12},
		{ReconcileAverage, 30, 14},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			entries := DeriveView(c, Filters{Reconcile: tt.policy})
			assert.InDelta(t, tt.margin, entries[0].CurrentMarginPercent, 1e-9)
			assert.InDelta(t, tt.suggested, entries[0].SuggestedPrice, 1e-9)
		})
	}
}

func TestGroupNeverDropsASource(t *testing.T) {
	c := viewCatalog()
	f := Filters{Stock: StockExcludeZero}
	records := Filter(c, f)
	entries := Group(records, ReconcileFirst)
	for _, r := range records {
		found := 0
		for _, e := range entries {
			if _, ok := e.BySource[r.Source]; ok && e.Code == r.Code {
				found++
			}
		}
		assert.Equal(t, 1, found, "record %s/%s", r.Source, r.Code)
	}
}

func TestDeriveViewIsIdempotent(t *testing.T) {
	c := viewCatalog()
	f := Filters{Query: "m", Stock: StockExcludeZero}
	assert.Equal(t, DeriveView(c, f), DeriveView(c, f))
}

func TestScenarioAView(t *testing.T) {
	c, _ := scenarioCatalog()
	entries := DeriveView(c, Filters{})
	require.Len(t, entries, 1)
	assert.Equal(t, "X1", entries[0].Code)
	assert.Len(t, entries[0].BySource, 2)
	assert.InDelta(t, 50.0, entries[0].CurrentMarginPercent, 1e-9)
}

func TestScenarioBOnlyNegative(t *testing.T) {
	c, _ := scenarioCatalog()
	records := Filter(c, Filters{Stock: StockOnlyNegative})
	require.Len(t, records, 1)
	assert.Equal(t, "StoreB", records[0].Source)

	entries := Group(records, ReconcileFirst)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]SourceFigures{"StoreB": {Stock: -2, NetCost: 90, SalePrice: 100}}, entries[0].BySource)
}

func TestParseFilters(t *testing.T) {
	f, err := ParseStockFilter("")
	require.NoError(t, err)
	assert.Equal(t, StockAll, f)
	_, err = ParseStockFilter("positive")
	assert.ErrorIs(t, err, ErrInvalidFilter)

	p, err := ParseReconcile(" MAX ")
	require.NoError(t, err)
	assert.Equal(t, ReconcileMax, p)
	_, err = ParseReconcile("median")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
