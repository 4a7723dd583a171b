package catalog

import (
	"fmt"
	"math"
	"strings"
)

type StockFilter string

const (
	StockAll          StockFilter = "all"
	StockExcludeZero  StockFilter = "exclude_zero"
	StockOnlyZero     StockFilter = "only_zero"
	StockOnlyNegative StockFilter = "only_negative"
)

// ParseStockFilter accepts the stock filter names; an empty string means all.
func ParseStockFilter(s string) (StockFilter, error) {
	switch f := StockFilter(strings.TrimSpace(s)); f {
	case "":
		return StockAll, nil
	case StockAll, StockExcludeZero, StockOnlyZero, StockOnlyNegative:
		return f, nil
	default:
		return "", fmt.Errorf("%w: stock %q", ErrInvalidFilter, s)
	}
}

func (f StockFilter) keep(stock float64) bool {
	switch f {
	case StockExcludeZero:
		return stock != 0
	case StockOnlyZero:
		return stock == 0
	case StockOnlyNegative:
		return stock < 0
	default:
		return true
	}
}

// Reconcile decides which margin and suggested price a comparison entry shows
// when its code appears in several sources.
type Reconcile string

const (
	ReconcileFirst   Reconcile = "first"
	ReconcileMax     Reconcile = "max"
	ReconcileMin     Reconcile = "min"
	ReconcileAverage Reconcile = "average"
)

func ParseReconcile(s string) (Reconcile, error) {
	switch p := Reconcile(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ReconcileFirst, nil
	case ReconcileFirst, ReconcileMax, ReconcileMin, ReconcileAverage:
		return p, nil
	default:
		return "", fmt.Errorf("%w: reconcile policy %q", ErrInvalidFilter, s)
	}
}

// Filters selects the part of the catalog shown in the comparison view.
// The zero value keeps everything.
type Filters struct {
	Query     string
	Category  string
	Stock     StockFilter
	Reconcile Reconcile
}

// Filter applies the text, category and stock filters, in that order.
// The catalog is never modified.
func Filter(c Catalog, f Filters) []ProductRecord {
	query := strings.ToLower(f.Query)
	out := make([]ProductRecord, 0, len(c))
	for _, r := range c {
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Code), query) &&
			!strings.Contains(strings.ToLower(r.Name), query) {
			continue
		}
		if f.Category != "" && f.Category != AllCategories && r.Category != f.Category {
			continue
		}
		if !f.Stock.keep(r.Stock) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Group merges records by code in first-seen order. Each record fills the
// figures of its source on the entry of its code.
func Group(records []ProductRecord, policy Reconcile) []ComparisonEntry {
	var entries []ComparisonEntry
	index := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.Code]
		if !ok {
			i = len(entries)
			index[r.Code] = i
			entries = append(entries, ComparisonEntry{
				Code:                 r.Code,
				Name:                 r.Name,
				Category:             r.Category,
				BySource:             make(map[string]SourceFigures),
				CurrentMarginPercent: r.CurrentMarginPercent,
				SuggestedPrice:       r.SuggestedPrice,
			})
		} else {
			reconcile(&entries[i], r, counts[r.Code], policy)
		}
		counts[r.Code]++
		entries[i].BySource[r.Source] = SourceFigures{
			Stock:     r.Stock,
			UnitCost:  r.UnitCost,
			NetCost:   r.NetCost,
			SalePrice: r.SalePrice,
		}
	}
	return entries
}

// reconcile folds r into e, which already holds n records.
func reconcile(e *ComparisonEntry, r ProductRecord, n int, policy Reconcile) {
	switch policy {
	case ReconcileMax:
		e.CurrentMarginPercent = math.Max(e.CurrentMarginPercent, r.CurrentMarginPercent)
		e.SuggestedPrice = math.Max(e.SuggestedPrice, r.SuggestedPrice)
	case ReconcileMin:
		e.CurrentMarginPercent = math.Min(e.CurrentMarginPercent, r.CurrentMarginPercent)
		e.SuggestedPrice = math.Min(e.SuggestedPrice, r.SuggestedPrice)
	case ReconcileAverage:
		w := float64(n)
		e.CurrentMarginPercent = (e.CurrentMarginPercent*w + r.CurrentMarginPercent) / (w + 1)
		e.SuggestedPrice = (e.SuggestedPrice*w + r.SuggestedPrice) / (w + 1)
	}
}

// DeriveView builds the comparison entries for f. It is a pure function of
// its inputs and must be re-run whenever the catalog or the filters change.
func DeriveView(c Catalog, f Filters) []ComparisonEntry {
	return Group(Filter(c, f), f.Reconcile)
}
