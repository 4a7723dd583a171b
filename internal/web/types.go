// types.go
package web

import (
	"html/template"

	"pricecompare/internal/catalog"
)

// filterForm carries the view filters through pages, forms and redirects.
type filterForm struct {
	Query     string
	Category  string
	Stock     string
	Reconcile string
}

type UploadData struct {
	Summary  *catalog.Summary
	Error    string
	MaxBytes int64
}

type DisplayData struct {
	Summary       catalog.Summary
	Entries       []catalog.ComparisonEntry
	Filters       filterForm
	ExportXLSX    template.URL
	ExportCSV     template.URL
	Selected      map[string]bool
	Generation    string
	DefaultMarkup float64
	StockFilters  []catalog.StockFilter
	Policies      []catalog.Reconcile
	Fields        []catalog.Field
	Operations    []string
	Flash         string
}

type CalculationResult struct {
	Col   string  `json:"col"`
	Value float64 `json:"value"`
}

type ResultPage struct {
	Operation string
	Results   []CalculationResult
	Sources   []string
	Timestamp string
	BackLink  string
}

// APIResponse wraps successful API payloads; failures are ProblemDetail.
type APIResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}
