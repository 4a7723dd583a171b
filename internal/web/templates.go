// templates.go
package web

import (
	"embed"
	"fmt"
	"html/template"

	"pricecompare/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"formatSize": func(size int64) string {
		const unit = 1024
		if size < unit {
			return fmt.Sprintf("%d B", size)
		}
		div, exp := int64(unit), 0
		for n := size / unit; n >= unit; n /= unit {
			div *= unit
			exp++
		}
		return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
	},
	"formatNumber":  catalog.FormatAmount,
	"formatPercent": catalog.FormatPercent,
	"marginBand":    catalog.MarginBand,
	"stockBand":     catalog.StockBand,
	"figures": func(e catalog.ComparisonEntry, source string) *catalog.SourceFigures {
		fig, ok := e.BySource[source]
		if !ok {
			return nil
		}
		return &fig
	},
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/"+name))
}

var (
	uploadTemplate  = parsePage("upload.html")
	displayTemplate = parsePage("display.html")
	resultTemplate  = parsePage("results.html")
)

// safeURL marks a link built from url.Values as trusted.
func safeURL(s string) template.URL { return template.URL(s) }
