package catalog

import (
	"github.com/shopspring/decimal"
)

// MissingSourceCell fills the columns of a source that has no row for a product.
const MissingSourceCell = "-"

// Grid is the tabular form of the comparison view handed to a sheet writer.
type Grid struct {
	Header []string
	Rows   [][]any
}

// Export lays out entries with three columns (stock, net cost, sale price)
// per source of the summary, in summary order.
func Export(entries []ComparisonEntry, summary Summary) (Grid, error) {
	if len(entries) == 0 {
		return Grid{}, ErrEmptyExport
	}
	header := make([]string, 0, 5+3*len(summary.Sources))
	header = append(header, "Código", "Nombre", "Categoría")
	for _, src := range summary.Sources {
		header = append(header, src+" Stock", src+" Costo", src+" Venta")
	}
	header = append(header, "Porcentaje Ganancia Actual", "Precio Sugerido Calculado")

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		row := make([]any, 0, len(header))
		row = append(row, e.Code, e.Name, e.Category)
		for _, src := range summary.Sources {
			fig, ok := e.BySource[src]
			if !ok {
				row = append(row, MissingSourceCell, MissingSourceCell, MissingSourceCell)
				continue
			}
			row = append(row, fig.Stock, fig.NetCost, fig.SalePrice)
		}
		row = append(row, FormatPercent(e.CurrentMarginPercent), FormatAmount(e.SuggestedPrice))
		rows = append(rows, row)
	}
	return Grid{Header: header, Rows: rows}, nil
}

// FormatAmount renders v with two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func FormatPercent(v float64) string {
	return FormatAmount(v) + "%"
}
