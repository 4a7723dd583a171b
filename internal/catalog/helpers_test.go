package catalog

var priceListHeader = []string{"Código", "Nombre", "Stock", "Costo U.C.", "Costo neto", "Precio de Venta", "Precio Sugerido", "Porcentaje de Venta", "Familia"}

// priceList builds a sheet laid out like the store exports: two title rows,
// the header and the data rows.
func priceList(header []string, rows ...[]string) RawSheet {
	sheet := RawSheet{Rows: [][]string{{"Listado de precios"}, {}, header}}
	sheet.Rows = append(sheet.Rows, rows...)
	return sheet
}

func scenarioCatalog() (Catalog, Summary) {
	a := []ProductRecord{{Source: "StoreA", Code: "X1", Name: "Widget", Stock: 5, NetCost: 100, SalePrice: 150, Category: "Tools", CurrentMarginPercent: 50, SuggestedPrice: 150}}
	b := []ProductRecord{{Source: "StoreB", Code: "X1", Name: "Widget", Stock: -2, NetCost: 90, SalePrice: 100, Category: "Tools", CurrentMarginPercent: MarginPercent(100, 90), SuggestedPrice: 100}}
	return Merge([]Batch{{Source: "StoreA", Records: a}, {Source: "StoreB", Records: b}}, 2)
}
