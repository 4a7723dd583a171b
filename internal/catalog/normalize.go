package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Layout of the store price list exports: two title rows, the header row and
// then one product per row. Only the first nine columns carry headers.
const (
	HeaderRowIndex  = 2
	FirstDataRow    = HeaderRowIndex + 1
	HeaderScanWidth = 9
)

const (
	fieldCode      = "codigo"
	fieldName      = "nombre"
	fieldStock     = "stock"
	fieldUnitCost  = "costo_unitario"
	fieldNetCost   = "costo_neto"
	fieldSalePrice = "precio_venta"
	fieldCategory  = "categoria"

	// AttrSheetSuggestedPrice and AttrSheetSalePercent keep the values the
	// store spreadsheet computed itself.
	AttrSheetSuggestedPrice = "precio_sugerido_excel"
	AttrSheetSalePercent    = "porcentaje_venta_excel"
)

var headerFields = map[string]string{
	"Código":              fieldCode,
	"Nombre":              fieldName,
	"Stock":               fieldStock,
	"Costo U.C.":          fieldUnitCost,
	"Costo neto":          fieldNetCost,
	"Precio de Venta":     fieldSalePrice,
	"Precio Sugerido":     AttrSheetSuggestedPrice,
	"Porcentaje de Venta": AttrSheetSalePercent,
	"Familia":             fieldCategory,
	"Categoría":           fieldCategory,
}

var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// HeaderField maps a header label to the record field it fills. Labels outside
// the known set are lower-cased with whitespace replaced by underscores.
func HeaderField(label string) string {
	if field, ok := headerFields[norm.NFC.String(strings.TrimSpace(label))]; ok {
		return field
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, strings.ToLower(label))
}

// SourceName derives the source of a file from its name.
func SourceName(fileName string) string {
	lower := strings.ToLower(fileName)
	for _, ext := range []string{".xlsx", ".xls"} {
		if strings.HasSuffix(lower, ext) {
			return fileName[:len(fileName)-len(ext)]
		}
	}
	return fileName
}

// ParseNumber reads the leading decimal number of s. Anything that does not
// start with a finite number yields 0.
func ParseNumber(s string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// MarginPercent is the gain of salePrice over netCost, 0 without a positive cost.
func MarginPercent(salePrice, netCost float64) float64 {
	if netCost > 0 {
		return (salePrice - netCost) / netCost * 100
	}
	return 0
}

// Normalize turns a decoded sheet into the product records of one source.
// Rows without a code or a name are dropped.
func Normalize(sheet RawSheet, source string) ([]ProductRecord, error) {
	if len(sheet.Rows) <= HeaderRowIndex {
		return nil, ErrMissingHeader
	}
	header := sheet.Rows[HeaderRowIndex]
	if len(header) > HeaderScanWidth {
		header = header[:HeaderScanWidth]
	}
	fields := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			continue
		}
		fields[i] = HeaderField(h)
	}

	records := make([]ProductRecord, 0, len(sheet.Rows)-FirstDataRow)
	for _, row := range sheet.Rows[FirstDataRow:] {
		values := make(map[string]string, len(fields))
		for i, field := range fields {
			if field == "" {
				continue
			}
			var v string
			if i < len(row) {
				v = row[i]
			}
			values[field] = v
		}
		rec := buildRecord(values, source)
		if rec.Code == "" || rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func buildRecord(values map[string]string, source string) ProductRecord {
	rec := ProductRecord{
		Source:    source,
		Code:      strings.TrimSpace(values[fieldCode]),
		Name:      strings.TrimSpace(values[fieldName]),
		Stock:     ParseNumber(values[fieldStock]),
		UnitCost:  ParseNumber(values[fieldUnitCost]),
		NetCost:   ParseNumber(values[fieldNetCost]),
		SalePrice: ParseNumber(values[fieldSalePrice]),
		Category:  strings.TrimSpace(values[fieldCategory]),
	}
	rec.CurrentMarginPercent = MarginPercent(rec.SalePrice, rec.NetCost)
	rec.SuggestedPrice = rec.SalePrice

	for field, v := range values {
		switch field {
		case fieldCode, fieldName, fieldStock, fieldUnitCost, fieldNetCost, fieldSalePrice, fieldCategory:
			continue
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]string)
		}
		rec.Attributes[field] = v
	}
	return rec
}
