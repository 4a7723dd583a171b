// Package catalog normalizes store price lists into product records, merges
// them into one catalog and derives the comparison view, price updates and
// export grid from it.
package catalog

// AllCategories disables the category filter and the category recalculation scope.
const AllCategories = "all"

// RawSheet is the decoded first sheet of an uploaded workbook.
type RawSheet struct {
	Rows [][]string
}

// ProductRecord is one product row of one source.
type ProductRecord struct {
	Source               string            `json:"source"`
	Code                 string            `json:"code"`
	Name                 string            `json:"name"`
	Stock                float64           `json:"stock"`
	UnitCost             float64           `json:"unit_cost"`
	NetCost              float64           `json:"net_cost"`
	SalePrice            float64           `json:"sale_price"`
	Category             string            `json:"category"`
	CurrentMarginPercent float64           `json:"current_margin_percent"`
	SuggestedPrice       float64           `json:"suggested_price"`
	Attributes           map[string]string `json:"attributes,omitempty"`
}

// Catalog is the ordered set of records of one upload batch.
type Catalog []ProductRecord

// Summary describes the upload batch a catalog was built from.
type Summary struct {
	Total          int      `json:"total_products"`
	Categories     []string `json:"categories"`
	Sources        []string `json:"locals"`
	FilesProcessed int      `json:"files_processed"`
}

type SourceFigures struct {
	Stock     float64 `json:"stock"`
	UnitCost  float64 `json:"unit_cost"`
	NetCost   float64 `json:"net_cost"`
	SalePrice float64 `json:"sale_price"`
}

// ComparisonEntry merges every filtered record sharing one product code.
type ComparisonEntry struct {
	Code                 string                   `json:"code"`
	Name                 string                   `json:"name"`
	Category             string                   `json:"category"`
	BySource             map[string]SourceFigures `json:"locals"`
	CurrentMarginPercent float64                  `json:"current_margin_percent"`
	SuggestedPrice       float64                  `json:"suggested_price"`
}

// Clone returns a copy of c that shares no record attributes with it.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	out := make(Catalog, len(c))
	for i, r := range c {
		out[i] = r
		if r.Attributes != nil {
			attrs := make(map[string]string, len(r.Attributes))
			for k, v := range r.Attributes {
				attrs[k] = v
			}
			out[i].Attributes = attrs
		}
	}
	return out
}

// Codes returns the product codes of entries in view order.
func Codes(entries []ComparisonEntry) []string {
	codes := make([]string, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	return codes
}
