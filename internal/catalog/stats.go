// stats.go
package catalog

import (
	"fmt"
	"math"
	"sort"
)

// Field names a numeric column of the catalog.
type Field string

const (
	FieldStock          Field = "stock"
	FieldUnitCost       Field = "unit_cost"
	FieldNetCost        Field = "net_cost"
	FieldSalePrice      Field = "sale_price"
	FieldSuggestedPrice Field = "suggested_price"
	FieldMargin         Field = "margin"
)

// Fields lists the columns Aggregate understands, in display order.
var Fields = []Field{FieldStock, FieldUnitCost, FieldNetCost, FieldSalePrice, FieldSuggestedPrice, FieldMargin}

// Operations lists the supported aggregate operations.
var Operations = []string{"sum", "average", "median", "min", "max", "count", "std"}

func (f Field) value(r ProductRecord) (float64, error) {
	switch f {
	case FieldStock:
		return r.Stock, nil
	case FieldUnitCost:
		return r.UnitCost, nil
	case FieldNetCost:
		return r.NetCost, nil
	case FieldSalePrice:
		return r.SalePrice, nil
	case FieldSuggestedPrice:
		return r.SuggestedPrice, nil
	case FieldMargin:
		return r.CurrentMarginPercent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
}

// Aggregate computes op over field for records.
func Aggregate(records []ProductRecord, field Field, op string) (float64, error) {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		v, err := field.value(r)
		if err != nil {
			return 0, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return 0, ErrNoValues
	}
	switch op {
	case "sum":
		return sum(values), nil
	case "average":
		return avg(values), nil
	case "median":
		return median(values), nil
	case "min":
		return minOf(values), nil
	case "max":
		return maxOf(values), nil
	case "count":
		return float64(len(values)), nil
	case "std":
		return std(values), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperation, op)
	}
}

func sum(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s
}

func avg(vals []float64) float64 { return sum(vals) / float64(len(vals)) }

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// std is the sample standard deviation.
func std(vals []float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	mean := avg(vals)
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)-1))
}
