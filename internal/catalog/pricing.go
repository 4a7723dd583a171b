package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scope selects the records a markup applies to.
type Scope string

const (
	ScopeSelected Scope = "selected"
	ScopeCategory Scope = "category"
	ScopeAll      Scope = "all"
)

func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.TrimSpace(s)); sc {
	case ScopeSelected, ScopeCategory, ScopeAll:
		return sc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// ParsePercentage reads a markup typed by the user.
func ParsePercentage(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPercentage, s)
	}
	return v, nil
}

// RecalcRequest describes one bulk suggested price update.
type RecalcRequest struct {
	Percentage     float64
	Scope          Scope
	SelectedCodes  map[string]struct{}
	ActiveCategory string
}

func (req RecalcRequest) eligible(r ProductRecord) bool {
	switch req.Scope {
	case ScopeAll:
		return true
	case ScopeCategory:
		return req.ActiveCategory != AllCategories && req.ActiveCategory != "" && r.Category == req.ActiveCategory
	case ScopeSelected:
		_, ok := req.SelectedCodes[r.Code]
		return ok
	default:
		return false
	}
}

// SuggestedPrice applies a markup percentage over net cost.
func SuggestedPrice(netCost, percentage float64) float64 {
	return netCost * (1 + percentage/100)
}

// Recalculate returns a copy of c where every record in scope with a positive
// net cost has its suggested price set to the markup over net cost, along
// with the number of records changed. Nothing is changed on error.
func Recalculate(c Catalog, req RecalcRequest) (Catalog, int, error) {
	if math.IsNaN(req.Percentage) || math.IsInf(req.Percentage, 0) {
		return c, 0, ErrInvalidPercentage
	}
	if _, err := ParseScope(string(req.Scope)); err != nil {
		return c, 0, err
	}
	out := c.Clone()
	changed := 0
	for i := range out {
		r := &out[i]
		if r.NetCost <= 0 || !req.eligible(*r) {
			continue
		}
		r.SuggestedPrice = SuggestedPrice(r.NetCost, req.Percentage)
		changed++
	}
	return out, changed, nil
}
