package catalog

type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"

	BandHealthy Band = "healthy"
	BandOut     Band = "out"
)

// MarginBand grades a margin percentage: 30% and up is high, 10% and up medium.
func MarginBand(pct float64) Band {
	switch {
	case pct >= 30:
		return BandHigh
	case pct >= 10:
		return BandMedium
	default:
		return BandLow
	}
}

// StockBand grades a stock level: more than 10 units is healthy, any positive
// stock is low and zero or negative stock is out.
func StockBand(stock float64) Band {
	switch {
	case stock > 10:
		return BandHealthy
	case stock > 0:
		return BandLow
	default:
		return BandOut
	}
}
