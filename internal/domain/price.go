package domain

import "time"

// Provenance records where a price snapshot came from.
type Provenance string

const (
	// ProvenanceFetched marks prices obtained from the external source.
	ProvenanceFetched Provenance = "fetched"

	// ProvenanceFallback marks synthetic prices generated locally after
	// a fetch failure.
	ProvenanceFallback Provenance = "fallback"
)

// PriceTable maps supplier key -> fuel type -> price.
type PriceTable map[string]map[FuelType]float64

// Clone returns a deep copy of the table.
func (t PriceTable) Clone() PriceTable {
	out := make(PriceTable, len(t))
	for key, fuels := range t {
		prices := make(map[FuelType]float64, len(fuels))
		for fuel, price := range fuels {
			prices[fuel] = price
		}
		out[key] = prices
	}
	return out
}

// PriceSnapshot is an immutable point-in-time price table. Callers always
// receive a copy, never a live handle into the cache.
type PriceSnapshot struct {
	Prices     PriceTable
	UpdatedAt  time.Time
	Provenance Provenance
}

// Clone returns a deep copy of the snapshot.
func (s PriceSnapshot) Clone() PriceSnapshot {
	return PriceSnapshot{
		Prices:     s.Prices.Clone(),
		UpdatedAt:  s.UpdatedAt,
		Provenance: s.Provenance,
	}
}

// RefreshEvent is an audit row describing one price cache refresh.
type RefreshEvent struct {
	ID         string
	Provenance Provenance
	SnapshotAt time.Time
	Suppliers  int
	ObservedAt time.Time
	Note       string
}
