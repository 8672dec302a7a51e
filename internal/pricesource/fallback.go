package pricesource

import (
	"math"
	"math/rand"
	"time"

	"fuelmeter/internal/domain"
)

// Base prices the fallback synthesizer starts from, in currency units.
var fallbackBasePrices = map[domain.FuelType]float64{
	domain.FuelPetrol: 96.72,
	domain.FuelDiesel: 89.62,
	domain.FuelCNG:    76.59,
}

// fuelOffset is one supplier fuel entry with its fixed percentage offset
// from the base price.
type fuelOffset struct {
	fuel   domain.FuelType
	offset float64
}

// supplierOffsets holds the per-supplier price offsets. The slice order is
// fixed so a seeded random source yields a reproducible snapshot.
var supplierOffsets = []struct {
	key   string
	fuels []fuelOffset
}{
	{"iocl", []fuelOffset{{domain.FuelPetrol, 0}, {domain.FuelDiesel, 0}}},
	{"bpcl", []fuelOffset{{domain.FuelPetrol, -0.3}, {domain.FuelDiesel, -0.4}}},
	{"hpcl", []fuelOffset{{domain.FuelPetrol, -0.1}, {domain.FuelDiesel, -0.1}}},
	{"reliance", []fuelOffset{{domain.FuelPetrol, 0.4}, {domain.FuelDiesel, 0.5}}},
	{"nayara", []fuelOffset{{domain.FuelPetrol, 0.2}, {domain.FuelDiesel, 0.2}}},
	{"shell", []fuelOffset{{domain.FuelPetrol, 1.8}, {domain.FuelDiesel, 1.8}}},
	{"igl", []fuelOffset{{domain.FuelCNG, 0}}},
	{"mgl", []fuelOffset{{domain.FuelCNG, -3.1}}},
	{"adani", []fuelOffset{{domain.FuelCNG, 1.7}}},
}

// jitterSpan is the width of the random daily fluctuation: -0.5% to +0.5%.
const jitterSpan = 0.01

// FallbackGenerator deterministically synthesizes a plausible price snapshot
// when the external source is unavailable. It never fails; it is the terminal
// error-absorbing branch of the refresh pipeline.
type FallbackGenerator struct {
	randFloat func() float64
}

// NewFallbackGenerator creates a generator. A nil randFloat uses the global
// math/rand source; tests pass a seeded source for reproducible output.
func NewFallbackGenerator(randFloat func() float64) *FallbackGenerator {
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return &FallbackGenerator{randFloat: randFloat}
}

// Generate builds a complete snapshot covering every supplier, stamped with
// the given time and fallback provenance. Each price is the fuel base price
// adjusted by the supplier's fixed offset plus a small random jitter, rounded
// to two decimals.
func (g *FallbackGenerator) Generate(now time.Time) *domain.PriceSnapshot {
	table := make(domain.PriceTable, len(supplierOffsets))
	for _, supplier := range supplierOffsets {
		prices := make(map[domain.FuelType]float64, len(supplier.fuels))
		for _, entry := range supplier.fuels {
			base := fallbackBasePrices[entry.fuel]
			jitter := (g.randFloat() - 0.5) * jitterSpan
			price := base * (1 + entry.offset/100 + jitter)
			prices[entry.fuel] = math.Round(price*100) / 100
		}
		table[supplier.key] = prices
	}

	return &domain.PriceSnapshot{
		Prices:     table,
		UpdatedAt:  now,
		Provenance: domain.ProvenanceFallback,
	}
}
