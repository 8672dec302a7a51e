package domain

// FuelType identifies a kind of fuel sold at the pump.
type FuelType string

const (
	FuelPetrol FuelType = "petrol"
	FuelDiesel FuelType = "diesel"
	FuelCNG    FuelType = "cng"
)

// FuelTypes lists all supported fuel types in display order.
func FuelTypes() []FuelType {
	return []FuelType{FuelPetrol, FuelDiesel, FuelCNG}
}

// ParseFuelType converts a raw string into a FuelType.
// The second return value is false for unknown values.
func ParseFuelType(s string) (FuelType, bool) {
	switch FuelType(s) {
	case FuelPetrol, FuelDiesel, FuelCNG:
		return FuelType(s), true
	}
	return "", false
}

// Valid reports whether the fuel type is one of the supported values.
func (f FuelType) Valid() bool {
	_, ok := ParseFuelType(string(f))
	return ok
}

// Unit returns the measurement unit fuel of this type is sold in.
func (f FuelType) Unit() string {
	if f == FuelCNG {
		return "kg"
	}
	return "liter"
}

// SupplierCategory groups suppliers for ordering and icon selection.
type SupplierCategory string

const (
	CategoryStateOil   SupplierCategory = "state_oil"
	CategoryPrivateOil SupplierCategory = "private_oil"
	CategoryGasNetwork SupplierCategory = "gas_network"
)

// Supplier is a fuel-selling entity with its own per-fuel-type price.
// The definition is immutable except for the price values, which the
// price sync layer overwrites in place.
type Supplier struct {
	Key         string
	Name        string
	ShortName   string
	Category    SupplierCategory
	Icon        string
	CNGEligible bool
	Prices      map[FuelType]float64
}

// Sells reports whether the supplier carries the given fuel type.
// CNG eligibility is an explicit flag, not inferred from the price table.
func (s Supplier) Sells(fuel FuelType) bool {
	if fuel == FuelCNG {
		return s.CNGEligible
	}
	_, ok := s.Prices[fuel]
	return ok
}

// Clone returns a deep copy of the supplier so callers never share
// the mutable price table.
func (s Supplier) Clone() Supplier {
	out := s
	out.Prices = make(map[FuelType]float64, len(s.Prices))
	for fuel, price := range s.Prices {
		out.Prices[fuel] = price
	}
	return out
}
