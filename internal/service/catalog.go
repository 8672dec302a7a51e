package service

import (
	"sync"

	"fuelmeter/internal/domain"
)

// defaultSuppliers returns the canonical supplier registry: state-affiliated
// oil companies first, then private ones, then gas-network suppliers.
// Baseline prices are the fallback base prices adjusted by each supplier's
// fixed offset, rounded to two decimals.
func defaultSuppliers() []domain.Supplier {
	return []domain.Supplier{
		{
			Key: "iocl", Name: "Indian Oil Corporation", ShortName: "IOCL",
			Category: domain.CategoryStateOil, Icon: "gasStation",
			Prices: map[domain.FuelType]float64{domain.FuelPetrol: 96.72, domain.FuelDiesel: 89.62},
		},
		{
			Key: "bpcl", Name: "Bharat Petroleum", ShortName: "BPCL",
			Category: domain.CategoryStateOil, Icon: "gasStation",
			Prices: map[domain.FuelType]float64{domain.FuelPetrol: 96.43, domain.FuelDiesel: 89.26},
		},
		{
			Key: "hpcl", Name: "Hindustan Petroleum", ShortName: "HPCL",
			Category: domain.CategoryStateOil, Icon: "gasStation",
			Prices: map[domain.FuelType]float64{domain.FuelPetrol: 96.62, domain.FuelDiesel: 89.53},
		},
		{
			Key: "reliance", Name: "Reliance Petroleum", ShortName: "Reliance",
			Category: domain.CategoryPrivateOil, Icon: "car",
			Prices: map[domain.FuelType]float64{domain.FuelPetrol: 97.11, domain.FuelDiesel: 90.07},
		},
		{
			Key: "nayara", Name: "Nayara Energy", ShortName: "Nayara",
			Category: domain.CategoryPrivateOil, Icon: "car",
			Prices: map[domain.FuelType]float64{domain.FuelPetrol: 96.91, domain.FuelDiesel: 89.80},
		},
		{
			Key: "shell", Name: "Shell India", ShortName: "Shell",
			Category: domain.CategoryPrivateOil, Icon: "car",
			Prices: map[domain.FuelType]float64{domain.FuelPetrol: 98.46, domain.FuelDiesel: 91.23},
		},
		{
			Key: "igl", Name: "Indraprastha Gas", ShortName: "IGL",
			Category: domain.CategoryGasNetwork, Icon: "gasMeter", CNGEligible: true,
			Prices: map[domain.FuelType]float64{domain.FuelCNG: 76.59},
		},
		{
			Key: "mgl", Name: "Mahanagar Gas", ShortName: "MGL",
			Category: domain.CategoryGasNetwork, Icon: "gasMeter", CNGEligible: true,
			Prices: map[domain.FuelType]float64{domain.FuelCNG: 74.22},
		},
		{
			Key: "adani", Name: "Adani Total Gas", ShortName: "Adani",
			Category: domain.CategoryGasNetwork, Icon: "gasMeter", CNGEligible: true,
			Prices: map[domain.FuelType]float64{domain.FuelCNG: 77.89},
		},
	}
}

// CatalogService is the registry of suppliers and their current prices.
// The supplier set and order are fixed; only price values change, when a
// price snapshot is applied.
type CatalogService struct {
	mu        sync.RWMutex
	suppliers []domain.Supplier
}

// NewCatalogService creates a catalog seeded with the canonical suppliers.
func NewCatalogService() *CatalogService {
	return &CatalogService{suppliers: defaultSuppliers()}
}

// ListSuppliers returns all suppliers in canonical order.
func (s *CatalogService) ListSuppliers() []domain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, sup.Clone())
	}
	return out
}

// SuppliersFor returns the suppliers selling the given fuel type, in
// canonical order.
func (s *CatalogService) SuppliersFor(fuel domain.FuelType) ([]domain.Supplier, error) {
	if !fuel.Valid() {
		return nil, ErrInvalidFuelType
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Supplier
	for _, sup := range s.suppliers {
		if sup.Sells(fuel) {
			out = append(out, sup.Clone())
		}
	}
	return out, nil
}

// DefaultSupplier returns the first supplier in canonical order selling the
// given fuel type. For cng that is the first CNG-eligible supplier.
func (s *CatalogService) DefaultSupplier(fuel domain.FuelType) (domain.Supplier, error) {
	suppliers, err := s.SuppliersFor(fuel)
	if err != nil {
		return domain.Supplier{}, err
	}
	if len(suppliers) == 0 {
		return domain.Supplier{}, ErrUnknownSupplier
	}
	return suppliers[0], nil
}

// Supplier looks up a supplier by key.
func (s *CatalogService) Supplier(key string) (domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sup := range s.suppliers {
		if sup.Key == key {
			return sup.Clone(), nil
		}
	}
	return domain.Supplier{}, ErrUnknownSupplier
}

// PriceOf returns the supplier's price for a fuel type. Absence is a valid
// "not sold" state and is reported as zero, never as an error.
func (s *CatalogService) PriceOf(key string, fuel domain.FuelType) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sup := range s.suppliers {
		if sup.Key == key {
			return sup.Prices[fuel]
		}
	}
	return 0
}

// ApplySnapshot overwrites supplier prices with values from the snapshot.
// Only fuel-type entries present in both the snapshot and the supplier's
// existing table are touched, so a snapshot can never introduce a fuel type
// a supplier does not sell. Returns the updated supplier list.
func (s *CatalogService) ApplySnapshot(snapshot domain.PriceSnapshot) []domain.Supplier {
	s.mu.Lock()
	for i := range s.suppliers {
		fuels, ok := snapshot.Prices[s.suppliers[i].Key]
		if !ok {
			continue
		}
		for fuel, price := range fuels {
			if _, exists := s.suppliers[i].Prices[fuel]; exists {
				s.suppliers[i].Prices[fuel] = price
			}
		}
	}
	s.mu.Unlock()

	return s.ListSuppliers()
}
