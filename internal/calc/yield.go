// Package calc is the calculation engine of the biomethane model. Every
// function is a pure function of its inputs.
package calc

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// =============================================================================
// PROCESS CONSTANTS
// =============================================================================

const (
	// MethaneRecovery is the upgrading unit's methane recovery efficiency.
	MethaneRecovery = 0.98
	// CO2TonsPerM3 converts a CO2 volume in m3 into tons.
	CO2TonsPerM3 = 0.00198
	// CO2Capture is the share of the CO2 stream that is captured for sale.
	CO2Capture = 0.90
	// DefaultCO2FlatFraction is the CO2 share of raw biogas used by FlatFraction.
	DefaultCO2FlatFraction = 0.40
)

// Names accepted by PolicyByName.
const (
	PolicyMethaneShortfall = "methane_shortfall"
	PolicyFlatFraction     = "flat_fraction"
)

// CO2Policy derives the saleable CO2 mass from the biogas volumes.
type CO2Policy interface {
	Name() string
	CO2Mass(rawVolume, methaneVolume float64) float64
}

// MethaneShortfall treats everything in the raw gas that is not methane as CO2.
//
// FORMULA: CO2 = (Raw - CH4 / recovery) × 0.00198 × 0.90
type MethaneShortfall struct{}

// Name implements CO2Policy.
func (MethaneShortfall) Name() string { return PolicyMethaneShortfall }

// CO2Mass implements CO2Policy.
func (MethaneShortfall) CO2Mass(rawVolume, methaneVolume float64) float64 {
	return (rawVolume - methaneVolume/MethaneRecovery) * CO2TonsPerM3 * CO2Capture
}

// FlatFraction assumes a fixed CO2 share of the raw gas.
//
// FORMULA: CO2 = Raw × fraction × 0.00198 × 0.90
type FlatFraction struct {
	Fraction float64
}

// Name implements CO2Policy.
func (FlatFraction) Name() string { return PolicyFlatFraction }

// CO2Mass implements CO2Policy.
func (p FlatFraction) CO2Mass(rawVolume, _ float64) float64 {
	return rawVolume * p.Fraction * CO2TonsPerM3 * CO2Capture
}

// PolicyByName resolves a configured policy. An empty name selects
// MethaneShortfall. A non-positive flatFraction falls back to the default.
func PolicyByName(name string, flatFraction float64) (CO2Policy, error) {
	switch name {
	case "", PolicyMethaneShortfall:
		return MethaneShortfall{}, nil
	case PolicyFlatFraction:
		if flatFraction <= 0 {
			flatFraction = DefaultCO2FlatFraction
		}
		return FlatFraction{Fraction: flatFraction}, nil
	default:
		return nil, fmt.Errorf("unknown co2 policy %q", name)
	}
}

// Yields are the gas volumes of the active feedstock set.
type Yields struct {
	RawVolume     float64 // m3/yr raw biogas
	MethaneVolume float64 // m3/yr upgraded methane
	CO2Mass       float64 // t/yr captured CO2
}

// AggregateYields sums the biogas streams of the active records.
//
// FORMULA: Raw = Σ tons × yield
//
//	CH4 = 0.98 × Σ tons × yield × methaneFraction
//
// An empty set yields zeros.
func AggregateYields(active []models.FeedstockRecord, policy CO2Policy) Yields {
	if len(active) == 0 {
		return Yields{}
	}
	if policy == nil {
		policy = MethaneShortfall{}
	}

	raw := make([]float64, len(active))
	fractions := make([]float64, len(active))
	for i, r := range active {
		raw[i] = r.RawVolume()
		fractions[i] = r.MethaneFraction
	}

	rawVolume := floats.Sum(raw)
	methaneVolume := MethaneRecovery * floats.Dot(raw, fractions)

	return Yields{
		RawVolume:     rawVolume,
		MethaneVolume: methaneVolume,
		CO2Mass:       policy.CO2Mass(rawVolume, methaneVolume),
	}
}
