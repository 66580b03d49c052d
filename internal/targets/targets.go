// Package targets holds the regulatory GHG-intensity targets per
// reporting year, in gCO2eq/MJ.
package targets

// EnergyPerTonneFuel is the energy content used to convert fuel
// consumption (tonnes) into energy in scope (MJ).
const EnergyPerTonneFuel = 41000.0

var byYear = map[int]float64{
	2024: 91.16,
	2025: 89.3368, // 91.16 * (1 - 0.02)
}

// ForYear returns the intensity target for a reporting year, and whether
// one is defined.
func ForYear(year int) (float64, bool) {
	t, ok := byYear[year]
	return t, ok
}
