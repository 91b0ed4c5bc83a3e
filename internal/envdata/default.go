package envdata

import "github.com/greenloop-ai/ecoscan/internal/model"

// Default returns the built-in impact table used when no external source is
// configured or the configured source fails to load.
func Default() map[string]model.EnvironmentalFact {
	return map[string]model.EnvironmentalFact{
		"plastic_bottle": {
			CO2Footprint:      2.3,
			RecyclingRate:     0.29,
			DecompositionTime: "450 years",
			RecycledUses:      []string{"clothing", "carpets", "park benches"},
		},
		"aluminum_can": {
			CO2Footprint:         3.2,
			RecyclingRate:        0.75,
			DecompositionTime:    "200-500 years",
			EnergySavedRecycling: 0.95,
		},
		"food_waste": {
			CO2Footprint: 1.1, // methane expressed as CO2 equivalent
			CompostTime:  "3-6 months",
		},
		"paper": {
			CO2Footprint:         1.1,
			RecyclingRate:        0.68,
			DecompositionTime:    "2-6 weeks",
			RecycledUses:         []string{"newsprint", "cardboard", "tissue"},
			EnergySavedRecycling: 0.4,
		},
		"glass_bottle": {
			CO2Footprint:         0.5,
			RecyclingRate:        0.31,
			DecompositionTime:    "1 million years",
			RecycledUses:         []string{"new bottles", "fiberglass", "road aggregate"},
			EnergySavedRecycling: 0.3,
		},
		"cardboard": {
			CO2Footprint:         0.9,
			RecyclingRate:        0.89,
			DecompositionTime:    "2 months",
			RecycledUses:         []string{"packaging", "paperboard"},
			EnergySavedRecycling: 0.24,
		},
		"battery": {
			CO2Footprint:      6.0,
			RecyclingRate:     0.45,
			DecompositionTime: "100 years",
		},
	}
}
