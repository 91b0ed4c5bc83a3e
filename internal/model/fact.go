package model

// EnvironmentalFact holds impact data for one item type. All fields are
// optional; zero values mean the fact is not known for this item.
// Read-only after catalog load.
type EnvironmentalFact struct {
	CO2Footprint         float64  `json:"co2_footprint,omitempty" yaml:"co2_footprint"`          // kg CO2
	RecyclingRate        float64  `json:"recycling_rate,omitempty" yaml:"recycling_rate"`        // fraction in [0,1]
	DecompositionTime    string   `json:"decomposition_time,omitempty" yaml:"decomposition_time"`
	CompostTime          string   `json:"compost_time,omitempty" yaml:"compost_time"`
	RecycledUses         []string `json:"recycled_uses,omitempty" yaml:"recycled_uses"`
	EnergySavedRecycling float64  `json:"energy_saved_recycling,omitempty" yaml:"energy_saved_recycling"` // fraction in [0,1]
}

// Empty reports whether no field of the fact is set.
func (f EnvironmentalFact) Empty() bool {
	return f.CO2Footprint == 0 &&
		f.RecyclingRate == 0 &&
		f.DecompositionTime == "" &&
		f.CompostTime == "" &&
		len(f.RecycledUses) == 0 &&
		f.EnergySavedRecycling == 0
}
