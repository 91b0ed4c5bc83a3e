package predictor

import "github.com/greenloop-ai/ecoscan/internal/model"

// wasteClass describes one detectable item class: its display label, the
// canonical disposal category, and a typical material composition
// (fractions summing to ≤ 1.0).
type wasteClass struct {
	Label     string
	Category  string
	Materials map[string]float64
}

// wasteClasses is the class index table shared by detection backends. The
// order matches the training label order of the waste models.
var wasteClasses = []wasteClass{
	{Label: "Plastic Bottle", Category: model.CategoryRecycle, Materials: map[string]float64{"plastic": 0.95, "metal": 0.05}},
	{Label: "Aluminum Can", Category: model.CategoryRecycle, Materials: map[string]float64{"metal": 1.0}},
	{Label: "Glass Bottle", Category: model.CategoryRecycle, Materials: map[string]float64{"glass": 0.98}},
	{Label: "Paper", Category: model.CategoryRecycle, Materials: map[string]float64{"paper": 1.0}},
	{Label: "Cardboard", Category: model.CategoryRecycle, Materials: map[string]float64{"paper": 0.97}},
	{Label: "Apple Core", Category: model.CategoryCompost, Materials: map[string]float64{"organic": 1.0}},
	{Label: "Food Waste", Category: model.CategoryCompost, Materials: map[string]float64{"organic": 1.0}},
	{Label: "Styrofoam Cup", Category: model.CategoryLandfill, Materials: map[string]float64{"polystyrene": 1.0}},
	{Label: "Chip Bag", Category: model.CategoryLandfill, Materials: map[string]float64{"plastic": 0.7, "aluminum": 0.3}},
	{Label: "Battery", Category: model.CategoryHazardous, Materials: map[string]float64{"metal": 0.6, "chemical": 0.4}},
	{Label: "Paint Can", Category: model.CategoryHazardous, Materials: map[string]float64{"metal": 0.8, "chemical": 0.2}},
}
