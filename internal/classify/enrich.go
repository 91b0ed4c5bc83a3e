package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/greenloop-ai/ecoscan/internal/envdata"
	"github.com/greenloop-ai/ecoscan/internal/model"
)

// enrich turns a validated detection into its caller-facing form: disposal
// instructions and tips derived deterministically from (category,
// normalized label, environmental fact), plus a fresh unique id. A missing
// catalog entry is not an error; the impact mapping is simply empty.
func enrich(det model.RawDetection, catalog *envdata.Catalog) model.EnrichedDetection {
	category := model.CanonicalCategory(det.Category)
	fact, _ := catalog.Lookup(envdata.NormalizeKey(det.Label))

	return model.EnrichedDetection{
		ID:           uuid.NewString(),
		Label:        det.Label,
		Category:     category,
		Confidence:   det.Confidence,
		BBox:         det.BBox,
		Instructions: disposalInstructions(category, det.Label),
		Tips:         disposalTips(category, det.Label, fact),
		Impact:       fact,
	}
}

// disposalInstructions returns the instruction text for a canonical
// category. Unknown categories get the generic fallback.
func disposalInstructions(category, label string) string {
	item := strings.ToLower(label)
	switch category {
	case model.CategoryRecycle:
		return fmt.Sprintf("Clean and rinse the %s, remove any labels, and place it in your recycling bin. Check local guidelines for specific requirements.", item)
	case model.CategoryCompost:
		return fmt.Sprintf("Add the %s to your compost bin or organic waste collection. Remove any stickers or non-organic attachments first.", item)
	case model.CategoryLandfill:
		return fmt.Sprintf("Dispose of the %s in your general waste bin. Consider whether a reusable alternative could replace it.", item)
	case model.CategoryHazardous:
		return fmt.Sprintf("Take the %s to a designated hazardous-waste facility. Do not dispose of it in regular trash or recycling.", item)
	default:
		return "Follow local waste disposal guidelines."
	}
}

// disposalTips builds the tip list for a detection. Rules are additive and
// category-gated; each condition is independent.
func disposalTips(category, label string, fact model.EnvironmentalFact) []string {
	item := strings.ToLower(label)
	var tips []string

	switch category {
	case model.CategoryRecycle:
		tips = append(tips, fmt.Sprintf("Recycling this %s saves energy and reduces landfill waste", item))
		if len(fact.RecycledUses) > 0 {
			tips = append(tips, fmt.Sprintf("Once recycled, this becomes: %s", strings.Join(fact.RecycledUses, ", ")))
		}
		if fact.EnergySavedRecycling > 0 {
			pct := int(math.Round(fact.EnergySavedRecycling * 100))
			tips = append(tips, fmt.Sprintf("Recycling saves %d%% of the energy needed for new production", pct))
		}
	case model.CategoryCompost:
		tips = append(tips, "Composting returns nutrients to the soil and cuts methane emissions from landfills")
		if fact.CompostTime != "" {
			tips = append(tips, fmt.Sprintf("Decomposes in approximately %s when composted", fact.CompostTime))
		}
	case model.CategoryLandfill:
		if fact.DecompositionTime != "" {
			tips = append(tips, fmt.Sprintf("This item takes %s to decompose in landfill", fact.DecompositionTime))
		}
		tips = append(tips, "Consider reusable alternatives to reduce waste")
	case model.CategoryHazardous:
		tips = append(tips,
			"Never mix hazardous items with regular waste streams",
			"Keep the item in its original container until drop-off")
	}

	if fact.CO2Footprint > 0 {
		tips = append(tips, fmt.Sprintf("Estimated footprint: %.1f kg CO2", fact.CO2Footprint))
	}
	return tips
}
