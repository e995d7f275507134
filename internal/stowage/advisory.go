package stowage

import "strings"

// reeferKeywords mark cargo that should travel refrigerated regardless
// of its gauge classification.
var reeferKeywords = []string{"reefer", "refrigerated", "frozen", "cold", "冷凍", "冷蔵"}

// grossWeightTruckLimit is the gross weight above which a 3+ axle
// trailer is recommended.
const grossWeightTruckLimit = 30000

// RecommendContainer suggests a container type name for one cargo item
// given its OOG classification. Temperature keywords in the description
// or packaging text win over gauge considerations.
func RecommendContainer(item CargoItem, oog OOGResult, catalog []ContainerType) string {
	text := strings.ToLower(item.Description + " " + item.Packaging)
	for _, keyword := range reeferKeywords {
		if strings.Contains(text, keyword) {
			if name, ok := firstOfCategory(catalog, CategoryReefer); ok {
				return name
			}
		}
	}
	if oog.Override != "" {
		if name, ok := firstOfCategory(catalog, oog.Override); ok {
			return name
		}
	}
	name, _ := firstOfCategory(catalog, CategoryStandard)
	return name
}

// SummarizeSpecialNeeds counts recommended special container types for
// the OOG-flagged items of a plan.
func SummarizeSpecialNeeds(items []CargoItem, results []OOGResult, catalog []ContainerType) map[string]int {
	byID := make(map[string]CargoItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	needs := make(map[string]int)
	for _, result := range results {
		if !result.Flagged() {
			continue
		}
		needs[RecommendContainer(byID[result.ItemID], result, catalog)]++
	}
	return needs
}

// GrossWeight estimates the road weight of one closed container: cargo
// weight plus the tare weight of its type.
func GrossWeight(instance ContainerInstance) float64 {
	return instance.ConsumedWeight() + instance.Type.TareWeight
}

// TruckingNote summarizes road-transport caveats for a closed container
// given the worst overage among its units.
func TruckingNote(gross, maxOverWidth, maxOverHeight float64) string {
	var notes []string
	if maxOverHeight > 0 {
		notes = append(notes, "height overage: low-bed chassis recommended")
	}
	if maxOverWidth > 0 {
		notes = append(notes, "width overage: verify special road transport permit")
	}
	if gross > grossWeightTruckLimit {
		notes = append(notes, "gross weight over 30t: 3+ axle trailer recommended")
	}
	if len(notes) == 0 {
		return "standard container chassis sufficient"
	}
	return strings.Join(notes, "; ")
}

func firstOfCategory(catalog []ContainerType, category Category) (string, bool) {
	for _, t := range catalog {
		if t.Category == category {
			return t.Name, true
		}
	}
	return "", false
}
