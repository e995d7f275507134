package stowage

import (
	"fmt"
	"sort"
)

// Estimate assigns cargo units to container instances with a greedy
// first-fit-decreasing heuristic over aggregate volume and weight.
// Items must already carry resolved packaging codes; oogByItem supplies
// the override category per item ID (missing entries mean in gauge).
//
// The result is deterministic for a fixed item and catalog ordering:
// sorting is stable and every tie-break is explicit. Units that fit no
// catalog type even alone are collected as infeasible, never aborting
// the run.
func Estimate(items []CargoItem, oogByItem map[string]OOGResult, catalog []ContainerType) PlanningResult {
	units := ExpandUnits(items)

	// Largest and heaviest first to minimize fragmentation.
	sort.SliceStable(units, func(i, j int) bool {
		vi, vj := units[i].Volume(), units[j].Volume()
		if vi != vj {
			return vi > vj
		}
		return units[i].Item.Weight > units[j].Item.Weight
	})

	var open []ContainerInstance
	var infeasible []CargoUnit
	indexByType := make(map[string]int, len(catalog))

	for _, unit := range units {
		override := oogByItem[unit.ItemID].Override
		if placeUnit(&open, unit, override) {
			continue
		}

		chosen, ok := chooseNewType(unit, override, catalog)
		if !ok {
			infeasible = append(infeasible, unit)
			continue
		}

		indexByType[chosen.Name]++
		instance := ContainerInstance{
			Type:            chosen,
			Index:           indexByType[chosen.Name],
			RemainingVolume: chosen.UsableVolume(),
			RemainingWeight: chosen.MaxPayload,
		}
		assign(&instance, unit)
		open = append(open, instance)
	}

	volumeUtil, weightUtil := overallUtilization(open)

	return PlanningResult{
		Containers:        open,
		Infeasible:        infeasible,
		VolumeUtilization: volumeUtil,
		WeightUtilization: weightUtil,
	}
}

// ExpandUnits expands multi-quantity records into individual units with
// IDs of the form "<item id>#<n>".
func ExpandUnits(items []CargoItem) []CargoUnit {
	var units []CargoUnit
	for _, item := range items {
		for seq := 1; seq <= item.Quantity; seq++ {
			units = append(units, CargoUnit{
				UnitID: fmt.Sprintf("%s#%d", item.ID, seq),
				ItemID: item.ID,
				Seq:    seq,
				Item:   item,
			})
		}
	}
	return units
}

// placeUnit tries the open containers, most recently opened first, and
// assigns the unit to the first compatible one with enough budget left.
func placeUnit(open *[]ContainerInstance, unit CargoUnit, override Category) bool {
	for i := len(*open) - 1; i >= 0; i-- {
		instance := &(*open)[i]
		if !compatible(instance.Type, unit.Item, override) {
			continue
		}
		if unit.Volume() > instance.RemainingVolume || unit.Item.Weight > instance.RemainingWeight {
			continue
		}
		assign(instance, unit)
		return true
	}
	return false
}

// chooseNewType picks the catalog type for a fresh container: the
// cheapest compatible type that can hold the unit alone, ties broken by
// smaller usable volume, then catalog order.
func chooseNewType(unit CargoUnit, override Category, catalog []ContainerType) (ContainerType, bool) {
	bestIdx := -1
	for i, t := range catalog {
		if !compatible(t, unit.Item, override) {
			continue
		}
		if unit.Volume() > t.UsableVolume() || unit.Item.Weight > t.MaxPayload {
			continue
		}
		if bestIdx < 0 {
			bestIdx = i
			continue
		}
		best := catalog[bestIdx]
		if t.Cost != best.Cost {
			if t.Cost < best.Cost {
				bestIdx = i
			}
			continue
		}
		if t.UsableVolume() < best.UsableVolume() {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return ContainerType{}, false
	}
	return catalog[bestIdx], true
}

func compatible(t ContainerType, item CargoItem, override Category) bool {
	return t.AcceptsOverride(override) && t.AcceptsPackaging(item.PackagingCode)
}

func assign(instance *ContainerInstance, unit CargoUnit) {
	instance.RemainingVolume -= unit.Volume()
	instance.RemainingWeight -= unit.Item.Weight
	instance.Units = append(instance.Units, unit)
}

func overallUtilization(open []ContainerInstance) (volume, weight float64) {
	var usedVolume, totalVolume, usedWeight, totalWeight float64
	for _, instance := range open {
		usedVolume += instance.ConsumedVolume()
		totalVolume += instance.Type.UsableVolume()
		usedWeight += instance.ConsumedWeight()
		totalWeight += instance.Type.MaxPayload
	}
	if totalVolume > 0 {
		volume = usedVolume / totalVolume
	}
	if totalWeight > 0 {
		weight = usedWeight / totalWeight
	}
	return volume, weight
}
