package stowage

import (
	"reflect"
	"testing"
)

func testCatalog() []ContainerType {
	return []ContainerType{
		testEnvelope(),
		{
			Name:        "OT",
			Category:    CategoryOpenTop,
			InnerLength: 1200,
			InnerWidth:  230,
			InnerHeight: 260,
			MaxPayload:  21000,
			Cost:        2,
		},
		{
			Name:        "FR",
			Category:    CategoryFlatRack,
			InnerLength: 1180,
			InnerWidth:  223,
			InnerHeight: 200,
			MaxPayload:  39000,
			Cost:        3,
		},
	}
}

func classifyAll(items []CargoItem, envelope ContainerType) map[string]OOGResult {
	results := make(map[string]OOGResult, len(items))
	for _, item := range items {
		results[item.ID] = Classify(item, envelope)
	}
	return results
}

func TestEstimatePacksSmallItemsTogether(t *testing.T) {
	t.Parallel()

	items := []CargoItem{
		{ID: "A", Length: 100, Width: 100, Height: 100, Weight: 50, Quantity: 4, PackagingCode: "CS"},
		{ID: "B", Length: 200, Width: 100, Height: 100, Weight: 80, Quantity: 2, PackagingCode: "DR"},
	}

	result := Estimate(items, classifyAll(items, testEnvelope()), testCatalog())

	if len(result.Containers) != 1 {
		t.Fatalf("expected a single container, got %d", len(result.Containers))
	}
	if len(result.Infeasible) != 0 {
		t.Fatalf("expected no infeasible units, got %v", result.Infeasible)
	}
	container := result.Containers[0]
	if container.Type.Name != "20GP" {
		t.Fatalf("expected cheapest standard container, got %s", container.Type.Name)
	}
	if len(container.Units) != 6 {
		t.Fatalf("expected 6 units after quantity expansion, got %d", len(container.Units))
	}
	// Largest volume first: B units (2 m3) before A units (1 m3).
	if container.Units[0].ItemID != "B" {
		t.Fatalf("expected largest item first, got %s", container.Units[0].UnitID)
	}
}

func TestEstimateLargeItemsCannotShareContainer(t *testing.T) {
	t.Parallel()

	// Each item consumes more than half the standard volume.
	items := []CargoItem{
		{ID: "A", Length: 800, Width: 230, Height: 230, Weight: 4000, Quantity: 1},
		{ID: "B", Length: 800, Width: 230, Height: 230, Weight: 4000, Quantity: 1},
	}

	result := Estimate(items, classifyAll(items, testEnvelope()), testCatalog())

	if len(result.Containers) != 2 {
		t.Fatalf("expected two containers, got %d", len(result.Containers))
	}
	for _, container := range result.Containers {
		if len(container.Units) != 1 {
			t.Fatalf("expected one unit per container, got %d", len(container.Units))
		}
		if container.VolumeUtilization() <= 0.5 {
			t.Fatalf("expected utilization above 50%%, got %v", container.VolumeUtilization())
		}
	}
}

func TestEstimateRespectsWeightBudget(t *testing.T) {
	t.Parallel()

	// Light volume, heavy weight: 21000kg payload fits one 11000kg unit only.
	items := []CargoItem{
		{ID: "H", Length: 100, Width: 100, Height: 100, Weight: 11000, Quantity: 3},
	}

	result := Estimate(items, classifyAll(items, testEnvelope()), testCatalog())

	if len(result.Containers) != 3 {
		t.Fatalf("expected three containers, got %d", len(result.Containers))
	}
	for _, container := range result.Containers {
		if container.RemainingWeight < 0 {
			t.Fatalf("weight budget exceeded on %s", container.Label())
		}
		if container.RemainingVolume < 0 {
			t.Fatalf("volume budget exceeded on %s", container.Label())
		}
	}
}

func TestEstimateOOGItemNeverInStandardContainer(t *testing.T) {
	t.Parallel()

	items := []CargoItem{
		{ID: "TALL", Length: 1200, Width: 200, Height: 250, Weight: 5000, Quantity: 1},
		{ID: "SMALL", Length: 100, Width: 100, Height: 100, Weight: 50, Quantity: 1},
	}

	result := Estimate(items, classifyAll(items, testEnvelope()), testCatalog())

	for _, container := range result.Containers {
		for _, unit := range container.Units {
			if unit.ItemID == "TALL" && container.Type.Category == CategoryStandard {
				t.Fatalf("OOG unit assigned to standard container %s", container.Label())
			}
		}
	}
	if len(result.Infeasible) != 0 {
		t.Fatalf("expected the open-top type to absorb the OOG unit, got infeasible %v", result.Infeasible)
	}
}

func TestEstimateInfeasibleItemReported(t *testing.T) {
	t.Parallel()

	items := []CargoItem{
		{ID: "OK", Length: 100, Width: 100, Height: 100, Weight: 100, Quantity: 1},
		{ID: "HEAVY", Length: 100, Width: 100, Height: 100, Weight: 90000, Quantity: 1},
	}

	result := Estimate(items, classifyAll(items, testEnvelope()), testCatalog())

	if len(result.Infeasible) != 1 || result.Infeasible[0].ItemID != "HEAVY" {
		t.Fatalf("expected HEAVY to be infeasible, got %v", result.Infeasible)
	}
	if len(result.Containers) != 1 {
		t.Fatalf("expected the feasible unit to still be packed, got %d containers", len(result.Containers))
	}
	for _, container := range result.Containers {
		for _, unit := range container.Units {
			if unit.ItemID == "HEAVY" {
				t.Fatalf("infeasible unit must not appear in any container")
			}
		}
	}
}

func TestEstimateOpensCheapestCompatibleType(t *testing.T) {
	t.Parallel()

	// The cheaper type comes later in the catalog; cost wins over order.
	catalog := []ContainerType{
		{Name: "BIG", Category: CategoryStandard, InnerLength: 1200, InnerWidth: 230, InnerHeight: 230, MaxPayload: 26000, Cost: 2},
		{Name: "CHEAP", Category: CategoryStandard, InnerLength: 600, InnerWidth: 230, InnerHeight: 230, MaxPayload: 21000, Cost: 1},
	}
	items := []CargoItem{
		{ID: "A", Length: 100, Width: 100, Height: 100, Weight: 100, Quantity: 1},
	}

	result := Estimate(items, classifyAll(items, catalog[0]), catalog)

	if len(result.Containers) != 1 || result.Containers[0].Type.Name != "CHEAP" {
		t.Fatalf("expected CHEAP container, got %+v", result.Containers)
	}
}

func TestEstimatePackagingCompatibility(t *testing.T) {
	t.Parallel()

	catalog := []ContainerType{
		{Name: "CASES", Category: CategoryStandard, InnerLength: 1200, InnerWidth: 230, InnerHeight: 230, MaxPayload: 21000, Cost: 1, PackagingCodes: []string{"CS"}},
	}
	items := []CargoItem{
		{ID: "DRUM", Length: 100, Width: 100, Height: 100, Weight: 100, Quantity: 1, PackagingCode: "DR"},
		{ID: "ANY", Length: 100, Width: 100, Height: 100, Weight: 100, Quantity: 1, PackagingCode: CodeUnspecified},
	}

	result := Estimate(items, classifyAll(items, catalog[0]), catalog)

	if len(result.Infeasible) != 1 || result.Infeasible[0].ItemID != "DRUM" {
		t.Fatalf("expected the drum to be rejected by the cases-only type, got %v", result.Infeasible)
	}
	if len(result.Containers) != 1 || result.Containers[0].Units[0].ItemID != "ANY" {
		t.Fatalf("expected the unspecified-code unit to be accepted, got %+v", result.Containers)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	t.Parallel()

	items := []CargoItem{
		{ID: "A", Length: 300, Width: 200, Height: 200, Weight: 700, Quantity: 3},
		{ID: "B", Length: 300, Width: 200, Height: 200, Weight: 900, Quantity: 2},
		{ID: "C", Length: 500, Width: 210, Height: 210, Weight: 400, Quantity: 5},
	}
	oog := classifyAll(items, testEnvelope())

	first := Estimate(items, oog, testCatalog())
	second := Estimate(items, oog, testCatalog())

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical input")
	}
}

func TestEstimateTieBreaksByWeightThenInputOrder(t *testing.T) {
	t.Parallel()

	// Identical volume: heavier first, then input order.
	items := []CargoItem{
		{ID: "LIGHT", Length: 200, Width: 200, Height: 200, Weight: 100, Quantity: 1},
		{ID: "HEAVY", Length: 200, Width: 200, Height: 200, Weight: 500, Quantity: 1},
		{ID: "LIGHT2", Length: 200, Width: 200, Height: 200, Weight: 100, Quantity: 1},
	}

	result := Estimate(items, classifyAll(items, testEnvelope()), testCatalog())

	if len(result.Containers) != 1 {
		t.Fatalf("expected a single container, got %d", len(result.Containers))
	}
	units := result.Containers[0].Units
	want := []string{"HEAVY#1", "LIGHT#1", "LIGHT2#1"}
	for i, id := range want {
		if units[i].UnitID != id {
			t.Fatalf("expected unit %s at position %d, got %s", id, i, units[i].UnitID)
		}
	}
}

func TestExpandUnits(t *testing.T) {
	t.Parallel()

	items := []CargoItem{{ID: "A", Length: 1, Width: 1, Height: 1, Weight: 1, Quantity: 3}}
	units := ExpandUnits(items)

	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}
	for i, unit := range units {
		if unit.Seq != i+1 {
			t.Fatalf("expected sequence %d, got %d", i+1, unit.Seq)
		}
	}
	if units[0].UnitID != "A#1" || units[2].UnitID != "A#3" {
		t.Fatalf("unexpected unit IDs: %v", units)
	}
}

func TestEstimateUtilization(t *testing.T) {
	t.Parallel()

	items := []CargoItem{
		{ID: "A", Length: 600, Width: 230, Height: 230, Weight: 10500, Quantity: 1},
	}

	result := Estimate(items, classifyAll(items, testEnvelope()), testCatalog())

	if len(result.Containers) != 1 {
		t.Fatalf("expected one container, got %d", len(result.Containers))
	}
	container := result.Containers[0]
	if want := 0.5; !almostEqual(container.VolumeUtilization(), want) {
		t.Fatalf("expected volume utilization %v, got %v", want, container.VolumeUtilization())
	}
	if want := 0.5; !almostEqual(container.WeightUtilization(), want) {
		t.Fatalf("expected weight utilization %v, got %v", want, container.WeightUtilization())
	}
	if !almostEqual(result.VolumeUtilization, 0.5) || !almostEqual(result.WeightUtilization, 0.5) {
		t.Fatalf("unexpected overall utilization: %v / %v", result.VolumeUtilization, result.WeightUtilization)
	}
}
