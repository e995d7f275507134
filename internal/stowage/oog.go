package stowage

// orientationKeys enumerates the six axis permutations of a cuboid.
var orientationKeys = []struct {
	a, b, c int
	key     string
}{
	{0, 1, 2, "LWH"},
	{0, 2, 1, "LHW"},
	{1, 0, 2, "WLH"},
	{1, 2, 0, "WHL"},
	{2, 0, 1, "HLW"},
	{2, 1, 0, "HWL"},
}

// Orientations returns the distinct axis permutations of an item. Items
// that may not be rotated yield only their declared orientation.
func Orientations(item CargoItem) []Orientation {
	if !item.RotateAllowed {
		return []Orientation{{Length: item.Length, Width: item.Width, Height: item.Height, Key: "LWH"}}
	}
	dims := [3]float64{item.Length, item.Width, item.Height}
	seen := make(map[[3]float64]struct{}, 6)
	result := make([]Orientation, 0, 6)
	for _, perm := range orientationKeys {
		oriented := [3]float64{dims[perm.a], dims[perm.b], dims[perm.c]}
		if _, dup := seen[oriented]; dup {
			continue
		}
		seen[oriented] = struct{}{}
		result = append(result, Orientation{
			Length: oriented[0],
			Width:  oriented[1],
			Height: oriented[2],
			Key:    perm.key,
		})
	}
	return result
}

// Classify compares a cargo item against the standard envelope and
// reports per-axis overage, protrusion volume and the minimal override
// container category that resolves the violation. When rotation is
// allowed, the orientation with the smallest total overage wins; ties
// keep the earlier permutation, so results are deterministic.
func Classify(item CargoItem, envelope ContainerType) OOGResult {
	best := Orientation{}
	bestScore := -1.0
	for _, orientation := range Orientations(item) {
		score := overage(orientation.Length, envelope.InnerLength) +
			overage(orientation.Width, envelope.InnerWidth) +
			overage(orientation.Height, envelope.InnerHeight)
		if bestScore < 0 || score < bestScore {
			best = orientation
			bestScore = score
		}
	}

	overL := overage(best.Length, envelope.InnerLength)
	overW := overage(best.Width, envelope.InnerWidth)
	overH := overage(best.Height, envelope.InnerHeight)

	var override Category
	switch {
	case overL > 0 || overW > 0:
		// Flat-rack subsumes open-top: it also absorbs any height overage.
		override = CategoryFlatRack
	case overH > 0:
		override = CategoryOpenTop
	}

	return OOGResult{
		ItemID:         item.ID,
		ReferenceType:  envelope.Name,
		OverLength:     overL,
		OverWidth:      overW,
		OverHeight:     overH,
		ProtrudeLength: overL * best.Width * best.Height / 1_000_000,
		ProtrudeWidth:  best.Length * overW * best.Height / 1_000_000,
		ProtrudeHeight: best.Length * best.Width * overH / 1_000_000,
		Orientation:    best,
		Override:       override,
	}
}

func overage(dim, inner float64) float64 {
	if dim > inner {
		return dim - inner
	}
	return 0
}
