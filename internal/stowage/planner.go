package stowage

// Planner sequences packaging-code resolution, OOG classification and
// the packing estimator. It holds no state beyond the injected mapper
// and performs no algorithmic work of its own.
type Planner struct {
	mapper *Mapper
}

// NewPlanner constructs a Planner around the given packaging mapper.
func NewPlanner(mapper *Mapper) *Planner {
	return &Planner{mapper: mapper}
}

// Plan validates the inputs, resolves packaging codes, classifies each
// item against the standard envelope and runs the estimator. Item IDs
// must be unique: classifications attach to units by item ID, so a
// duplicate would make them ambiguous.
//
// A ValidationError or ConfigurationError aborts the whole call;
// per-unit infeasibility does not — partial results are always returned
// so callers can act on the feasible subset. Plan operates on copies of
// its inputs and is safe to call concurrently.
func (p *Planner) Plan(items []CargoItem, catalog []ContainerType) (*PlanningResult, error) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[item.ID]; dup {
			return nil, &ValidationError{ItemID: item.ID, Field: "id", Reason: "duplicate record ID"}
		}
		seen[item.ID] = struct{}{}
	}
	for _, t := range catalog {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	envelope, ok := standardEnvelope(catalog)
	if !ok {
		return nil, &ConfigurationError{Reason: "catalog has no standard container type for the OOG baseline"}
	}

	resolved := make([]CargoItem, len(items))
	oogByItem := make(map[string]OOGResult, len(items))
	oogResults := make([]OOGResult, 0, len(items))
	for i, item := range items {
		resolution := p.mapper.Resolve(item.Packaging)
		item.PackagingCode = resolution.Code
		item.PackagingStatus = resolution.Status
		resolved[i] = item

		result := Classify(item, envelope)
		oogByItem[item.ID] = result
		oogResults = append(oogResults, result)
	}

	result := Estimate(resolved, oogByItem, catalog)
	result.OOG = oogResults
	return &result, nil
}

// standardEnvelope returns the first standard-category catalog entry,
// which serves as the OOG comparison baseline.
func standardEnvelope(catalog []ContainerType) (ContainerType, bool) {
	for _, t := range catalog {
		if t.Category == CategoryStandard {
			return t, true
		}
	}
	return ContainerType{}, false
}
