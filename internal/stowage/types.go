package stowage

import "fmt"

// Dimension and weight ceilings applied during item validation. Records
// beyond these are almost certainly unit-conversion mistakes upstream.
const (
	MaxDimensionCM = 20000
	MaxWeightKG    = 100000
	MaxQuantity    = 10000
)

// Category classifies a container type by its loading capability.
type Category string

const (
	// CategoryStandard covers general-purpose dry containers, including
	// high-cube variants. They never accept out-of-gauge cargo.
	CategoryStandard Category = "standard"
	// CategoryOpenTop containers have no roof and accept height overage.
	CategoryOpenTop Category = "open-top"
	// CategoryFlatRack containers have no roof or side walls and accept
	// overage on any axis.
	CategoryFlatRack Category = "flat-rack"
	// CategoryReefer covers refrigerated containers. They follow standard
	// envelope rules but are recommended for temperature-sensitive cargo.
	CategoryReefer Category = "reefer"
)

// CargoItem is a single cargo record as supplied by the IO normalizer.
// Dimensions are centimeters, weight is kilograms. Quantity groups
// identical units into one record; the estimator expands it.
// PackagingCode and PackagingStatus are empty until the Mapper runs.
type CargoItem struct {
	ID              string
	Description     string
	Length          float64
	Width           float64
	Height          float64
	Weight          float64
	Quantity        int
	Packaging       string
	PackagingCode   string
	PackagingStatus CodeStatus
	RotateAllowed   bool
}

// Volume returns the per-unit volume in cubic meters.
func (c CargoItem) Volume() float64 {
	return c.Length * c.Width * c.Height / 1_000_000
}

// Validate checks the item invariants and reports the first violation.
func (c CargoItem) Validate() error {
	if c.ID == "" {
		return &ValidationError{ItemID: c.ID, Field: "id", Reason: "must not be empty"}
	}
	checks := []struct {
		field string
		value float64
		max   float64
	}{
		{"length", c.Length, MaxDimensionCM},
		{"width", c.Width, MaxDimensionCM},
		{"height", c.Height, MaxDimensionCM},
		{"weight", c.Weight, MaxWeightKG},
		{"quantity", float64(c.Quantity), MaxQuantity},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return &ValidationError{ItemID: c.ID, Field: check.field, Reason: "must be positive"}
		}
		if check.value > check.max {
			return &ValidationError{
				ItemID: c.ID,
				Field:  check.field,
				Reason: fmt.Sprintf("exceeds limit %v", check.max),
			}
		}
	}
	return nil
}

// ContainerType describes one entry of the container catalog. Inner
// dimensions are centimeters, payload is kilograms. Cost is a relative
// unit used to pick the cheapest type when opening a new container.
// An empty PackagingCodes set accepts every packaging code.
type ContainerType struct {
	Name           string
	Category       Category
	InnerLength    float64
	InnerWidth     float64
	InnerHeight    float64
	MaxPayload     float64
	TareWeight     float64
	Cost           float64
	PackagingCodes []string
}

// UsableVolume returns the inner volume in cubic meters.
func (t ContainerType) UsableVolume() float64 {
	return t.InnerLength * t.InnerWidth * t.InnerHeight / 1_000_000
}

// AcceptsPackaging reports whether cargo with the given packaging code
// may be loaded. The unspecified code is accepted everywhere.
func (t ContainerType) AcceptsPackaging(code string) bool {
	if len(t.PackagingCodes) == 0 || code == "" || code == CodeUnspecified {
		return true
	}
	for _, accepted := range t.PackagingCodes {
		if accepted == code {
			return true
		}
	}
	return false
}

// AcceptsOverride reports whether this type can carry cargo that needs
// the given OOG override category. Flat-rack capability subsumes
// open-top; standard and reefer types take in-gauge cargo only.
func (t ContainerType) AcceptsOverride(override Category) bool {
	switch override {
	case "":
		return true
	case CategoryOpenTop:
		return t.Category == CategoryOpenTop || t.Category == CategoryFlatRack
	case CategoryFlatRack:
		return t.Category == CategoryFlatRack
	default:
		return false
	}
}

// Validate checks the catalog-entry invariants.
func (t ContainerType) Validate() error {
	if t.Name == "" {
		return &ValidationError{ItemID: t.Name, Field: "name", Reason: "must not be empty"}
	}
	checks := []struct {
		field string
		value float64
	}{
		{"inner length", t.InnerLength},
		{"inner width", t.InnerWidth},
		{"inner height", t.InnerHeight},
		{"max payload", t.MaxPayload},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return &ValidationError{ItemID: t.Name, Field: check.field, Reason: "must be positive"}
		}
	}
	return nil
}

// CargoUnit is one physical piece after quantity expansion. UnitID is
// "<item id>#<n>" with n starting at 1.
type CargoUnit struct {
	UnitID string
	ItemID string
	Seq    int
	Item   CargoItem
}

// Volume returns the unit volume in cubic meters.
func (u CargoUnit) Volume() float64 { return u.Item.Volume() }

// ContainerInstance is one opened container and its running budgets.
// Instances are created and mutated inside a single Estimate call and
// are read-only in the returned PlanningResult.
type ContainerInstance struct {
	Type            ContainerType
	Index           int
	RemainingVolume float64
	RemainingWeight float64
	Units           []CargoUnit
}

// Label renders a human-readable container identifier such as "40HC #2".
func (c ContainerInstance) Label() string {
	return fmt.Sprintf("%s #%d", c.Type.Name, c.Index)
}

// ConsumedVolume returns the assigned volume in cubic meters.
func (c ContainerInstance) ConsumedVolume() float64 {
	return c.Type.UsableVolume() - c.RemainingVolume
}

// ConsumedWeight returns the assigned weight in kilograms.
func (c ContainerInstance) ConsumedWeight() float64 {
	return c.Type.MaxPayload - c.RemainingWeight
}

// VolumeUtilization returns consumed volume / usable volume.
func (c ContainerInstance) VolumeUtilization() float64 {
	return c.ConsumedVolume() / c.Type.UsableVolume()
}

// WeightUtilization returns consumed weight / max payload.
func (c ContainerInstance) WeightUtilization() float64 {
	return c.ConsumedWeight() / c.Type.MaxPayload
}

// OOGResult records the out-of-gauge classification of one cargo item
// against the standard envelope. Overages are the strictly-exceeding
// portion per axis in centimeters; protrusion volumes estimate the
// cargo volume sticking out of the envelope per axis in cubic meters.
type OOGResult struct {
	ItemID         string
	ReferenceType  string
	OverLength     float64
	OverWidth      float64
	OverHeight     float64
	ProtrudeLength float64
	ProtrudeWidth  float64
	ProtrudeHeight float64
	Orientation    Orientation
	Override       Category
}

// Flagged reports whether any axis exceeds the standard envelope.
func (r OOGResult) Flagged() bool {
	return r.OverLength > 0 || r.OverWidth > 0 || r.OverHeight > 0
}

// Orientation is one axis permutation of a cargo item, identified by a
// rotation key such as "LWH" or "HWL".
type Orientation struct {
	Length float64
	Width  float64
	Height float64
	Key    string
}

// PlanningResult is the aggregate output of one plan call, assembled by
// the Planner and immutable once returned.
type PlanningResult struct {
	Containers        []ContainerInstance
	Infeasible        []CargoUnit
	OOG               []OOGResult
	VolumeUtilization float64
	WeightUtilization float64
}
