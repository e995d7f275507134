// Package catalog holds the runtime-editable planning data: the
// container catalog and the packaging synonym table. Both ship with
// usable defaults and can be replaced through configuration files or
// the HTTP API without core changes.
package catalog

import (
	"errors"
	"sync"

	"github.com/eugenenazirov/stowage-planner/internal/stowage"
)

var (
	// ErrInvalidCatalog indicates the provided container catalog violates validation rules.
	ErrInvalidCatalog = errors.New("catalog must contain at least one valid container type")
	// ErrInvalidPackagingTable indicates the provided synonym table violates validation rules.
	ErrInvalidPackagingTable = errors.New("packaging table must contain at least one alias with a non-empty code")
)

// defaultCatalog uses ISO 668-style inner dimensions in centimeters,
// payloads and tare weights in kilograms, and relative cost units.
var defaultCatalog = []stowage.ContainerType{
	{
		Name:        "20GP",
		Category:    stowage.CategoryStandard,
		InnerLength: 589.8,
		InnerWidth:  235.2,
		InnerHeight: 239.3,
		MaxPayload:  28200,
		TareWeight:  2300,
		Cost:        1,
	},
	{
		Name:        "40GP",
		Category:    stowage.CategoryStandard,
		InnerLength: 1203.2,
		InnerWidth:  235.2,
		InnerHeight: 239.3,
		MaxPayload:  26700,
		TareWeight:  3800,
		Cost:        1.6,
	},
	{
		Name:        "40HC",
		Category:    stowage.CategoryStandard,
		InnerLength: 1203.2,
		InnerWidth:  235.2,
		InnerHeight: 269.7,
		MaxPayload:  26500,
		TareWeight:  3900,
		Cost:        1.8,
	},
	{
		Name:        "OT",
		Category:    stowage.CategoryOpenTop,
		InnerLength: 1202.9,
		InnerWidth:  234.2,
		InnerHeight: 233.8,
		MaxPayload:  26600,
		TareWeight:  4200,
		Cost:        2.5,
	},
	{
		Name:        "FR",
		Category:    stowage.CategoryFlatRack,
		InnerLength: 1180.0,
		InnerWidth:  223.0,
		InnerHeight: 197.0,
		MaxPayload:  39300,
		TareWeight:  5500,
		Cost:        3.2,
	},
}

// defaultPackagingTable maps common packaging spellings to UN/ECE
// Recommendation 21 style codes.
var defaultPackagingTable = map[string]string{
	"bag":         "BG",
	"bale":        "BL",
	"box":         "BX",
	"carton":      "CT",
	"case":        "CS",
	"crate":       "CR",
	"drum":        "DR",
	"package":     "PK",
	"pallet":      "PL",
	"roll":        "RO",
	"skid":        "SI",
	"wooden case": "CS",
}

// Store provides access to the container catalog and packaging table
// used by the planner.
type Store interface {
	Catalog() ([]stowage.ContainerType, error)
	SetCatalog(types []stowage.ContainerType) error
	PackagingTable() (map[string]string, error)
	SetPackagingTable(table map[string]string) error
}

// MemoryStore keeps both data sets in memory and guards access with a
// RWMutex. Readers receive defensive copies.
type MemoryStore struct {
	mu    sync.RWMutex
	types []stowage.ContainerType
	table map[string]string
}

// NewMemoryStore initialises the store with copies of the defaults.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		types: cloneCatalog(defaultCatalog),
		table: cloneTable(defaultPackagingTable),
	}
}

// DefaultCatalog returns a copy of the built-in container catalog.
func DefaultCatalog() []stowage.ContainerType {
	return cloneCatalog(defaultCatalog)
}

// DefaultPackagingTable returns a copy of the built-in synonym table.
func DefaultPackagingTable() map[string]string {
	return cloneTable(defaultPackagingTable)
}

// Catalog returns a defensive copy of the current container catalog.
func (s *MemoryStore) Catalog() ([]stowage.ContainerType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneCatalog(s.types), nil
}

// SetCatalog validates and stores a new container catalog. Catalog
// order is preserved: it is the tie-break for new-container selection.
func (s *MemoryStore) SetCatalog(types []stowage.ContainerType) error {
	if len(types) == 0 {
		return ErrInvalidCatalog
	}
	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return ErrInvalidCatalog
		}
		seen[t.Name] = struct{}{}
	}

	s.mu.Lock()
	s.types = cloneCatalog(types)
	s.mu.Unlock()

	return nil
}

// PackagingTable returns a defensive copy of the current synonym table.
func (s *MemoryStore) PackagingTable() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTable(s.table), nil
}

// SetPackagingTable validates and stores a new synonym table.
func (s *MemoryStore) SetPackagingTable(table map[string]string) error {
	if len(table) == 0 {
		return ErrInvalidPackagingTable
	}
	for alias, code := range table {
		if alias == "" || code == "" {
			return ErrInvalidPackagingTable
		}
	}

	s.mu.Lock()
	s.table = cloneTable(table)
	s.mu.Unlock()

	return nil
}

func cloneCatalog(src []stowage.ContainerType) []stowage.ContainerType {
	out := make([]stowage.ContainerType, len(src))
	copy(out, src)
	for i := range out {
		if len(src[i].PackagingCodes) > 0 {
			out[i].PackagingCodes = append([]string(nil), src[i].PackagingCodes...)
		}
	}
	return out
}

func cloneTable(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for alias, code := range src {
		out[alias] = code
	}
	return out
}
