package pricing

import (
	"sort"
	"sync"

	"github.com/GriffinCanCode/weldshop/internal/shared/id"
)

// Book aggregates supplier price lists per material.
//
// For every material the book keeps the set of suppliers that have
// contributed and one merged plate list holding a single entry per shape,
// priced at the lowest cost any supplier quoted for it. A material is
// complete once every registered supplier has contributed; contributors are
// never removed, so completeness is monotonic.
//
// The book's own lock serialises merges. A Merge that returns is visible to
// every later IsComplete, Contains and Get.
type Book struct {
	mu      sync.RWMutex
	entries map[MaterialID]*entry // Protected by mu
}

type entry struct {
	contributors map[id.SupplierID]struct{}
	plates       []Plate
}

// BookStats is a point-in-time summary of the book
type BookStats struct {
	Materials    int `json:"materials"`
	Plates       int `json:"plates"`
	Contributors int `json:"contributors"`
}

// NewBook creates an empty price book
func NewBook() *Book {
	return &Book{
		entries: make(map[MaterialID]*entry),
	}
}

// Contains reports whether any supplier has contributed for material
func (b *Book) Contains(material MaterialID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.entries[material]
	return ok
}

// HasContributor reports whether supplier already contributed for material
func (b *Book) HasContributor(material MaterialID, supplier id.SupplierID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[material]
	if !ok {
		return false
	}
	_, ok = e.contributors[supplier]
	return ok
}

// IsComplete reports whether exactly totalSuppliers suppliers have
// contributed for material.
func (b *Book) IsComplete(material MaterialID, totalSuppliers int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[material]
	if !ok {
		return false
	}
	return len(e.contributors) == totalSuppliers
}

// Get returns a copy of the merged plate list for material
func (b *Book) Get(material MaterialID) PriceList {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := PriceList{Material: material}
	if e, ok := b.entries[material]; ok {
		list.Plates = make([]Plate, len(e.plates))
		copy(list.Plates, e.plates)
	}
	return list
}

// Merge folds a supplier's price list into the book.
//
// A supplier contributes at most once per material: a repeated submission is
// ignored and Merge returns false. Otherwise each incoming plate is matched
// by shape against the merged list; a match keeps the lower cost (and the
// orientation already stored), a miss appends the plate. The supplier is then
// recorded as a contributor and Merge returns true.
func (b *Book) Merge(list PriceList, supplier id.SupplierID) bool {
	merged, _ := b.MergeCount(list, supplier)
	return merged
}

// MergeCount is Merge that also returns the number of contributors for the
// material right after this submission. Exactly one merging submission sees
// any given count.
func (b *Book) MergeCount(list PriceList, supplier id.SupplierID) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[list.Material]
	if !ok {
		e = &entry{contributors: make(map[id.SupplierID]struct{})}
		b.entries[list.Material] = e
	}

	if _, seen := e.contributors[supplier]; seen {
		return false, len(e.contributors)
	}

	for _, incoming := range list.Plates {
		e.plates = mergePlate(e.plates, incoming)
	}
	e.contributors[supplier] = struct{}{}

	return true, len(e.contributors)
}

// mergePlate merges one plate into plates by shape, keeping the minimum cost
func mergePlate(plates []Plate, incoming Plate) []Plate {
	for i := range plates {
		if plates[i].SameShape(incoming) {
			if incoming.Cost < plates[i].Cost {
				plates[i].Cost = incoming.Cost
			}
			return plates
		}
	}
	return append(plates, incoming)
}

// Materials returns every material with at least one contribution, sorted
func (b *Book) Materials() []MaterialID {
	b.mu.RLock()
	defer b.mu.RUnlock()

	materials := make([]MaterialID, 0, len(b.entries))
	for m := range b.entries {
		materials = append(materials, m)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i] < materials[j] })
	return materials
}

// Stats returns book statistics
func (b *Book) Stats() BookStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := BookStats{Materials: len(b.entries)}
	for _, e := range b.entries {
		stats.Plates += len(e.plates)
		stats.Contributors += len(e.contributors)
	}
	return stats
}
