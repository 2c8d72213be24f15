package pricing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/weldshop/internal/shared/id"
)

func TestSameShape(t *testing.T) {
	tests := []struct {
		name string
		a, b Plate
		want bool
	}{
		{"identical", Plate{W: 3, H: 5}, Plate{W: 3, H: 5}, true},
		{"rotated", Plate{W: 3, H: 5}, Plate{W: 5, H: 3}, true},
		{"square", Plate{W: 4, H: 4}, Plate{W: 4, H: 4}, true},
		{"different width", Plate{W: 3, H: 5}, Plate{W: 4, H: 5}, false},
		{"shared side only", Plate{W: 3, H: 5}, Plate{W: 5, H: 5}, false},
		{"cost ignored", Plate{W: 2, H: 4, Cost: 1}, Plate{W: 4, H: 2, Cost: 99}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.SameShape(tt.b))
			assert.Equal(t, tt.want, tt.b.SameShape(tt.a), "SameShape must be commutative")
		})
	}
}

func TestMergeTwoSuppliersScenario(t *testing.T) {
	book := NewBook()
	supplierA := id.NewSupplierID()
	supplierB := id.NewSupplierID()

	assert.False(t, book.IsComplete(1, 2))

	require.True(t, book.Merge(PriceList{Material: 1, Plates: []Plate{{W: 2, H: 4, Cost: 10}}}, supplierA))
	assert.False(t, book.IsComplete(1, 2), "one of two suppliers is not complete")

	require.True(t, book.Merge(PriceList{Material: 1, Plates: []Plate{{W: 4, H: 2, Cost: 7}}}, supplierB))
	assert.True(t, book.IsComplete(1, 2))

	assert.Equal(t, []Plate{{W: 2, H: 4, Cost: 7}}, book.Get(1).Plates)
}

func TestMergeKeepsMinimumCost(t *testing.T) {
	book := NewBook()

	book.Merge(PriceList{Material: 3, Plates: []Plate{{W: 5, H: 3, Cost: 4}}}, id.NewSupplierID())
	book.Merge(PriceList{Material: 3, Plates: []Plate{{W: 3, H: 5, Cost: 9}}}, id.NewSupplierID())

	assert.Equal(t, []Plate{{W: 5, H: 3, Cost: 4}}, book.Get(3).Plates)
}

func TestMergeIdempotentPerSupplier(t *testing.T) {
	book := NewBook()
	supplier := id.NewSupplierID()

	list := PriceList{Material: 9, Plates: []Plate{{W: 1, H: 2, Cost: 5}}}
	require.True(t, book.Merge(list, supplier))
	before := book.Get(9)

	cheaper := PriceList{Material: 9, Plates: []Plate{{W: 1, H: 2, Cost: 1}, {W: 8, H: 8, Cost: 1}}}
	assert.False(t, book.Merge(cheaper, supplier), "second submission from the same supplier is ignored")
	assert.False(t, book.Merge(list, supplier))

	assert.Equal(t, before, book.Get(9))
	assert.True(t, book.IsComplete(9, 1))
	assert.Equal(t, 1, book.Stats().Contributors)
}

func TestMergeDeduplicatesIncomingList(t *testing.T) {
	book := NewBook()

	book.Merge(PriceList{Material: 2, Plates: []Plate{
		{W: 2, H: 3, Cost: 8},
		{W: 3, H: 2, Cost: 6},
		{W: 2, H: 3, Cost: 7},
		{W: 1, H: 1, Cost: 1},
	}}, id.NewSupplierID())

	assert.Equal(t, []Plate{{W: 2, H: 3, Cost: 6}, {W: 1, H: 1, Cost: 1}}, book.Get(2).Plates)
}

func TestMergeAppendsNewShapes(t *testing.T) {
	book := NewBook()

	book.Merge(PriceList{Material: 4, Plates: []Plate{{W: 1, H: 2, Cost: 3}}}, id.NewSupplierID())
	book.Merge(PriceList{Material: 4, Plates: []Plate{{W: 2, H: 2, Cost: 5}, {W: 2, H: 1, Cost: 4}}}, id.NewSupplierID())

	assert.Equal(t, []Plate{{W: 1, H: 2, Cost: 3}, {W: 2, H: 2, Cost: 5}}, book.Get(4).Plates)
}

func TestEmptyListStillCounts(t *testing.T) {
	book := NewBook()
	supplier := id.NewSupplierID()

	book.Merge(PriceList{Material: 5}, supplier)

	assert.True(t, book.Contains(5))
	assert.True(t, book.HasContributor(5, supplier))
	assert.True(t, book.IsComplete(5, 1))
	assert.Empty(t, book.Get(5).Plates)
}

func TestCompletenessMonotonic(t *testing.T) {
	book := NewBook()
	suppliers := []id.SupplierID{id.NewSupplierID(), id.NewSupplierID()}

	for _, s := range suppliers {
		book.Merge(PriceList{Material: 6, Plates: []Plate{{W: 1, H: 1, Cost: 2}}}, s)
	}
	require.True(t, book.IsComplete(6, 2))

	for i := 0; i < 5; i++ {
		book.Merge(PriceList{Material: 6, Plates: []Plate{{W: uint32(i + 2), H: 1, Cost: 1}}}, suppliers[i%2])
		assert.True(t, book.IsComplete(6, 2))
	}
}

func TestContainsAndHasContributor(t *testing.T) {
	book := NewBook()
	supplier := id.NewSupplierID()

	assert.False(t, book.Contains(1))
	assert.False(t, book.HasContributor(1, supplier))

	book.Merge(PriceList{Material: 1}, supplier)

	assert.True(t, book.Contains(1))
	assert.True(t, book.HasContributor(1, supplier))
	assert.False(t, book.HasContributor(1, id.NewSupplierID()))
	assert.False(t, book.Contains(2))
}

func TestGetReturnsCopy(t *testing.T) {
	book := NewBook()
	book.Merge(PriceList{Material: 1, Plates: []Plate{{W: 1, H: 1, Cost: 1}}}, id.NewSupplierID())

	list := book.Get(1)
	list.Plates[0].Cost = 100

	assert.Equal(t, 1.0, book.Get(1).Plates[0].Cost)
}

func TestMergeDoesNotAliasInput(t *testing.T) {
	book := NewBook()
	plates := []Plate{{W: 1, H: 1, Cost: 1}}

	book.Merge(PriceList{Material: 1, Plates: plates}, id.NewSupplierID())
	plates[0].Cost = 50

	assert.Equal(t, 1.0, book.Get(1).Plates[0].Cost)
}

func TestMaterialsSorted(t *testing.T) {
	book := NewBook()
	for _, m := range []MaterialID{9, 2, 5} {
		book.Merge(PriceList{Material: m}, id.NewSupplierID())
	}

	assert.Equal(t, []MaterialID{2, 5, 9}, book.Materials())
}

func TestConcurrentMerges(t *testing.T) {
	book := NewBook()

	const suppliers = 32
	var wg sync.WaitGroup
	for i := 0; i < suppliers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			supplier := id.SupplierID(fmt.Sprintf("sup_%d", i))
			list := PriceList{Material: 1, Plates: []Plate{
				{W: 10, H: 20, Cost: float64(100 - i)},
				{W: uint32(i%4 + 1), H: 1, Cost: 1},
			}}
			book.Merge(list, supplier)
			book.Merge(list, supplier)
		}(i)
	}
	wg.Wait()

	assert.True(t, book.IsComplete(1, suppliers))

	plates := book.Get(1).Plates
	assert.Len(t, plates, 5, "one 10x20 class plus four 1xN classes")
	for _, p := range plates {
		if p.SameShape(Plate{W: 10, H: 20}) {
			assert.Equal(t, float64(100-(suppliers-1)), p.Cost)
		}
	}
}

func TestMergeCountReportsContributors(t *testing.T) {
	book := NewBook()
	a, b := id.NewSupplierID(), id.NewSupplierID()

	merged, n := book.MergeCount(PriceList{Material: 4}, a)
	assert.True(t, merged)
	assert.Equal(t, 1, n)

	merged, n = book.MergeCount(PriceList{Material: 4}, a)
	assert.False(t, merged)
	assert.Equal(t, 1, n)

	merged, n = book.MergeCount(PriceList{Material: 4}, b)
	assert.True(t, merged)
	assert.Equal(t, 2, n)
}
