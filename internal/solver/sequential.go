package solver

import (
	"github.com/GriffinCanCode/weldshop/internal/domain/order"
	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
)

// Sequential prices a single item with s, outside any pipeline.
// It returns the item's cost and leaves item untouched on error.
func Sequential(s Solver, prices pricing.PriceList, item *order.Item) (float64, error) {
	items := []order.Item{*item}
	if err := s.Solve(items, prices); err != nil {
		return 0, err
	}
	item.Cost = items[0].Cost
	return item.Cost, nil
}
