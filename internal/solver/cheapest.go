// Package solver prices order items against a merged price list.
//
// Cheapest covers every item with copies of a single plate type, in either
// orientation, cutting the last row and column to size and welding the
// pieces together. Welding costs the item's strength per unit of seam.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/GriffinCanCode/weldshop/internal/domain/order"
	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
)

var (
	ErrNoPrices    = errors.New("price list has no usable plates")
	ErrInvalidItem = errors.New("item has zero width or height")
)

// IsInputError reports whether err describes a bad order or an unusable
// price list rather than a fault in the solver itself
func IsInputError(err error) bool {
	return errors.Is(err, ErrNoPrices) || errors.Is(err, ErrInvalidItem)
}

// Solver is the contract every solver in this package satisfies
type Solver interface {
	Solve(items []order.Item, prices pricing.PriceList) error
}

// Cheapest writes each item's lowest tiling cost
type Cheapest struct{}

// Solve implements Solver
func (Cheapest) Solve(items []order.Item, prices pricing.PriceList) error {
	plates := usable(prices.Plates)
	if len(plates) == 0 {
		return fmt.Errorf("material %d: %w", prices.Material, ErrNoPrices)
	}

	for i := range items {
		cost, err := cheapest(items[i], plates)
		if err != nil {
			return fmt.Errorf("item %d (%dx%d): %w", i, items[i].W, items[i].H, err)
		}
		items[i].Cost = cost
	}
	return nil
}

// Quote returns the cost of covering a w x h item with plate p laid as given
func Quote(w, h uint32, strength float64, p pricing.Plate) float64 {
	cols := ceilDiv(w, p.W)
	rows := ceilDiv(h, p.H)

	seams := float64(cols-1)*float64(h) + float64(rows-1)*float64(w)
	return float64(cols*rows)*p.Cost + strength*seams
}

func cheapest(it order.Item, plates []pricing.Plate) (float64, error) {
	if it.W == 0 || it.H == 0 {
		return 0, ErrInvalidItem
	}

	best := math.Inf(1)
	for _, p := range plates {
		best = math.Min(best, Quote(it.W, it.H, it.WeldingStrength, p))
		if p.W != p.H {
			rotated := pricing.Plate{W: p.H, H: p.W, Cost: p.Cost}
			best = math.Min(best, Quote(it.W, it.H, it.WeldingStrength, rotated))
		}
	}
	return best, nil
}

func usable(plates []pricing.Plate) []pricing.Plate {
	out := make([]pricing.Plate, 0, len(plates))
	for _, p := range plates {
		if p.W > 0 && p.H > 0 && p.Cost >= 0 {
			out = append(out, p)
		}
	}
	return out
}

func ceilDiv(a, b uint32) uint64 {
	return (uint64(a) + uint64(b) - 1) / uint64(b)
}
