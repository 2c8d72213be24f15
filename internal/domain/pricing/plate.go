package pricing

import "fmt"

// MaterialID identifies a material grade; quotes are grouped by material
type MaterialID uint32

// Plate is one supplier quote: a sheet size and its price
type Plate struct {
	W    uint32  `json:"w" yaml:"w" toml:"w"`
	H    uint32  `json:"h" yaml:"h" toml:"h"`
	Cost float64 `json:"cost" yaml:"cost" toml:"cost"`
}

// SameShape reports whether two plates have the same dimensions when
// rotation is allowed, i.e. {W,H} is equal as an unordered pair.
func (p Plate) SameShape(o Plate) bool {
	return (p.W == o.W && p.H == o.H) || (p.W == o.H && p.H == o.W)
}

// Area returns the plate surface
func (p Plate) Area() uint64 {
	return uint64(p.W) * uint64(p.H)
}

func (p Plate) String() string {
	return fmt.Sprintf("%dx%d@%.2f", p.W, p.H, p.Cost)
}

// PriceList is the set of plates a supplier offers for one material
type PriceList struct {
	Material MaterialID `json:"material" yaml:"material" toml:"material"`
	Plates   []Plate    `json:"plates" yaml:"plates" toml:"plates"`
}
