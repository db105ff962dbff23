// README: Goods and temperature compatibility rules.
package matching

import "cargoshare/internal/modules/shipment"

// DefaultTempOverlap is the minimum shared temperature band in degrees.
const DefaultTempOverlap = 2

// CompatibilityTable maps a goods type to the goods types it declares it can travel with.
// Edges are directional.
type CompatibilityTable map[shipment.GoodsType]map[shipment.GoodsType]struct{}

func NewCompatibilityTable(catalog shipment.Catalog) CompatibilityTable {
	t := make(CompatibilityTable, len(catalog))
	for _, g := range catalog {
		set := make(map[shipment.GoodsType]struct{}, len(g.Compatible))
		for _, other := range g.Compatible {
			set[other] = struct{}{}
		}
		t[g.Name] = set
	}
	return t
}

// Symmetrize returns a copy of t with every edge mirrored.
func (t CompatibilityTable) Symmetrize() CompatibilityTable {
	out := make(CompatibilityTable, len(t))
	add := func(a, b shipment.GoodsType) {
		set, ok := out[a]
		if !ok {
			set = make(map[shipment.GoodsType]struct{})
			out[a] = set
		}
		set[b] = struct{}{}
	}
	for a, set := range t {
		if _, ok := out[a]; !ok {
			out[a] = make(map[shipment.GoodsType]struct{}, len(set))
		}
		for b := range set {
			add(a, b)
			add(b, a)
		}
	}
	return out
}

// GoodsCompatible reports whether goods b may join a load of goods a.
func GoodsCompatible(a, b shipment.GoodsType, table CompatibilityTable) bool {
	if a == b {
		return true
	}
	_, ok := table[a][b]
	return ok
}

// TempCompatible reports whether the two ranges share at least overlapThreshold degrees.
func TempCompatible(a, b shipment.TemperatureRange, overlapThreshold int) bool {
	lo := max(a.Min, b.Min)
	hi := min(a.Max, b.Max)
	return hi-lo >= overlapThreshold
}
