// README: Default goods catalog used when no catalog is stored in Postgres.
package shipment

// DefaultCatalog returns the twenty-category catalog the fixtures are generated from.
// Compatibility lists are declared per category and are not guaranteed to mirror each other.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "Garments", Temp: TemperatureRange{15, 25}, Compatible: []GoodsType{"Footwear", "Accessories", "Textiles"}},
		{Name: "Footwear", Temp: TemperatureRange{15, 25}, Compatible: []GoodsType{"Garments", "Accessories", "Textiles"}},
		{Name: "Electronics", Temp: TemperatureRange{10, 30}, Compatible: []GoodsType{"Appliances", "Accessories"}},
		{Name: "Pharmaceuticals", Temp: TemperatureRange{2, 8}, Compatible: []GoodsType{"Medical Supplies"}},
		{Name: "Frozen Food", Temp: TemperatureRange{-25, -15}, Compatible: []GoodsType{"Refrigerated Food"}},
		{Name: "Refrigerated Food", Temp: TemperatureRange{0, 5}, Compatible: []GoodsType{"Frozen Food"}},
		{Name: "Dry Food", Temp: TemperatureRange{10, 25}, Compatible: []GoodsType{"Beverages", "Packaged Goods"}},
		{Name: "Beverages", Temp: TemperatureRange{5, 25}, Compatible: []GoodsType{"Dry Food", "Packaged Goods"}},
		{Name: "Furniture", Temp: TemperatureRange{10, 35}, Compatible: []GoodsType{"Home Decor", "Building Materials"}},
		{Name: "Automotive Parts", Temp: TemperatureRange{0, 35}, Compatible: []GoodsType{"Industrial Equipment", "Machinery"}},
		{Name: "Medical Supplies", Temp: TemperatureRange{2, 25}, Compatible: []GoodsType{"Pharmaceuticals"}},
		{Name: "Hazardous Materials", Temp: TemperatureRange{5, 30}, Compatible: nil},
		{Name: "Building Materials", Temp: TemperatureRange{0, 40}, Compatible: []GoodsType{"Furniture", "Home Decor"}},
		{Name: "Industrial Equipment", Temp: TemperatureRange{0, 40}, Compatible: []GoodsType{"Machinery", "Automotive Parts"}},
		{Name: "Textiles", Temp: TemperatureRange{15, 30}, Compatible: []GoodsType{"Garments", "Accessories"}},
		{Name: "Accessories", Temp: TemperatureRange{15, 30}, Compatible: []GoodsType{"Garments", "Footwear", "Textiles"}},
		{Name: "Machinery", Temp: TemperatureRange{0, 40}, Compatible: []GoodsType{"Industrial Equipment", "Automotive Parts"}},
		{Name: "Packaged Goods", Temp: TemperatureRange{10, 25}, Compatible: []GoodsType{"Dry Food", "Beverages"}},
		{Name: "Home Decor", Temp: TemperatureRange{10, 35}, Compatible: []GoodsType{"Furniture", "Building Materials"}},
		{Name: "Appliances", Temp: TemperatureRange{10, 35}, Compatible: []GoodsType{"Electronics"}},
	}
}
