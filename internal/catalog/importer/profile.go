package importer

import "strings"

// priceUnit determines how price cells are read.
type priceUnit int

const (
	// unitAuto reads bare integers as cents and decimals as major units.
	unitAuto priceUnit = iota
	// unitMajor reads every price as major units.
	unitMajor
)

// Profile describes the column layout of a product CSV.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name        string
	SKUCol      string
	NameCol     string
	CategoryCol string // optional; when empty the category is inferred from the name
	PriceCol    string
	PriceUnit   priceUnit
	// TitleCase normalises shouting upper-case names ("WHITE METAL LANTERN").
	TitleCase bool
	// Skip reports rows that are not products (postage, adjustments).
	Skip func(sku string) bool
	// Optional maps extra catalog columns by header name.
	Optional map[string]field
}

type field int

const (
	fieldDescription field = iota
	fieldCost
	fieldStock
	fieldReorder
	fieldUnit
	fieldSupplierName
	fieldSupplierContact
	fieldImageURL
	fieldActive
)

func (p Profile) requiredCols() []string {
	cols := []string{p.SKUCol, p.NameCol, p.PriceCol}
	if p.CategoryCol != "" {
		cols = append(cols, p.CategoryCol)
	}

	return cols
}

// profiles is the ordered list of layouts tried during auto-detection.
// More specific profiles come first.
var profiles = []Profile{
	{
		Name:        "catalog",
		SKUCol:      "sku",
		NameCol:     "name",
		CategoryCol: "category",
		PriceCol:    "price",
		PriceUnit:   unitAuto,
		Optional: map[string]field{
			"description":       fieldDescription,
			"cost":              fieldCost,
			"stock_quantity":    fieldStock,
			"reorder_threshold": fieldReorder,
			"unit":              fieldUnit,
			"supplier_name":     fieldSupplierName,
			"supplier_contact":  fieldSupplierContact,
			"image_url":         fieldImageURL,
			"is_active":         fieldActive,
		},
	},
	{
		Name:      "online retail",
		SKUCol:    "stockcode",
		NameCol:   "description",
		PriceCol:  "unitprice",
		PriceUnit: unitMajor,
		TitleCase: true,
		Skip: func(sku string) bool {
			return strings.Contains(strings.ToUpper(sku), "POST")
		},
	},
}

const defaultCategory = "General"

// categoryKeywords is checked in order; the first category with a keyword
// contained in the lower-cased product name wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Home Decor", []string{"t-light", "lantern", "light", "holder", "hanging", "decorative", "ornament"}},
	{"Kitchen", []string{"mug", "tea", "kitchen", "spoon", "towel", "bottle", "cup", "coaster"}},
	{"Toys & Games", []string{"jigsaw", "doll", "blocks", "game", "puzzle", "toy", "playhouse"}},
	{"Gifts & Accessories", []string{"bag", "gift", "sticker", "tape", "wrapping", "card"}},
	{"Seasonal", []string{"christmas", "valentine", "easter", "halloween"}},
	{"Office Supplies", []string{"pen", "pencil", "notebook", "folder", "file"}},
	{"Personal Care", []string{"soap", "shampoo", "toothpaste", "cream", "lotion"}},
}

func inferCategory(name string) string {
	lower := strings.ToLower(name)

	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}

	return defaultCategory
}
