// Package catalog loads the static product list and slices it by category.
package catalog

import "strings"

type Product struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// FilterByCategory returns the products whose category matches, preserving
// catalog order. An unknown category yields an empty slice.
func FilterByCategory(products []Product, category string) []Product {
	var out []Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories in catalog order.
func Categories(products []Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// CardID derives the key that joins a product card, its selection chip and
// the selection store: the product name with spaces and "&" stripped.
// Names differing only in those characters collapse to the same ID; that
// collision is a known constraint of the scheme, kept as is.
func CardID(name string) string {
	s := strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(s, "&", "")
}
