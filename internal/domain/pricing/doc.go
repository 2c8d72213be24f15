// Package pricing holds supplier quotes and the shared price book.
//
// Quotes are plates (width, height, cost) grouped by material. Two plates
// describe the same item when their dimensions match as an unordered pair,
// so a 3x5 sheet and a 5x3 sheet are one entry in the book.
//
// Example Usage:
//
//	book := pricing.NewBook()
//	book.Merge(pricing.PriceList{Material: 7, Plates: plates}, supplierID)
//	if book.IsComplete(7, supplierCount) {
//	    list := book.Get(7)
//	}
package pricing
