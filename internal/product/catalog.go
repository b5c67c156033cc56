// Package product is the static catalog collaborator the gateway routes
// browse traffic to. Catalog storage and search are external concerns; this
// is a fixed in-memory list.
package product

// Product is one catalog entry.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	// Price in minor units (cents).
	Price int `json:"price"`
	Stock int `json:"stock"`
}

// Catalog returns the demo product list. IDs line up with the inventory
// service's default stock.
func Catalog() []Product {
	return []Product{
		{ID: "p1", Name: "iPhone 14", Category: "electronics", Description: "Super Retina XDR display, A15 Bionic chip, dual-camera system.", Price: 99999, Stock: 10},
		{ID: "p2", Name: "MacBook Air M2", Category: "electronics", Description: "Apple M2 chip in a fanless design with a Liquid Retina display.", Price: 119900, Stock: 5},
		{ID: "p3", Name: "Sony WH-1000XM5", Category: "electronics", Description: "Industry-leading noise cancelling over-ear headphones.", Price: 34999, Stock: 8},
		{ID: "p4", Name: "Kindle Paperwhite", Category: "electronics", Description: "Glare-free display with adjustable warm light.", Price: 13999, Stock: 6},
		{ID: "p5", Name: "Nintendo Switch OLED", Category: "gaming", Description: "7-inch OLED screen, enhanced audio, 64 GB storage.", Price: 34999, Stock: 12},
		{ID: "p6", Name: "Logitech MX Master 3S", Category: "accessories", Description: "Quiet clicks and an 8K DPI sensor for precision work.", Price: 9999, Stock: 15},
		{ID: "p7", Name: "Anker 737 Power Bank", Category: "accessories", Description: "24,000 mAh capacity with 140W fast charging.", Price: 14999, Stock: 20},
		{ID: "p8", Name: "iPad Air", Category: "electronics", Description: "10.9-inch Liquid Retina display with the M1 chip.", Price: 59900, Stock: 4},
		{ID: "p9", Name: "Samsung T7 SSD 1TB", Category: "accessories", Description: "Portable USB 3.2 solid state drive.", Price: 10999, Stock: 9},
		{ID: "p10", Name: "Raspberry Pi 5", Category: "electronics", Description: "Quad-core single-board computer, 8 GB RAM.", Price: 7999, Stock: 14},
	}
}
