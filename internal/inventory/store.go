// Package inventory is the stock collaborator: it verifies and decrements
// stock for an order in one authoritative step, and restores it when the
// orchestrator compensates a failed payment.
package inventory

import "sync"

// Item mirrors the order line on the wire: product and quantity.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Store holds per-product stock counts. All operations are all-or-nothing
// under one mutex so concurrent checks cannot oversell.
type Store struct {
	mu    sync.Mutex
	stock map[string]int
}

// NewStore copies seed so callers cannot mutate the store from outside.
func NewStore(seed map[string]int) *Store {
	stock := make(map[string]int, len(seed))
	for id, qty := range seed {
		stock[id] = qty
	}
	return &Store{stock: stock}
}

// DefaultStock seeds the demo catalog, matching the product service's IDs.
func DefaultStock() map[string]int {
	return map[string]int{
		"p1": 10, "p2": 5, "p3": 8, "p4": 6, "p5": 12,
		"p6": 15, "p7": 20, "p8": 4, "p9": 9, "p10": 14,
	}
}

// Reserve verifies every item and, only if all are available, decrements the
// stock. It returns the first unavailable item otherwise, leaving the stock
// untouched.
func (s *Store) Reserve(items []Item) (offending *Item, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if s.stock[item.ProductID] < item.Quantity {
			out := item
			return &out, false
		}
	}
	for _, item := range items {
		s.stock[item.ProductID] -= item.Quantity
	}
	return nil, true
}

// Release restores previously reserved quantities.
func (s *Store) Release(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.stock[item.ProductID] += item.Quantity
	}
}

// Available reports the current stock of one product.
func (s *Store) Available(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[productID]
}
