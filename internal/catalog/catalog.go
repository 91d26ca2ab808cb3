// Package catalog loads reference products into immutable, ordered
// catalogs. Items are loaded once at startup from a JSON directory, a
// CSV/XLSX sheet or PostgreSQL and never mutated afterwards except for the
// derived fields filled in by preprocessing.
package catalog

import (
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

// Catalog is an ordered product list for one category.
type Catalog struct {
	name  string
	items []*item.Item
}

func New(name string, items []*item.Item) *Catalog {
	return &Catalog{name: name, items: items}
}

func (c *Catalog) Name() string { return c.name }

func (c *Catalog) Len() int { return len(c.items) }

// Items returns the backing slice. Callers must not modify it.
func (c *Catalog) Items() []*item.Item { return c.items }
