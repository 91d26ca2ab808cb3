package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// CategoriesFile is the category list expected at the root of a catalog
// directory.
const CategoriesFile = "product-db.json"

// Category describes one product database. ID doubles as the name of the
// catalog sub-directory.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// LoadCategories reads a JSON array of categories. Every category needs a
// non-empty id and label, and ids must be unique.
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	var cats []Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parsing categories %s: root array expected: %w", path, err)
	}
	seen := make(map[string]struct{}, len(cats))
	for i, c := range cats {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("category %d in %s has no id", i, path)
		}
		if strings.TrimSpace(c.Label) == "" {
			return nil, fmt.Errorf("no label for category with id %q", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	slog.Info("categories loaded", "path", path, "count", len(cats))
	return cats, nil
}
