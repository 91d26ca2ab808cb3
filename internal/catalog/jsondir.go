package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/specs"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

const itemFilePattern = "item-*.json"

type jsonRecord struct {
	ItemID        json.RawMessage `json:"ItemID"`
	Title         *string         `json:"Title"`
	Description   *string         `json:"Description"`
	GalleryURL    string          `json:"GalleryURL"`
	PictureURL    json.RawMessage `json:"PictureURL"`
	ItemSpecifics *struct {
		NameValueList json.RawMessage `json:"NameValueList"`
	} `json:"ItemSpecifics"`
}

type nameValue struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// LoadJSONDir walks dir recursively and loads every item-*.json file, one
// product per file, in lexical path order. Files that cannot be read or
// parsed are logged and skipped.
func LoadJSONDir(dir string) (*Catalog, error) {
	logger := slog.Default().With("component", "catalog-loader", "dir", dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is not a directory", dir)
	}

	var items []*item.Item
	skipped := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(itemFilePattern, d.Name()); !ok {
			return nil
		}
		it, err := loadItemFile(path)
		if err != nil {
			skipped++
			logger.Warn("skipping catalog item", "path", path, "error", err)
			return nil
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking catalog dir %s: %w", dir, err)
	}
	logger.Info("catalog loaded", "items", len(items), "skipped", skipped)
	return New(filepath.Base(dir), items), nil
}

func loadItemFile(path string) (*item.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogItemLoad, err)
	}
	it, err := DecodeJSONItem(data)
	if err != nil {
		return nil, err
	}
	it.Source = path
	return it, nil
}

// DecodeJSONItem parses one product record.
func DecodeJSONItem(data []byte) (*item.Item, error) {
	var rec jsonRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogItemLoad, err)
	}
	id := scalarString(rec.ItemID)
	if id == "" {
		return nil, fmt.Errorf("%w: %w: ItemID", apperrors.ErrCatalogItemLoad, apperrors.ErrMissingRequiredField)
	}
	var raw map[string]any
	if rec.ItemSpecifics != nil {
		var err error
		if raw, err = nameValues(rec.ItemSpecifics.NameValueList); err != nil {
			return nil, fmt.Errorf("%w: item %s: %v", apperrors.ErrCatalogItemLoad, id, err)
		}
	}
	parsed, err := specs.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: %v", apperrors.ErrCatalogItemLoad, id, err)
	}
	pictures, err := stringList(rec.PictureURL)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: PictureURL: %v", apperrors.ErrCatalogItemLoad, id, err)
	}

	it := item.New(rec.Title, parsed, rec.Description)
	it.ID = id
	it.GalleryURL = rec.GalleryURL
	it.PictureURL = pictures
	return it, nil
}

// nameValues accepts NameValueList as a single {Name, Value} object or a
// list of them. Value may be a string or a list of strings.
func nameValues(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var list []nameValue
	if raw[0] == '{' {
		var one nameValue
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		list = []nameValue{one}
	} else if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(list))
	for _, nv := range list {
		if strings.TrimSpace(nv.Name) == "" {
			continue
		}
		var v any
		if err := json.Unmarshal(nv.Value, &v); err != nil {
			return nil, fmt.Errorf("value of %q: %w", nv.Name, err)
		}
		out[nv.Name] = v
	}
	return out, nil
}

// stringList accepts a string or a list of strings and always returns a list.
func stringList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// scalarString renders a JSON string or number as a plain string.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}
