package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/specs"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/resilience"
)

// Schema creates the product table read by LoadPostgres.
const Schema = `
CREATE TABLE IF NOT EXISTS catalog_items (
	category     TEXT    NOT NULL,
	position     INTEGER NOT NULL,
	item_id      TEXT    NOT NULL,
	title        TEXT,
	specifics    JSONB   NOT NULL DEFAULT '{}',
	description  TEXT,
	gallery_url  TEXT    NOT NULL DEFAULT '',
	picture_urls TEXT[]  NOT NULL DEFAULT '{}',
	PRIMARY KEY (category, item_id)
);
CREATE INDEX IF NOT EXISTS catalog_items_order ON catalog_items (category, position);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}
	return nil
}

// LoadPostgres reads the products of one category ordered by position.
// Transient query failures are retried; rows with unreadable specifics are
// logged and skipped.
func LoadPostgres(ctx context.Context, db *sql.DB, category string) (*Catalog, error) {
	logger := slog.Default().With("component", "catalog-loader", "category", category)
	var items []*item.Item
	skipped := 0
	err := resilience.Retry(ctx, "load catalog "+category, resilience.RetryConfig{}, func() error {
		items, skipped = nil, 0
		rows, err := db.QueryContext(ctx,
			`SELECT item_id, title, specifics, description, gallery_url, picture_urls
			FROM catalog_items WHERE category = $1 ORDER BY position, item_id`, category)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				id, gallery string
				title, desc sql.NullString
				rawSpecs    []byte
				pictureURLs pq.StringArray
			)
			if err := rows.Scan(&id, &title, &rawSpecs, &desc, &gallery, &pictureURLs); err != nil {
				return err
			}
			var m map[string]any
			if err := json.Unmarshal(rawSpecs, &m); err != nil {
				skipped++
				logger.Warn("skipping catalog item", "item_id", id,
					"error", fmt.Errorf("%w: specifics: %v", apperrors.ErrCatalogItemLoad, err))
				continue
			}
			parsed, err := specs.Parse(m)
			if err != nil {
				skipped++
				logger.Warn("skipping catalog item", "item_id", id, "error", err)
				continue
			}
			it := item.New(nullable(title), parsed, nullable(desc))
			it.ID = id
			it.GalleryURL = gallery
			it.PictureURL = []string(pictureURLs)
			it.Source = "postgres:" + category
			items = append(items, it)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s from postgres: %w", category, err)
	}
	logger.Info("catalog loaded", "items", len(items), "skipped", skipped)
	return New(category, items), nil
}

// StoreItems replaces the products of a category inside one transaction.
func StoreItems(ctx context.Context, tx *sql.Tx, category string, items []*item.Item) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_items WHERE category = $1`, category); err != nil {
		return fmt.Errorf("clearing category %s: %w", category, err)
	}
	for pos, it := range items {
		pictures := it.PictureURL
		if pictures == nil {
			pictures = []string{}
		}
		raw, err := json.Marshal(it.Specs)
		if err != nil {
			return fmt.Errorf("encoding specifics of %s: %w", it.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO catalog_items (category, position, item_id, title, specifics, description, gallery_url, picture_urls)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			category, pos, it.ID, it.Title, string(raw), it.Description, it.GalleryURL, pq.Array(pictures))
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", it.ID, err)
		}
	}
	return nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return item.Text(s.String)
}
