// Package db provides the embedded database schema and the demo catalog
// seed data.
package db

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/glowshelf/storefront/internal/domain/catalog"
)

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// seedProducts is the fixed demo catalog, populated on first startup
// when the products table is empty.
//
//go:embed seed/products.json
var seedProducts []byte

// DemoCatalog decodes the embedded demo catalog.
func DemoCatalog() ([]catalog.Product, error) {
	var products []catalog.Product
	if err := json.Unmarshal(seedProducts, &products); err != nil {
		return nil, fmt.Errorf("decoding embedded demo catalog: %w", err)
	}
	return products, nil
}
