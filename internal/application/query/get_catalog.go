package query

import (
	"context"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CATALOG QUERY
// Returns the achievement catalog grouped by category for /achievements and
// for the wizard keyboards.
// ══════════════════════════════════════════════════════════════════════════════

// CatalogCategory is one category with its achievements in display order.
type CatalogCategory struct {
	// Name is the category name.
	Name string

	// Items holds the achievements of this category.
	Items []achievement.Definition
}

// GetCatalogHandler handles the catalog query.
type GetCatalogHandler struct {
	catalog *achievement.Catalog
}

// NewGetCatalogHandler creates a new GetCatalogHandler.
func NewGetCatalogHandler(catalog *achievement.Catalog) *GetCatalogHandler {
	return &GetCatalogHandler{catalog: catalog}
}

// Handle returns the catalog grouped by category, in catalog order.
func (h *GetCatalogHandler) Handle(_ context.Context) ([]CatalogCategory, error) {
	if h.catalog == nil || h.catalog.Size() == 0 {
		return nil, fmt.Errorf("get_catalog: %w", achievement.ErrCatalogNotLoaded)
	}

	groups := make([]CatalogCategory, 0, len(h.catalog.Categories()))
	for _, name := range h.catalog.Categories() {
		groups = append(groups, CatalogCategory{
			Name:  name,
			Items: h.catalog.ByCategory(name),
		})
	}
	return groups, nil
}
