package repository

import (
	"context"

	"github.com/mearah/craftbom/internal/domain"
)

// ItemReader defines the read side of the item store. The resolution engine
// depends on this interface only; it never writes.
type ItemReader interface {
	GetItemByID(ctx context.Context, kind domain.Kind, id int) (*domain.Item, error)
	GetItemByName(ctx context.Context, kind domain.Kind, name string) (*domain.Item, error)
	// ListRequirements returns a recipe's requirement edges ordered by
	// requirement ID. The order is stable within one call so tree rendering
	// is deterministic.
	ListRequirements(ctx context.Context, kind domain.Kind, id int) ([]domain.RecipeRequirement, error)
}

// Item defines the full item store contract: the read side above plus the
// write side used by management and import adapters. Writes validate the
// store invariants (unique names, known endpoints, acyclic recipe graph) and
// are atomic.
type Item interface {
	ItemReader

	// Item operations
	ListItems(ctx context.Context, kind domain.Kind) ([]domain.Item, error)
	InsertItem(ctx context.Context, item *domain.Item) (int, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	// DeleteItem removes an item together with its own recipe edges and any
	// edges that reference it as an ingredient (cascade policy).
	DeleteItem(ctx context.Context, kind domain.Kind, id int) error

	// Requirement operations
	AddRequirement(ctx context.Context, req *domain.RecipeRequirement) (int, error)
	DeleteRequirement(ctx context.Context, requirementID int) error
	DeleteRequirements(ctx context.Context, kind domain.Kind, id int) error
	ListUsages(ctx context.Context, kind domain.Kind, id int) ([]domain.Usage, error)

	// Search and reporting
	SearchItems(ctx context.Context, keyword string) (map[domain.Kind][]domain.Item, error)
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}

// Settings defines the persistent key/value settings store.
type Settings interface {
	GetSetting(ctx context.Context, key, defaultValue string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetTaxRate(ctx context.Context) (float64, error)
	SetTaxRate(ctx context.Context, rate float64) error
}
