package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/repository"
)

const itemColumns = "kind, id, name, output_quantity, description, unit_cost"

// ItemStore implements repository.Item for PostgreSQL
type ItemStore struct {
	db *pgxpool.Pool
}

// NewItemStore creates a new ItemStore
func NewItemStore(db *pgxpool.Pool) repository.Item {
	return &ItemStore{db: db}
}

// GetItemByID retrieves an item by kind and ID
func (s *ItemStore) GetItemByID(ctx context.Context, kind domain.Kind, id int) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE kind = $1 AND id = $2`

	item, err := scanItem(s.db.QueryRow(ctx, query, kind, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s:%d", domain.ErrItemNotFound, kind, id)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetItemByName retrieves an item by kind and name
func (s *ItemStore) GetItemByName(ctx context.Context, kind domain.Kind, name string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE kind = $1 AND name = $2`

	item, err := scanItem(s.db.QueryRow(ctx, query, kind, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %q", domain.ErrItemNotFound, kind, name)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems retrieves all items of a kind ordered by name
func (s *ItemStore) ListItems(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE kind = $1 ORDER BY name`

	rows, err := s.db.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// InsertItem inserts a new item, assigning the next ID within its kind.
// The per-kind ID assignment runs inside a transaction; the store operates
// under a single-writer discipline so MAX(id)+1 is safe here.
func (s *ItemStore) InsertItem(ctx context.Context, item *domain.Item) (int, error) {
	if err := validateItem(item); err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	var id int
	query := `
		INSERT INTO items (kind, id, name, output_quantity, description, unit_cost)
		SELECT $1, COALESCE(MAX(id), 0) + 1, $2, $3, $4, $5 FROM items WHERE kind = $1
		RETURNING id
	`
	err = tx.QueryRow(ctx, query, item.Kind, item.Name, item.OutputQuantity, nullableText(item.Description), item.UnitCost).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", mapConstraintError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	item.ID = id
	return id, nil
}

// UpdateItem updates an existing item's name, output quantity, description
// and unit cost. Kind and ID are immutable.
func (s *ItemStore) UpdateItem(ctx context.Context, item *domain.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}

	query := `
		UPDATE items
		SET name = $3, output_quantity = $4, description = $5, unit_cost = $6
		WHERE kind = $1 AND id = $2
	`
	tag, err := s.db.Exec(ctx, query, item.Kind, item.ID, item.Name, item.OutputQuantity, nullableText(item.Description), item.UnitCost)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s:%d", domain.ErrItemNotFound, item.Kind, item.ID)
	}

	return nil
}

// DeleteItem removes an item. The composite foreign keys on
// recipe_requirements cascade, so the item's own recipe edges and any edges
// consuming it as an ingredient are removed in the same statement.
func (s *ItemStore) DeleteItem(ctx context.Context, kind domain.Kind, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM items WHERE kind = $1 AND id = $2`, kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s:%d", domain.ErrItemNotFound, kind, id)
	}

	return nil
}

// SearchItems finds items of every kind whose name contains the keyword
func (s *ItemStore) SearchItems(ctx context.Context, keyword string) (map[domain.Kind][]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE name ILIKE $1 ORDER BY kind, name`

	rows, err := s.db.Query(ctx, query, "%"+keyword+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer rows.Close()

	result := map[domain.Kind][]domain.Item{
		domain.KindBase:     {},
		domain.KindMaterial: {},
		domain.KindProduct:  {},
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.Kind] = append(result[item.Kind], item)
	}

	return result, nil
}

// GetStatistics returns per-kind item counts and the total requirement count
func (s *ItemStore) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'base'),
			COUNT(*) FILTER (WHERE kind = 'material'),
			COUNT(*) FILTER (WHERE kind = 'product'),
			(SELECT COUNT(*) FROM recipe_requirements)
		FROM items
	`

	var stats domain.Statistics
	err := s.db.QueryRow(ctx, query).Scan(&stats.BaseMaterials, &stats.Materials, &stats.Products, &stats.Requirements)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}

	return &stats, nil
}

// validateItem enforces the item invariants before touching the database
func validateItem(item *domain.Item) error {
	if _, err := domain.ParseKind(string(item.Kind)); err != nil {
		return err
	}
	if item.Name == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrIntegrityViolation)
	}
	if item.Kind == domain.KindBase {
		// Base materials are not crafted; output quantity is 1 by convention
		item.OutputQuantity = 1
		return nil
	}
	if item.OutputQuantity <= 0 {
		return fmt.Errorf("%w: output quantity must be positive", domain.ErrIntegrityViolation)
	}
	return nil
}

func collectItems(rows pgx.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
