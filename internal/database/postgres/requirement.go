package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mearah/craftbom/internal/domain"
)

// maxCycleWalkDepth bounds the pre-insert graph walk. Recipe graphs are
// shallow in practice; hitting this means the data is already corrupt.
const maxCycleWalkDepth = 64

const requirementColumns = "id, recipe_kind, recipe_id, ingredient_kind, ingredient_id, quantity"

// ListRequirements retrieves a recipe's requirement edges ordered by ID
func (s *ItemStore) ListRequirements(ctx context.Context, kind domain.Kind, id int) ([]domain.RecipeRequirement, error) {
	query := `
		SELECT ` + requirementColumns + `
		FROM recipe_requirements
		WHERE recipe_kind = $1 AND recipe_id = $2
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}
	defer rows.Close()

	return collectRequirements(rows)
}

// AddRequirement inserts a recipe edge after validating the store invariants:
// positive quantity, craftable recipe kind, known endpoints, and no cycle.
// The cycle check and the insert run in one transaction so a concurrent
// writer cannot sneak a closing edge in between.
func (s *ItemStore) AddRequirement(ctx context.Context, req *domain.RecipeRequirement) (int, error) {
	if !req.RecipeKind.Craftable() {
		return 0, fmt.Errorf("%w: %s items have no recipe", domain.ErrIntegrityViolation, req.RecipeKind)
	}
	if _, err := domain.ParseKind(string(req.IngredientKind)); err != nil {
		return 0, err
	}
	if req.Quantity <= 0 {
		return 0, fmt.Errorf("%w: requirement quantity must be positive", domain.ErrIntegrityViolation)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	cyclic, err := wouldCreateCycle(ctx, tx, req)
	if err != nil {
		return 0, err
	}
	if cyclic {
		return 0, fmt.Errorf("%w: %s", domain.ErrIntegrityViolation, domain.ErrMsgCycleDetected)
	}

	var id int
	query := `
		INSERT INTO recipe_requirements (recipe_kind, recipe_id, ingredient_kind, ingredient_id, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query, req.RecipeKind, req.RecipeID, req.IngredientKind, req.IngredientID, req.Quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert requirement: %w", mapConstraintError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	req.ID = id
	return id, nil
}

// DeleteRequirement removes a single requirement edge by its ID
func (s *ItemStore) DeleteRequirement(ctx context.Context, requirementID int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM recipe_requirements WHERE id = $1`, requirementID)
	if err != nil {
		return fmt.Errorf("failed to delete requirement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: requirement %d", domain.ErrItemNotFound, requirementID)
	}

	return nil
}

// DeleteRequirements removes all requirement edges of a recipe
func (s *ItemStore) DeleteRequirements(ctx context.Context, kind domain.Kind, id int) error {
	_, err := s.db.Exec(ctx, `DELETE FROM recipe_requirements WHERE recipe_kind = $1 AND recipe_id = $2`, kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete requirements: %w", err)
	}

	return nil
}

// ListUsages finds the recipes that consume a given item as an ingredient
func (s *ItemStore) ListUsages(ctx context.Context, kind domain.Kind, id int) ([]domain.Usage, error) {
	query := `
		SELECT rr.recipe_kind, rr.recipe_id, i.name, i.output_quantity, rr.quantity
		FROM recipe_requirements rr
		JOIN items i ON i.kind = rr.recipe_kind AND i.id = rr.recipe_id
		WHERE rr.ingredient_kind = $1 AND rr.ingredient_id = $2
		ORDER BY rr.recipe_kind, rr.recipe_id
	`

	rows, err := s.db.Query(ctx, query, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query usages: %w", err)
	}
	defer rows.Close()

	var usages []domain.Usage
	for rows.Next() {
		var u domain.Usage
		if err := rows.Scan(&u.RecipeKind, &u.RecipeID, &u.RecipeName, &u.OutputQuantity, &u.QuantityNeeded); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return usages, nil
}

// wouldCreateCycle walks the recipe graph downward from the new edge's
// ingredient. If the walk reaches the recipe item, inserting the edge would
// close a cycle.
func wouldCreateCycle(ctx context.Context, tx pgx.Tx, req *domain.RecipeRequirement) (bool, error) {
	target := domain.ItemKey{Kind: req.RecipeKind, ID: req.RecipeID}
	start := req.Ingredient()
	if start == target {
		return true, nil
	}
	if !start.Kind.Craftable() {
		// Base materials are leaves; the edge cannot reach back to the recipe
		return false, nil
	}

	visited := map[domain.ItemKey]bool{start: true}
	frontier := []domain.ItemKey{start}

	for depth := 0; depth < maxCycleWalkDepth && len(frontier) > 0; depth++ {
		var next []domain.ItemKey
		for _, key := range frontier {
			ingredients, err := listIngredientKeys(ctx, tx, key)
			if err != nil {
				return false, err
			}
			for _, ing := range ingredients {
				if ing == target {
					return true, nil
				}
				if !ing.Kind.Craftable() || visited[ing] {
					continue
				}
				visited[ing] = true
				next = append(next, ing)
			}
		}
		frontier = next
	}

	if len(frontier) > 0 {
		// Walk exceeded the depth bound: the stored graph is already cyclic
		return false, fmt.Errorf("%w: graph walk exceeded depth %d", domain.ErrCycleDetected, maxCycleWalkDepth)
	}

	return false, nil
}

func listIngredientKeys(ctx context.Context, tx pgx.Tx, recipe domain.ItemKey) ([]domain.ItemKey, error) {
	rows, err := tx.Query(ctx,
		`SELECT ingredient_kind, ingredient_id FROM recipe_requirements WHERE recipe_kind = $1 AND recipe_id = $2`,
		recipe.Kind, recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredient edges: %w", err)
	}
	defer rows.Close()

	var keys []domain.ItemKey
	for rows.Next() {
		var key domain.ItemKey
		if err := rows.Scan(&key.Kind, &key.ID); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient edge: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return keys, nil
}

func collectRequirements(rows pgx.Rows) ([]domain.RecipeRequirement, error) {
	var reqs []domain.RecipeRequirement
	for rows.Next() {
		var r domain.RecipeRequirement
		if err := rows.Scan(&r.ID, &r.RecipeKind, &r.RecipeID, &r.IngredientKind, &r.IngredientID, &r.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		reqs = append(reqs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reqs, nil
}
