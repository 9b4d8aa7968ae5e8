package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/repository"
)

// legacyItem is one entry of the legacy JSON index files. Crafted entries
// carry an output yield and requirement references keyed by the source file's
// IDs; base entries carry neither.
type legacyItem struct {
	ID           int                 `json:"id"`
	Name         string              `json:"name"`
	Output       int                 `json:"output"`
	Requirements []legacyRequirement `json:"requirements"`
}

// legacyRequirement references its ingredient through exactly one of BaseID
// or MaterialID
type legacyRequirement struct {
	BaseID     *int `json:"base_id"`
	MaterialID *int `json:"material_id"`
	Quantity   int  `json:"quantity"`
}

// migrateJSON loads the legacy data directory (base/index.json,
// materials/index.json, products/index.json) and writes it through the store.
// Items whose name already exists are skipped and their stored ID reused, so
// the migration is idempotent.
func migrateJSON(ctx context.Context, repo repository.Item, dataDir string) error {
	log := logger.FromContext(ctx)

	baseItems, err := loadIndex(filepath.Join(dataDir, "base", "index.json"))
	if err != nil {
		return err
	}
	materials, err := loadIndex(filepath.Join(dataDir, "materials", "index.json"))
	if err != nil {
		return err
	}
	products, err := loadIndex(filepath.Join(dataDir, "products", "index.json"))
	if err != nil {
		return err
	}

	// Base materials first so requirement references can be remapped
	baseIDs, err := migrateKind(ctx, repo, domain.KindBase, baseItems)
	if err != nil {
		return err
	}
	materialIDs, err := migrateKind(ctx, repo, domain.KindMaterial, materials)
	if err != nil {
		return err
	}
	if err := migrateEdges(ctx, repo, domain.KindMaterial, materials, materialIDs, baseIDs, materialIDs); err != nil {
		return err
	}
	productIDs, err := migrateKind(ctx, repo, domain.KindProduct, products)
	if err != nil {
		return err
	}
	if err := migrateEdges(ctx, repo, domain.KindProduct, products, productIDs, baseIDs, materialIDs); err != nil {
		return err
	}

	log.Info("Legacy migration complete",
		"base_materials", len(baseIDs),
		"materials", len(materialIDs),
		"products", len(productIDs))
	return nil
}

// loadIndex reads one legacy index file; a missing file is an empty list
func loadIndex(path string) ([]legacyItem, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []legacyItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return items, nil
}

// migrateKind inserts the items of one kind, returning the file-ID to
// store-ID map
func migrateKind(ctx context.Context, repo repository.Item, kind domain.Kind, items []legacyItem) (map[int]int, error) {
	log := logger.FromContext(ctx)
	idMap := make(map[int]int, len(items))

	for _, entry := range items {
		if existing, err := repo.GetItemByName(ctx, kind, entry.Name); err == nil {
			log.Info("Item already exists, skipping", "kind", kind, "name", entry.Name)
			idMap[entry.ID] = existing.ID
			continue
		} else if !errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}

		output := entry.Output
		if output <= 0 {
			output = 1
		}
		id, err := repo.InsertItem(ctx, &domain.Item{
			Kind:           kind,
			Name:           entry.Name,
			OutputQuantity: output,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert %s %q: %w", kind, entry.Name, err)
		}
		idMap[entry.ID] = id
	}
	return idMap, nil
}

// migrateEdges inserts the requirement edges of one kind's recipes
func migrateEdges(ctx context.Context, repo repository.Item, kind domain.Kind, items []legacyItem, recipeIDs, baseIDs, materialIDs map[int]int) error {
	log := logger.FromContext(ctx)

	for _, entry := range items {
		recipeID, ok := recipeIDs[entry.ID]
		if !ok {
			continue
		}
		for _, req := range entry.Requirements {
			var ingredientKind domain.Kind
			var ingredientID int
			switch {
			case req.BaseID != nil:
				ingredientKind = domain.KindBase
				ingredientID, ok = baseIDs[*req.BaseID]
			case req.MaterialID != nil:
				ingredientKind = domain.KindMaterial
				ingredientID, ok = materialIDs[*req.MaterialID]
			default:
				log.Warn("Requirement without ingredient reference, skipping",
					"kind", kind, "name", entry.Name)
				continue
			}
			if !ok {
				log.Warn("Unmapped ingredient reference, skipping",
					"kind", kind, "name", entry.Name)
				continue
			}

			edge := &domain.RecipeRequirement{
				RecipeKind:     kind,
				RecipeID:       recipeID,
				IngredientKind: ingredientKind,
				IngredientID:   ingredientID,
				Quantity:       req.Quantity,
			}
			if _, err := repo.AddRequirement(ctx, edge); err != nil {
				return fmt.Errorf("failed to add requirement for %s %q: %w", kind, entry.Name, err)
			}
		}
	}
	return nil
}
