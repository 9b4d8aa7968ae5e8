package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/repository"
)

// CSV column layouts. Exports always write the header row; imports require it
// so a column reorder fails loudly instead of silently misreading.
var (
	itemHeader        = []string{"kind", "id", "name", "output_quantity", "description", "unit_cost"}
	requirementHeader = []string{"recipe_kind", "recipe_id", "ingredient_kind", "ingredient_id", "quantity"}
)

// Importer moves store contents through CSV files. Imports go through the
// store's write contract, so every store invariant (unique names, known
// endpoints, no cycles) applies to imported data too.
type Importer struct {
	repo repository.Item
}

// New creates a new Importer
func New(repo repository.Item) *Importer {
	return &Importer{repo: repo}
}

// ExportItems writes all items of every kind as CSV
func (im *Importer) ExportItems(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(itemHeader); err != nil {
		return fmt.Errorf("failed to write item header: %w", err)
	}

	for _, kind := range []domain.Kind{domain.KindBase, domain.KindMaterial, domain.KindProduct} {
		items, err := im.repo.ListItems(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to list %s items: %w", kind, err)
		}
		for _, item := range items {
			record := []string{
				string(item.Kind),
				strconv.Itoa(item.ID),
				item.Name,
				strconv.Itoa(item.OutputQuantity),
				item.Description,
				strconv.FormatFloat(item.UnitCost, 'f', -1, 64),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write item record: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportRequirements writes every recipe edge as CSV
func (im *Importer) ExportRequirements(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(requirementHeader); err != nil {
		return fmt.Errorf("failed to write requirement header: %w", err)
	}

	for _, kind := range []domain.Kind{domain.KindMaterial, domain.KindProduct} {
		items, err := im.repo.ListItems(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to list %s items: %w", kind, err)
		}
		for _, item := range items {
			reqs, err := im.repo.ListRequirements(ctx, kind, item.ID)
			if err != nil {
				return fmt.Errorf("failed to list requirements for %s: %w", item.Key(), err)
			}
			for _, req := range reqs {
				record := []string{
					string(req.RecipeKind),
					strconv.Itoa(req.RecipeID),
					string(req.IngredientKind),
					strconv.Itoa(req.IngredientID),
					strconv.Itoa(req.Quantity),
				}
				if err := cw.Write(record); err != nil {
					return fmt.Errorf("failed to write requirement record: %w", err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Import loads items and requirement edges from CSV into the store. The store
// assigns fresh IDs, so requirement references are remapped from the file's
// IDs to the assigned ones. Items must be imported before the edges that
// reference them.
func (im *Importer) Import(ctx context.Context, items, requirements io.Reader) error {
	log := logger.FromContext(ctx)

	idMap, err := im.importItems(ctx, items)
	if err != nil {
		return err
	}
	log.Info(LogMsgItemsImported, "count", len(idMap))

	count, err := im.importRequirements(ctx, requirements, idMap)
	if err != nil {
		return err
	}
	log.Info(LogMsgRequirementsImported, "count", count)
	return nil
}

// importItems inserts the item rows and returns the file-ID to store-ID map
func (im *Importer) importItems(ctx context.Context, r io.Reader) (map[domain.ItemKey]int, error) {
	cr := csv.NewReader(r)
	if err := expectHeader(cr, itemHeader); err != nil {
		return nil, err
	}

	idMap := make(map[domain.ItemKey]int)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		kind, err := domain.ParseKind(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		fileID, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id: %w", line, err)
		}
		outputQuantity, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid output_quantity: %w", line, err)
		}
		unitCost, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid unit_cost: %w", line, err)
		}

		item := &domain.Item{
			Kind:           kind,
			Name:           record[2],
			OutputQuantity: outputQuantity,
			Description:    record[4],
			UnitCost:       unitCost,
		}
		id, err := im.repo.InsertItem(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s %q): %w", line, kind, item.Name, err)
		}
		idMap[domain.ItemKey{Kind: kind, ID: fileID}] = id
	}
	return idMap, nil
}

// importRequirements inserts the edges, remapping file IDs to store IDs
func (im *Importer) importRequirements(ctx context.Context, r io.Reader, idMap map[domain.ItemKey]int) (int, error) {
	cr := csv.NewReader(r)
	if err := expectHeader(cr, requirementHeader); err != nil {
		return 0, err
	}

	count := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}

		recipe, err := parseEndpoint(record[0], record[1], idMap)
		if err != nil {
			return count, fmt.Errorf("line %d: recipe: %w", line, err)
		}
		ingredient, err := parseEndpoint(record[2], record[3], idMap)
		if err != nil {
			return count, fmt.Errorf("line %d: ingredient: %w", line, err)
		}
		quantity, err := strconv.Atoi(record[4])
		if err != nil {
			return count, fmt.Errorf("line %d: invalid quantity: %w", line, err)
		}

		edge := &domain.RecipeRequirement{
			RecipeKind:     recipe.Kind,
			RecipeID:       recipe.ID,
			IngredientKind: ingredient.Kind,
			IngredientID:   ingredient.ID,
			Quantity:       quantity,
		}
		if _, err := im.repo.AddRequirement(ctx, edge); err != nil {
			return count, fmt.Errorf("line %d (%s -> %s): %w", line, recipe, ingredient, err)
		}
		count++
	}
	return count, nil
}

// parseEndpoint resolves one (kind, file-ID) pair to its store key
func parseEndpoint(kindRaw, idRaw string, idMap map[domain.ItemKey]int) (domain.ItemKey, error) {
	kind, err := domain.ParseKind(kindRaw)
	if err != nil {
		return domain.ItemKey{}, err
	}
	fileID, err := strconv.Atoi(idRaw)
	if err != nil {
		return domain.ItemKey{}, fmt.Errorf("invalid id: %w", err)
	}
	storeID, ok := idMap[domain.ItemKey{Kind: kind, ID: fileID}]
	if !ok {
		return domain.ItemKey{}, fmt.Errorf("%w: %s:%d not present in item file", domain.ErrItemNotFound, kind, fileID)
	}
	return domain.ItemKey{Kind: kind, ID: storeID}, nil
}

// expectHeader consumes and verifies the header row
func expectHeader(cr *csv.Reader, want []string) error {
	got, err := cr.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(got) != len(want) {
		return fmt.Errorf("unexpected header: got %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("unexpected header column %d: got %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
