package bom

import (
	"context"
	"fmt"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
)

// Totals is the aggregated result of a resolution: total units of each base
// material, plus total units of each crafted item encountered along the way
// (the root included). Intermediate totals fall out of the same traversal.
type Totals struct {
	Base          map[int]int            `json:"base"`
	Intermediates map[domain.ItemKey]int `json:"intermediates"`
}

func newTotals() *Totals {
	return &Totals{
		Base:          make(map[int]int),
		Intermediates: make(map[domain.ItemKey]int),
	}
}

// Merge adds another resolution's totals into this one, summing per item
func (t *Totals) Merge(other *Totals) {
	for id, qty := range other.Base {
		t.Base[id] += qty
	}
	for key, qty := range other.Intermediates {
		t.Intermediates[key] += qty
	}
}

// path tracks the item keys on the current recursion branch so an accidental
// cycle is detected instead of recursing forever.
type path map[domain.ItemKey]bool

func newPath() path {
	return make(path)
}

// expand is the recursive core shared conceptually with the tree builder:
// base materials contribute directly; crafted items round the required
// quantity up to whole craft executions and recurse into each requirement.
func (s *service) expand(ctx context.Context, key domain.ItemKey, quantity int, onPath path, depth int, totals *Totals) error {
	if depth > s.maxDepth {
		return fmt.Errorf("%w: expansion exceeded depth %d at %s", domain.ErrCycleDetected, s.maxDepth, key)
	}

	if key.Kind == domain.KindBase {
		totals.Base[key.ID] += quantity
		return nil
	}

	if onPath[key] {
		return fmt.Errorf("%w: %s requires itself", domain.ErrCycleDetected, key)
	}

	item, err := s.getItem(ctx, key.Kind, key.ID)
	if err != nil {
		return err
	}

	executions := ceilDiv(quantity, item.OutputQuantity)
	totals.Intermediates[key] += quantity

	reqs, err := s.listRequirements(ctx, key.Kind, key.ID)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		// Crafted item without a recipe is a data-entry gap: contribute
		// nothing rather than fail the whole resolution.
		logger.FromContext(ctx).Warn(LogMsgEmptyRecipe, "kind", key.Kind, "id", key.ID, "name", item.Name)
		return nil
	}

	onPath[key] = true
	defer delete(onPath, key)

	for _, req := range reqs {
		needed := req.Quantity * executions
		if err := s.expand(ctx, req.Ingredient(), needed, onPath, depth+1, totals); err != nil {
			return err
		}
	}

	return nil
}

// ceilDiv rounds the required quantity up to whole craft executions. Partial
// crafts are not possible; surplus output is accepted, not carried forward.
func ceilDiv(quantity, outputQuantity int) int {
	if outputQuantity <= 1 {
		return quantity
	}
	return (quantity + outputQuantity - 1) / outputQuantity
}
