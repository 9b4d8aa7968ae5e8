package bom

import (
	"context"
	"fmt"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
)

// TreeNode is one step of the recipe decomposition: the item, the quantity
// the parent requested, the whole craft executions that satisfies it, and
// the node's ingredients in recipe order. Base materials are leaves.
type TreeNode struct {
	Item       domain.Item `json:"item"`
	Requested  int         `json:"requested"`
	Executions int         `json:"executions"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// BuildTree materializes the same expansion Resolve flattens, as a tree for
// visual rendering. Summing the base-material leaves of the result equals
// Resolve's totals exactly for the same inputs.
func (s *service) BuildTree(ctx context.Context, kind domain.Kind, id, quantity int) (*TreeNode, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgBuildTreeCalled, "kind", kind, "id", id, "quantity", quantity)

	if err := validateRequest(kind, quantity); err != nil {
		return nil, err
	}

	key := domain.ItemKey{Kind: kind, ID: id}
	return s.buildNode(ctx, key, quantity, newPath(), 0)
}

func (s *service) buildNode(ctx context.Context, key domain.ItemKey, quantity int, onPath path, depth int) (*TreeNode, error) {
	if depth > s.maxDepth {
		return nil, fmt.Errorf("%w: expansion exceeded depth %d at %s", domain.ErrCycleDetected, s.maxDepth, key)
	}

	item, err := s.getItem(ctx, key.Kind, key.ID)
	if err != nil {
		return nil, err
	}

	node := &TreeNode{
		Item:      *item,
		Requested: quantity,
	}

	if key.Kind == domain.KindBase {
		// Base materials are consumed one-for-one, never crafted
		node.Executions = quantity
		return node, nil
	}

	if onPath[key] {
		return nil, fmt.Errorf("%w: %s requires itself", domain.ErrCycleDetected, key)
	}

	node.Executions = ceilDiv(quantity, item.OutputQuantity)

	reqs, err := s.listRequirements(ctx, key.Kind, key.ID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		logger.FromContext(ctx).Warn(LogMsgEmptyRecipe, "kind", key.Kind, "id", key.ID, "name", item.Name)
		return node, nil
	}

	onPath[key] = true
	defer delete(onPath, key)

	node.Children = make([]*TreeNode, 0, len(reqs))
	for _, req := range reqs {
		child, err := s.buildNode(ctx, req.Ingredient(), req.Quantity*node.Executions, onPath, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}
