package bom

import (
	"context"
	"fmt"
	"time"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/metrics"
)

// Repository defines the read-only data access required by the resolution
// engine. The engine never writes; concurrent resolutions are safe as long as
// these reads are.
type Repository interface {
	GetItemByID(ctx context.Context, kind domain.Kind, id int) (*domain.Item, error)
	GetItemByName(ctx context.Context, kind domain.Kind, name string) (*domain.Item, error)
	ListRequirements(ctx context.Context, kind domain.Kind, id int) ([]domain.RecipeRequirement, error)
}

// Service defines the interface for BOM resolution operations
type Service interface {
	Resolve(ctx context.Context, kind domain.Kind, id, quantity int) (*Totals, error)
	ResolveByName(ctx context.Context, kind domain.Kind, name string, quantity int) (*Totals, error)
	ResolveBatch(ctx context.Context, requests []Request) (*Totals, error)
	BuildTree(ctx context.Context, kind domain.Kind, id, quantity int) (*TreeNode, error)
	// InvalidateCache drops cached lookups after store writes
	InvalidateCache()
}

type service struct {
	repo     Repository
	cache    *storeCache
	maxDepth int
}

// Option configures the service
type Option func(*service)

// WithMaxDepth overrides the defensive expansion depth bound
func WithMaxDepth(depth int) Option {
	return func(s *service) {
		s.maxDepth = depth
	}
}

// WithCache enables the read-through item/requirement cache
func WithCache(size int, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = newStoreCache(size, ttl)
	}
}

// NewService creates a new BOM resolution service
func NewService(repo Repository, opts ...Option) Service {
	s := &service{
		repo:     repo,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve computes the total base-material requirements for crafting the
// given quantity of an item, fully expanded through all intermediate levels.
func (s *service) Resolve(ctx context.Context, kind domain.Kind, id, quantity int) (*Totals, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgResolveCalled, "kind", kind, "id", id, "quantity", quantity)

	if err := validateRequest(kind, quantity); err != nil {
		return nil, err
	}

	// Base items inside the graph are vouched for by FK-checked recipe
	// edges; a base root has no such edge, so confirm it exists.
	if kind == domain.KindBase {
		if _, err := s.getItem(ctx, kind, id); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	totals := newTotals()
	key := domain.ItemKey{Kind: kind, ID: id}
	if err := s.expand(ctx, key, quantity, newPath(), 0, totals); err != nil {
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	log.Debug(LogMsgResolutionComplete, "kind", kind, "id", id, "base_materials", len(totals.Base))
	return totals, nil
}

// ResolveByName resolves an item by its name within a kind
func (s *service) ResolveByName(ctx context.Context, kind domain.Kind, name string, quantity int) (*Totals, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgResolveByNameCalled, "kind", kind, "name", name, "quantity", quantity)

	if err := validateRequest(kind, quantity); err != nil {
		return nil, err
	}

	item, err := s.getItemByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}

	return s.Resolve(ctx, item.Kind, item.ID, quantity)
}

// InvalidateCache drops all cached lookups. Management handlers call this
// after any store write so resolutions never see deleted or renamed items
// for longer than one call.
func (s *service) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

func validateRequest(kind domain.Kind, quantity int) error {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return err
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity)
	}
	return nil
}

func (s *service) getItem(ctx context.Context, kind domain.Kind, id int) (*domain.Item, error) {
	if s.cache != nil {
		if item, ok := s.cache.GetItem(kind, id); ok {
			return item, nil
		}
	}

	item, err := s.repo.GetItemByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetItem(item)
	}
	return item, nil
}

func (s *service) getItemByName(ctx context.Context, kind domain.Kind, name string) (*domain.Item, error) {
	if s.cache != nil {
		if item, ok := s.cache.GetItemByName(kind, name); ok {
			return item, nil
		}
	}

	item, err := s.repo.GetItemByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetItem(item)
	}
	return item, nil
}

func (s *service) listRequirements(ctx context.Context, kind domain.Kind, id int) ([]domain.RecipeRequirement, error) {
	if s.cache != nil {
		if reqs, ok := s.cache.GetRequirements(kind, id); ok {
			return reqs, nil
		}
	}

	reqs, err := s.repo.ListRequirements(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetRequirements(kind, id, reqs)
	}
	return reqs, nil
}
