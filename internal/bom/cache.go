package bom

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mearah/craftbom/internal/domain"
)

// storeCache is a read-through LRU over the store's read contract. Deep
// expansions hit the same handful of items repeatedly, so even a short TTL
// removes most round trips. Writes purge it via Service.InvalidateCache.
type storeCache struct {
	items        *expirable.LRU[string, *domain.Item]
	requirements *expirable.LRU[string, []domain.RecipeRequirement]
}

func newStoreCache(size int, ttl time.Duration) *storeCache {
	return &storeCache{
		items:        expirable.NewLRU[string, *domain.Item](size, nil, ttl),
		requirements: expirable.NewLRU[string, []domain.RecipeRequirement](size, nil, ttl),
	}
}

func itemIDKey(kind domain.Kind, id int) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func itemNameKey(kind domain.Kind, name string) string {
	return fmt.Sprintf("%s:name:%s", kind, name)
}

func (c *storeCache) GetItem(kind domain.Kind, id int) (*domain.Item, bool) {
	return c.items.Get(itemIDKey(kind, id))
}

func (c *storeCache) GetItemByName(kind domain.Kind, name string) (*domain.Item, bool) {
	return c.items.Get(itemNameKey(kind, name))
}

// SetItem caches an item under both its ID and name keys
func (c *storeCache) SetItem(item *domain.Item) {
	c.items.Add(itemIDKey(item.Kind, item.ID), item)
	c.items.Add(itemNameKey(item.Kind, item.Name), item)
}

func (c *storeCache) GetRequirements(kind domain.Kind, id int) ([]domain.RecipeRequirement, bool) {
	return c.requirements.Get(itemIDKey(kind, id))
}

func (c *storeCache) SetRequirements(kind domain.Kind, id int, reqs []domain.RecipeRequirement) {
	c.requirements.Add(itemIDKey(kind, id), reqs)
}

// Clear removes all entries from both caches
func (c *storeCache) Clear() {
	c.items.Purge()
	c.requirements.Purge()
}
