package services

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/cleardeed/closing-service/internal/constants"
	"github.com/cleardeed/closing-service/internal/models"
)

// PermissionTreeCache holds the last fetched permission tree with an
// explicit Get/Set/Clear lifecycle: hydrated on first use, expired by
// TTL, cleared when a sync discovers it is stale. Keeping the provider
// explicit (instead of ambient globals) makes the eventually-consistent
// contract testable.
type PermissionTreeCache struct {
	cache *gocache.Cache
}

func NewPermissionTreeCache() *PermissionTreeCache {
	return &PermissionTreeCache{
		cache: gocache.New(constants.PermissionTreeCacheTTL, 2*constants.PermissionTreeCacheTTL),
	}
}

func (c *PermissionTreeCache) Get() (*models.PermissionTree, bool) {
	v, ok := c.cache.Get(constants.PermissionTreeCacheKey)
	if !ok {
		return nil, false
	}
	tree, ok := v.(*models.PermissionTree)
	return tree, ok
}

func (c *PermissionTreeCache) Set(tree *models.PermissionTree) {
	c.cache.Set(constants.PermissionTreeCacheKey, tree, gocache.DefaultExpiration)
}

func (c *PermissionTreeCache) Clear() {
	c.cache.Delete(constants.PermissionTreeCacheKey)
}
