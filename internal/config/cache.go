package config

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jwtly10/coffeesave"
)

const defaultCacheSize = 64

// Cache keeps the settings of recently used workspace roots.
//
// Settings only change through configuration change notifications, which purge the cache.
type Cache struct {
	entries *lru.Cache[string, coffeesave.Settings]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[string, coffeesave.Settings](size)
	if err != nil {
		return nil, fmt.Errorf("create settings cache: %w", err)
	}
	return &Cache{entries: c}, nil
}

func (c *Cache) Get(root string) (coffeesave.Settings, bool) {
	return c.entries.Get(root)
}

func (c *Cache) Add(root string, s coffeesave.Settings) {
	c.entries.Add(root, s)
}

func (c *Cache) Remove(root string) {
	c.entries.Remove(root)
}

func (c *Cache) Purge() {
	c.entries.Purge()
}

func (c *Cache) Len() int {
	return c.entries.Len()
}
