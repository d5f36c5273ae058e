package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      interface{}
	expiresAt time.Time
}

// TTLCache is a small LRU cache with per-entry expiry. Used for settings
// rows that sit on the report hot path.
type TTLCache struct {
	lru *lru.Cache[string, item]
}

func New(size int) (*TTLCache, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lru: l}, nil
}

func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lru.Add(key, item{data: data, expiresAt: time.Now().Add(ttl)})
}

// Get returns nil when the key is missing or expired.
func (c *TTLCache) Get(key string) interface{} {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(v.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return v.data
}

func (c *TTLCache) Delete(key string) {
	c.lru.Remove(key)
}
