package cache

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem)}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[key]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := make([]byte, len(item.value))
	copy(value, item.value)
	return value, true
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(context.Background(), key)
		return
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.items[key] = memoryItem{value: stored, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Memory) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.items, key)
	}
	c.mu.Unlock()
}
