package server

import (
	"sync"
	"time"
)

type cachedPage struct {
	body    []byte
	expires time.Time
}

// pageCache holds rendered pages for a fixed interval.
type pageCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	pages map[string]cachedPage
}

func newPageCache(ttl time.Duration) *pageCache {
	return &pageCache{ttl: ttl, now: time.Now, pages: make(map[string]cachedPage)}
}

func (c *pageCache) get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	page, ok := c.pages[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(page.expires) {
		delete(c.pages, key)
		return nil, false
	}
	return page.body, true
}

func (c *pageCache) put(key string, body []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, page := range c.pages {
		if !now.Before(page.expires) {
			delete(c.pages, k)
		}
	}
	c.pages[key] = cachedPage{body: body, expires: now.Add(c.ttl)}
}
