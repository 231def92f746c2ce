package tokenguide

import (
	"container/list"
	"sync"

	"github.com/tokenguide/tokenguide/guide"
	"github.com/tokenguide/tokenguide/vocab"
)

// Cache memoizes BuildIndex results keyed by (regex pattern, tokenizer
// fingerprint), per spec.md section 5/9: construction is expensive and
// deterministic for a given (regex, tokenizer) pair, so results are safe
// to share across callers. An LRU discipline bounds memory use.
type Cache struct {
	maxEntries int

	mu    sync.Mutex
	order *list.List // front = most recently used
	items map[cacheKey]*list.Element
}

type cacheKey struct {
	pattern     string
	fingerprint string
}

type cacheEntry struct {
	key   cacheKey
	guide *guide.Guide
}

// NewCache creates a Cache holding at most maxEntries built guides. A
// non-positive maxEntries means unbounded.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      map[cacheKey]*list.Element{},
	}
}

func (c *Cache) get(pattern string, tokenizer vocab.Tokenizer) (*guide.Guide, bool) {
	if c == nil {
		return nil, false
	}
	key := cacheKey{pattern: pattern, fingerprint: vocab.Fingerprint(tokenizer)}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).guide, true
}

func (c *Cache) put(pattern string, tokenizer vocab.Tokenizer, g *guide.Guide) {
	if c == nil {
		return
	}
	key := cacheKey{pattern: pattern, fingerprint: vocab.Fingerprint(tokenizer)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).guide = g
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, guide: g})
	c.items[key] = el

	if c.maxEntries > 0 {
		for c.order.Len() > c.maxEntries {
			oldest := c.order.Back()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}
