package colorscale

import (
	"container/list"
	"image/color"
)

type cacheKey struct {
	value, min, max float64
}

type cacheEntry struct {
	key   cacheKey
	color color.NRGBA
}

// lru is a fixed-capacity least-recently-used map. It is not safe for
// concurrent use; a Scale belongs to a single render session.
type lru struct {
	capacity int
	order    *list.List // front is most recently used
	entries  map[cacheKey]*list.Element
}

func newLRU(capacity int) *lru {
	return &lru{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[cacheKey]*list.Element, min(capacity, 4096)),
	}
}

func (c *lru) get(k cacheKey) (color.NRGBA, bool) {
	el, ok := c.entries[k]
	if !ok {
		return color.NRGBA{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).color, true
}

// put stores k and reports whether an older entry was evicted.
func (c *lru) put(k cacheKey, v color.NRGBA) bool {
	if el, ok := c.entries[k]; ok {
		el.Value.(*cacheEntry).color = v
		c.order.MoveToFront(el)
		return false
	}
	c.entries[k] = c.order.PushFront(&cacheEntry{key: k, color: v})
	if c.order.Len() <= c.capacity {
		return false
	}
	oldest := c.order.Back()
	c.order.Remove(oldest)
	delete(c.entries, oldest.Value.(*cacheEntry).key)
	return true
}

func (c *lru) len() int {
	return c.order.Len()
}

func (c *lru) clear() {
	c.order.Init()
	clear(c.entries)
}
