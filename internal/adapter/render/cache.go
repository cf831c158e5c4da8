package render

import (
	"bytes"
	"container/list"
	"io"
	"sync"
)

// DrawFunc writes one image to w.
type DrawFunc func(w io.Writer) error

// Cache keeps the most recently rendered images in memory. The snapshot is
// immutable, so an image is valid for as long as the process lives; only
// the entry count is bounded.
type Cache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front is most recently used
}

type cached struct {
	key string
	png []byte
}

// NewCache creates a cache holding at most maxEntries images. A non-positive
// maxEntries disables caching.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the image stored under key, drawing and storing it on a miss.
// Failed draws are not cached. hit reports whether draw was skipped.
func (c *Cache) Get(key string, draw DrawFunc) (png []byte, hit bool, err error) {
	if b, ok := c.lookup(key); ok {
		return b, true, nil
	}

	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return nil, false, err
	}
	c.store(key, buf.Bytes())
	return buf.Bytes(), false, nil
}

// Len reports the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).png, true
}

func (c *Cache) store(key string, png []byte) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cached).png = png
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cached{key: key, png: png})

	for c.order.Len() > c.maxEntries {
		tail := c.order.Back()
		delete(c.entries, tail.Value.(*cached).key)
		c.order.Remove(tail)
	}
}
