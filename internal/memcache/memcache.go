// Package memcache is the in-memory fast path in front of the persistent
// store. One Cache is created at startup and injected where needed.
package memcache

import (
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vrsandeep/noor-go/internal/models"
)

// Cache holds recently read records keyed by kind and id.
type Cache struct {
	entries *lru.Cache[string, any]
}

// New creates a cache holding at most size records.
func New(size int) *Cache {
	entries, err := lru.New[string, any](size)
	if err != nil {
		// Only a non-positive size fails; fall back to a small cache.
		log.Printf("memcache: invalid size %d, using 16: %v", size, err)
		entries, _ = lru.New[string, any](16)
	}
	return &Cache{entries: entries}
}

func key(kind models.Kind, id string) string {
	return string(kind) + "/" + id
}

// Set stores value under (kind, id).
func (c *Cache) Set(kind models.Kind, id string, value any) {
	c.entries.Add(key(kind, id), value)
}

// Get returns the value stored under (kind, id) if it has the type T.
func Get[T any](c *Cache, kind models.Kind, id string) (T, bool) {
	var zero T
	raw, ok := c.entries.Get(key(kind, id))
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Reset drops every cached record.
func (c *Cache) Reset() {
	c.entries.Purge()
}

// Keys for the record shapes the content service caches.

func VerseKey(surah, ayah int) string {
	return fmt.Sprintf("%d", models.VerseID(surah, ayah))
}

func SurahKey(surah int) string {
	return fmt.Sprintf("surah:%d", surah)
}

func BookKey(collectionID, bookNumber string) string {
	return fmt.Sprintf("book:%s:%s", collectionID, bookNumber)
}
