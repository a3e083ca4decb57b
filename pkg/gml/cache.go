package gml

import (
	"container/list"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// DocumentCache keeps decoded documents in memory with least-recently-used
// eviction. It is safe for concurrent use, so one cache can serve every
// decoder of a batch.
//
// Memory use is estimated from the size of the XML each document was decoded
// from.
//
// Example:
//
//	cache := gml.NewDocumentCache(256 * 1024 * 1024)
//	opts := gml.DefaultDecodeOptions()
//	opts.Cache = cache
type DocumentCache struct {
	maxMemory  int64 // 0 is unlimited
	usedMemory int64
	docs       map[string]*cacheEntry
	lru        *list.List // most recent at front
	mu         sync.RWMutex
	hits       int
	misses     int
}

type cacheEntry struct {
	key          string
	doc          *Document
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewDocumentCache creates a cache holding roughly maxMemoryBytes of
// documents. Zero means no limit.
func NewDocumentCache(maxMemoryBytes int64) *DocumentCache {
	return &DocumentCache{
		maxMemory: maxMemoryBytes,
		docs:      make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get returns the cached document for key or calls loader and caches its
// result. Loader errors are returned and nothing is cached. A document too
// large for the cache is returned without being cached.
func (c *DocumentCache) Get(key string, loader func() (*Document, error)) (*Document, error) {
	c.mu.Lock()
	if entry, ok := c.docs[key]; ok {
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.hits++
		c.mu.Unlock()
		return entry.doc, nil
	}
	c.misses++
	c.mu.Unlock()

	doc, err := loader()
	if err != nil {
		return nil, errors.Wrap(err, "load document")
	}
	_ = c.Add(key, doc)
	return doc, nil
}

// Add caches doc under key, evicting least recently used documents to make
// room. It fails when doc alone exceeds the memory limit.
func (c *DocumentCache) Add(key string, doc *Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	memSize := estimateDocumentMemory(doc)
	if entry, ok := c.docs[key]; ok {
		c.usedMemory += memSize - entry.memorySize
		entry.doc = doc
		entry.memorySize = memSize
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		return nil
	}

	if c.maxMemory > 0 && memSize > c.maxMemory {
		return errors.Newf("document too large for cache (%d bytes > %d bytes max)", memSize, c.maxMemory)
	}
	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		key:          key,
		doc:          doc,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.docs[key] = entry
	c.usedMemory += memSize
	return nil
}

// evictLRU must be called with c.mu held.
func (c *DocumentCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.docs, entry.key)
	c.usedMemory -= entry.memorySize
}

// Remove drops key from the cache.
func (c *DocumentCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.docs[key]; ok {
		c.lru.Remove(entry.element)
		delete(c.docs, key)
		c.usedMemory -= entry.memorySize
	}
}

// Clear empties the cache.
func (c *DocumentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = make(map[string]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *DocumentCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Documents:  len(c.docs),
		UsedMemory: c.usedMemory,
		MaxMemory:  c.maxMemory,
		Hits:       c.hits,
		Misses:     c.misses,
	}
}

// CacheStats holds cache counters.
type CacheStats struct {
	Documents  int   // documents currently cached
	UsedMemory int64 // estimated bytes
	MaxMemory  int64
	Hits       int
	Misses     int
}

// estimateDocumentMemory approximates the in-memory size of a decoded
// document: a fixed overhead plus twice the XML it was read from, which
// covers the geometry values and the identifier table.
func estimateDocumentMemory(doc *Document) int64 {
	if doc == nil {
		return 0
	}
	return 1024 + 2*doc.size
}
