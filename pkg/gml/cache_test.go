package gml

import (
	"errors"
	"sync"
	"testing"
)

func TestCacheBasic(t *testing.T) {
	cache := NewDocumentCache(1024 * 1024)

	stats := cache.Stats()
	if stats.Documents != 0 {
		t.Errorf("Expected empty cache, got %d documents", stats.Documents)
	}

	loadCount := 0
	doc, err := cache.Get("a.gml", func() (*Document, error) {
		loadCount++
		return &Document{Location: "a.gml", size: 100}, nil
	})
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	if doc.Location != "a.gml" {
		t.Errorf("Expected location 'a.gml', got '%s'", doc.Location)
	}

	doc2, err := cache.Get("a.gml", func() (*Document, error) {
		loadCount++
		return &Document{Location: "other.gml"}, nil
	})
	if err != nil {
		t.Fatalf("Failed to get cached document: %v", err)
	}
	if doc2 != doc {
		t.Errorf("Expected the cached document, got a new one from %s", doc2.Location)
	}
	if loadCount != 1 {
		t.Errorf("Expected loader called once, got %d times", loadCount)
	}

	stats = cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
	if stats.UsedMemory != 1024+200 {
		t.Errorf("Expected 1224 bytes used, got %d", stats.UsedMemory)
	}
}

func TestCacheLoaderError(t *testing.T) {
	cache := NewDocumentCache(0)
	boom := errors.New("boom")
	_, err := cache.Get("bad.gml", func() (*Document, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Expected loader error, got %v", err)
	}
	if cache.Stats().Documents != 0 {
		t.Errorf("Failed loads must not be cached")
	}
}

func TestCacheEviction(t *testing.T) {
	// Room for three documents of 1024 + 2*1000 bytes.
	cache := NewDocumentCache(3 * 3024)

	for i := 0; i < 10; i++ {
		name := string(rune('A' + i))
		_, err := cache.Get(name, func() (*Document, error) {
			return &Document{Location: name, size: 1000}, nil
		})
		if err != nil {
			t.Fatalf("Failed to add document %s: %v", name, err)
		}
	}

	stats := cache.Stats()
	if stats.Documents != 3 {
		t.Errorf("Expected 3 documents after eviction, got %d", stats.Documents)
	}
	if stats.UsedMemory > cache.maxMemory {
		t.Errorf("Cache exceeded max memory: %d > %d", stats.UsedMemory, cache.maxMemory)
	}

	// The most recent documents survive.
	loads := 0
	for _, name := range []string{"H", "I", "J"} {
		_, _ = cache.Get(name, func() (*Document, error) {
			loads++
			return &Document{size: 1000}, nil
		})
	}
	if loads != 0 {
		t.Errorf("Expected H, I and J to be cached, reloaded %d", loads)
	}
}

func TestCacheTooLarge(t *testing.T) {
	cache := NewDocumentCache(2048)
	doc, err := cache.Get("big", func() (*Document, error) {
		return &Document{size: 4096}, nil
	})
	if err != nil || doc == nil {
		t.Fatalf("Expected the document despite not caching it, got %v", err)
	}
	if cache.Stats().Documents != 0 {
		t.Errorf("Oversized document was cached")
	}
	if err := cache.Add("big", doc); err == nil {
		t.Errorf("Expected Add to fail for an oversized document")
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewDocumentCache(1024 * 1024)

	for i := 0; i < 5; i++ {
		name := string(rune('A' + i))
		if err := cache.Add(name, &Document{Location: name}); err != nil {
			t.Fatalf("Failed to add document: %v", err)
		}
	}
	if cache.Stats().Documents != 5 {
		t.Errorf("Expected 5 documents, got %d", cache.Stats().Documents)
	}

	cache.Clear()

	if cache.Stats().Documents != 0 {
		t.Errorf("Expected empty cache after clear, got %d documents", cache.Stats().Documents)
	}
	if cache.Stats().UsedMemory != 0 {
		t.Errorf("Expected zero memory after clear, got %d bytes", cache.Stats().UsedMemory)
	}
}

func TestCacheRemove(t *testing.T) {
	cache := NewDocumentCache(1024 * 1024)
	if err := cache.Add("test", &Document{}); err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	cache.Remove("test")
	if cache.Stats().Documents != 0 {
		t.Errorf("Expected 0 documents after remove, got %d", cache.Stats().Documents)
	}

	loadCount := 0
	_, err := cache.Get("test", func() (*Document, error) {
		loadCount++
		return &Document{}, nil
	})
	if err != nil {
		t.Fatalf("Failed to reload document: %v", err)
	}
	if loadCount != 1 {
		t.Errorf("Expected loader called after remove, called %d times", loadCount)
	}
}

func TestCacheConcurrent(t *testing.T) {
	cache := NewDocumentCache(64 * 1024)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				name := string(rune('A' + (i+w)%20))
				if _, err := cache.Get(name, func() (*Document, error) {
					return &Document{Location: name, size: 512}, nil
				}); err != nil {
					t.Errorf("Get %s: %v", name, err)
				}
			}
		}(w)
	}
	wg.Wait()

	if used := cache.Stats().UsedMemory; used > 64*1024 {
		t.Errorf("Cache exceeded max memory: %d", used)
	}
}
