package cache

import (
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ludo-technologies/conscan/domain"
)

// Entry is one cached per-file analysis record. Entries are owned by
// the cache; callers get copies of the violation slice header and must
// not mutate the violations in place.
type Entry struct {
	// Fingerprint of the source content the result was computed from
	Fingerprint string

	// Violations is the partial result for the file
	Violations []*domain.Violation

	// Language the file resolved to during analysis
	Language domain.Language

	// Functions and Classes are the definition counts from the parse,
	// kept so warm runs rebuild the same file statistics as cold runs
	Functions int
	Classes   int

	// LastSeen is when the entry was last stored or confirmed current
	LastSeen time.Time
}

// ResultCache is a bounded per-file result cache keyed by path. Eviction
// is oldest-first under the size bound. All methods are safe for
// concurrent use.
type ResultCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *Entry]

	hits   int64
	misses int64
}

// NewResultCache creates a cache bounded to size entries
func NewResultCache(size int) (*ResultCache, error) {
	if size < 1 {
		return nil, domain.NewInvalidInputError("cache size must be at least 1", nil)
	}
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, domain.NewAnalysisError("failed to create result cache", err)
	}
	return &ResultCache{entries: entries}, nil
}

// Get returns the entry for a path when its fingerprint still matches.
// A stale entry counts as a miss and is invalidated.
func (c *ResultCache) Get(path, fingerprint string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(path)
	if !ok {
		c.misses++
		return nil, false
	}
	if entry.Fingerprint != fingerprint {
		c.entries.Remove(path)
		c.misses++
		return nil, false
	}
	entry.LastSeen = time.Now()
	c.hits++
	return entry, true
}

// Put stores or replaces the entry for a path
func (c *ResultCache) Put(path, fingerprint string, language domain.Language, violations []*domain.Violation, functions, classes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(path, &Entry{
		Fingerprint: fingerprint,
		Violations:  violations,
		Language:    language,
		Functions:   functions,
		Classes:     classes,
		LastSeen:    time.Now(),
	})
}

// Invalidate removes the entry for a path
func (c *ResultCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(path)
}

// Len returns the number of live entries
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Stats returns hit and miss counters
func (c *ResultCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Purge drops all entries and resets the counters
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.hits = 0
	c.misses = 0
}

// ChangeSet partitions a path list by cache state
type ChangeSet struct {
	// Changed lists paths whose fingerprint differs from the cache, or
	// for which the cache or filesystem gave no usable answer.
	Changed []string

	// Unchanged lists paths whose cached result is still current
	Unchanged []string

	// Failed lists paths whose content could not be read; they are also
	// counted in Changed so correctness never depends on the cache.
	Failed []string
}

// DetectChanges compares each path's current content fingerprint with
// the cached one. Read failures fail open: the path is treated as
// changed so a fresh analysis decides.
func (c *ResultCache) DetectChanges(paths []string) ChangeSet {
	var set ChangeSet
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			set.Failed = append(set.Failed, path)
			set.Changed = append(set.Changed, path)
			continue
		}
		fingerprint := domain.SourceFingerprint(content)
		if _, ok := c.Get(path, fingerprint); ok {
			set.Unchanged = append(set.Unchanged, path)
		} else {
			set.Changed = append(set.Changed, path)
		}
	}
	return set
}
