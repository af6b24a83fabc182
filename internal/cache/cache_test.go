package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/conscan/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCacheGetPut(t *testing.T) {
	c, err := NewResultCache(8)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	fp := domain.SourceFingerprint([]byte("x = 1\n"))
	v := domain.NewViolation(domain.CategoryMeaning, domain.SeverityLow, "a.py", 1, 0, "magic")
	c.Put("a.py", fp, domain.LanguagePython, []*domain.Violation{v}, 1, 0)

	entry, ok := c.Get("a.py", fp)
	if !ok {
		t.Fatal("expected a cache hit for the same fingerprint")
	}
	if len(entry.Violations) != 1 || entry.Violations[0] != v {
		t.Error("cached violations should round-trip")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 0 {
		t.Errorf("expected 1 hit / 0 misses, got %d / %d", hits, misses)
	}
}

func TestCacheStaleFingerprintInvalidates(t *testing.T) {
	c, _ := NewResultCache(8)
	c.Put("a.py", "old", domain.LanguagePython, nil, 0, 0)

	if _, ok := c.Get("a.py", "new"); ok {
		t.Fatal("stale fingerprints must miss")
	}
	if c.Len() != 0 {
		t.Error("stale entries should be removed on access")
	}
	if _, misses := c.Stats(); misses != 1 {
		t.Errorf("expected 1 miss, got %d", misses)
	}
}

func TestCacheRejectsZeroSize(t *testing.T) {
	if _, err := NewResultCache(0); err == nil {
		t.Error("expected an error for a zero-size cache")
	}
}

func TestCacheEvictsOldestUnderBound(t *testing.T) {
	c, _ := NewResultCache(3)
	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("f%d.py", i), "fp", domain.LanguagePython, nil, 0, 0)
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 live entries under the bound, got %d", c.Len())
	}
	if _, ok := c.Get("f0.py", "fp"); ok {
		t.Error("oldest entries should be evicted first")
	}
	if _, ok := c.Get("f4.py", "fp"); !ok {
		t.Error("newest entry should survive")
	}
}

func TestDetectChangesIdenticalRewrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "same.py", "x = 1\n")

	c, _ := NewResultCache(8)
	c.Put(path, domain.SourceFingerprint([]byte("x = 1\n")), domain.LanguagePython, nil, 0, 0)

	// Rewrite with byte-identical content
	writeFile(t, dir, "same.py", "x = 1\n")

	set := c.DetectChanges([]string{path})
	if len(set.Changed) != 0 {
		t.Errorf("identical rewrite must report zero changed, got %v", set.Changed)
	}
	if len(set.Unchanged) != 1 {
		t.Errorf("expected 1 unchanged path, got %v", set.Unchanged)
	}
}

func TestDetectChangesContentChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mod.py", "x = 1\n")

	c, _ := NewResultCache(8)
	c.Put(path, domain.SourceFingerprint([]byte("x = 1\n")), domain.LanguagePython, nil, 0, 0)

	writeFile(t, dir, "mod.py", "x = 2\n")

	set := c.DetectChanges([]string{path})
	if len(set.Changed) != 1 {
		t.Errorf("expected 1 changed path, got %v", set.Changed)
	}
	if len(set.Unchanged) != 0 {
		t.Errorf("expected no unchanged paths, got %v", set.Unchanged)
	}
}

func TestDetectChangesFailOpen(t *testing.T) {
	c, _ := NewResultCache(8)

	set := c.DetectChanges([]string{"/nonexistent/gone.py"})
	if len(set.Failed) != 1 {
		t.Fatalf("expected the unreadable path in Failed, got %v", set.Failed)
	}
	if len(set.Changed) != 1 {
		t.Error("unreadable paths must also count as changed so analysis re-runs")
	}
}

func TestPurgeResetsCounters(t *testing.T) {
	c, _ := NewResultCache(8)
	c.Put("a.py", "fp", domain.LanguagePython, nil, 0, 0)
	c.Get("a.py", "fp")
	c.Get("b.py", "fp")

	c.Purge()
	if c.Len() != 0 {
		t.Error("purge should drop all entries")
	}
	hits, misses := c.Stats()
	if hits != 0 || misses != 0 {
		t.Errorf("purge should reset counters, got %d / %d", hits, misses)
	}
}
