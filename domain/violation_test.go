package domain

import (
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(CategoryPosition, "app.py", 10, 4, "function 'f' takes 10 positional parameters")
	b := Fingerprint(CategoryPosition, "app.py", 10, 4, "function 'f' takes 10 positional parameters")
	if a != b {
		t.Errorf("same inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected 16-char fingerprint, got %d", len(a))
	}
}

func TestFingerprintVariesByLocation(t *testing.T) {
	a := Fingerprint(CategoryMeaning, "app.py", 10, 4, "magic literal")
	b := Fingerprint(CategoryMeaning, "app.py", 11, 4, "magic literal")
	if a == b {
		t.Error("different lines produced the same fingerprint")
	}
}

func TestFingerprintIgnoresDescriptionSuffix(t *testing.T) {
	long := "this description is longer than forty characters and keeps going"
	a := Fingerprint(CategoryName, "x.py", 1, 1, long)
	b := Fingerprint(CategoryName, "x.py", 1, 1, long+" with extra detail")
	if a != b {
		t.Error("suffix beyond the prefix window changed the fingerprint")
	}
}

func TestSourceFingerprint(t *testing.T) {
	a := SourceFingerprint([]byte("x = 1\n"))
	b := SourceFingerprint([]byte("x = 1\n"))
	c := SourceFingerprint([]byte("x = 2\n"))
	if a != b {
		t.Error("identical content produced different fingerprints")
	}
	if a == c {
		t.Error("different content produced the same fingerprint")
	}
}

func TestSeverityOrdering(t *testing.T) {
	order := []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Level() <= order[i-1].Level() {
			t.Errorf("%s should rank above %s", order[i], order[i-1])
		}
	}
	if Severity("bogus").Level() != 0 {
		t.Error("unknown severity should rank 0")
	}
}

func TestDeduplicateViolations(t *testing.T) {
	v1 := NewViolation(CategoryMeaning, SeverityLow, "a.py", 3, 1, "magic literal '42'")
	v2 := NewViolation(CategoryMeaning, SeverityLow, "a.py", 3, 1, "magic literal '42'")
	v3 := NewViolation(CategoryMeaning, SeverityLow, "a.py", 4, 1, "magic literal '42'")

	result := DeduplicateViolations([]*Violation{v1, v2, v3})
	if len(result) != 2 {
		t.Fatalf("expected 2 unique violations, got %d", len(result))
	}
	if result[0] != v1 || result[1] != v3 {
		t.Error("dedupe should preserve first-seen order")
	}
}

func TestSortViolationsBySeverity(t *testing.T) {
	low := NewViolation(CategoryName, SeverityLow, "a.py", 1, 1, "low")
	critical := NewViolation(CategoryAlgorithm, SeverityCritical, "a.py", 9, 1, "critical")
	medium := NewViolation(CategoryValue, SeverityMedium, "a.py", 5, 1, "medium")

	violations := []*Violation{low, critical, medium}
	SortViolations(violations, SortBySeverity)

	if violations[0] != critical || violations[2] != low {
		t.Errorf("expected critical first and low last, got %v", violations)
	}
}

func TestSortViolationsByLocation(t *testing.T) {
	later := NewViolation(CategoryName, SeverityLow, "b.py", 2, 1, "later")
	earlier := NewViolation(CategoryName, SeverityLow, "a.py", 9, 1, "earlier")

	violations := []*Violation{later, earlier}
	SortViolations(violations, SortByLocation)

	if violations[0] != earlier {
		t.Error("expected a.py to sort before b.py")
	}
}

func TestCategoryWeightOrdering(t *testing.T) {
	// Identity is the strongest form, name the weakest
	if CategoryWeight(CategoryIdentity) <= CategoryWeight(CategoryName) {
		t.Error("identity should outweigh name")
	}
	for _, c := range AllCategories {
		if CategoryWeight(c) <= 0 {
			t.Errorf("category %s has non-positive weight", c)
		}
	}
}
