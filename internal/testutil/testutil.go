// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/store"
)

// FixturesDir returns the absolute path to testutil/testdata.
func FixturesDir() string {
	// Use runtime.Caller to find the source file location.
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// Comparisons loads the fixture comparisons.
func Comparisons(t testing.TB) []domain.Comparison {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(FixturesDir(), "comparisons.json"))
	if err != nil {
		t.Fatalf("testutil: read fixtures: %v", err)
	}
	var out []domain.Comparison
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("testutil: decode fixtures: %v", err)
	}
	return out
}

// NewStore opens a migrated SQLite store in a temp dir, closed on cleanup.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s := NewEmptyStore(t)
	if _, err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("testutil: migrate: %v", err)
	}
	return s
}

// NewEmptyStore opens a store without running migrations.
func NewEmptyStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "salaryrace.db"))
	if err != nil {
		t.Fatalf("testutil: open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// SeedStore opens a migrated store holding the fixture comparisons.
func SeedStore(t testing.TB) (*store.Store, []domain.Comparison) {
	t.Helper()
	s := NewStore(t)
	fixtures := Comparisons(t)
	seeded := make([]domain.Comparison, 0, len(fixtures))
	for _, c := range fixtures {
		c, err := s.Create(context.Background(), c)
		if err != nil {
			t.Fatalf("testutil: seed %s: %v", c.Slug, err)
		}
		seeded = append(seeded, c)
	}
	return s, seeded
}
