package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/go-sod/knn/internal/geom"
)

func TestKey(t *testing.T) {
	t.Parallel()
	rev := uuid.New()
	other := uuid.New()

	k1, err := Key(rev, geom.Point{3, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k2, err := Key(rev, geom.Point{3, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k1 != k2 {
		t.Errorf("the same revision and query must give the same key, got: %s and %s", k1, k2)
	}
	if !strings.HasPrefix(k1, keyPrefix) {
		t.Errorf("key %s has no %s prefix", k1, keyPrefix)
	}

	tests := []struct {
		name  string
		rev   uuid.UUID
		query geom.Point
	}{
		{name: "other_query", rev: rev, query: geom.Point{3, 4}},
		{name: "other_revision", rev: other, query: geom.Point{3, 3}},
		{name: "other_dimensions", rev: rev, query: geom.Point{3, 3, 0}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			k, err := Key(test.rev, test.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if k == k1 {
				t.Errorf("key for %v must differ from %s", test.query, k1)
			}
		})
	}
}

func TestNewFromConfig_Noop(t *testing.T) {
	t.Parallel()
	c, err := NewFromConfig(context.Background(), &Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(Noop); !ok {
		t.Fatalf("cache without redis address got: %T, expected: Noop", c)
	}
	if err := c.Set(context.Background(), "k", "blue"); err != nil {
		t.Errorf("noop set got: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "k"); ok || err != nil {
		t.Errorf("noop get got: ok=%v err=%v, expected a miss", ok, err)
	}
}
