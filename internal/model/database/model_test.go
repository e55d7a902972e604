package database

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewFromEnv(ctx, &database.Config{FileName: filepath.Join(t.TempDir(), "knn.db")})
	if err != nil {
		t.Fatalf("unable to open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(ctx)
	})
	return New(db)
}

func testModel(name string) model.Model {
	return model.New(name, 3, geom.DistanceFuncTypeEuclidean, dataset.FromClasses(
		dataset.Class{Label: "orange", Points: []geom.Point{{5, 6}, {4, 5}}},
		dataset.Class{Label: "blue", Points: []geom.Point{{2, 4}}},
	))
}

func TestDB_SaveFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	m := testModel("colors")
	if err := db.Save(ctx, m); err != nil {
		t.Fatalf("unable to save model: %v", err)
	}
	got, err := db.Find(ctx, "colors")
	if err != nil {
		t.Fatalf("unable to find model: %v", err)
	}
	if got.ID != m.ID || got.K != m.K || got.Distance != m.Distance {
		t.Errorf("found model got: %s, expected: %s", spew.Sdump(got), spew.Sdump(m))
	}
	if !reflect.DeepEqual(got.Data.Labels(), []string{"orange", "blue"}) {
		t.Errorf("label order was not preserved, got: %v", got.Data.Labels())
	}
	if !reflect.DeepEqual(got.Data.Points("orange"), m.Data.Points("orange")) {
		t.Errorf("orange points got: %v, expected: %v", got.Data.Points("orange"), m.Data.Points("orange"))
	}

	refit := testModel("colors")
	if err := db.Save(ctx, refit); err != nil {
		t.Fatalf("unable to save model: %v", err)
	}
	got, err = db.Find(ctx, "colors")
	if err != nil {
		t.Fatalf("unable to find model: %v", err)
	}
	if got.ID != refit.ID {
		t.Errorf("saving under the same name must replace the revision, got: %v, expected: %v", got.ID, refit.ID)
	}
}

func TestDB_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	if _, err := db.Find(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("find on an empty db got: %v, expected: %v", err, ErrNotFound)
	}
	if err := db.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete on an empty db got: %v, expected: %v", err, ErrNotFound)
	}
	list, err := db.FindAll(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("find all on an empty db got: %v, %v", list, err)
	}
}

func TestDB_FindAllDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	for _, name := range []string{"b", "a", "c"} {
		if err := db.Save(ctx, testModel(name)); err != nil {
			t.Fatalf("unable to save model %s: %v", name, err)
		}
	}
	if err := db.Delete(ctx, "b"); err != nil {
		t.Fatalf("unable to delete model: %v", err)
	}
	list, err := db.FindAll(ctx)
	if err != nil {
		t.Fatalf("unable to list models: %v", err)
	}
	var names []string
	for _, m := range list {
		names = append(names, m.Name)
	}
	if !reflect.DeepEqual(names, []string{"a", "c"}) {
		t.Errorf("stored model names got: %v, expected: [a c]", names)
	}
}
