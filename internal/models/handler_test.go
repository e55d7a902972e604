package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/registry"
)

func TestHandler(t *testing.T) {
	t.Parallel()
	reg := registry.New(nil)
	for _, name := range []string{"b", "a"} {
		if _, err := reg.Fit(context.Background(), name, 1, "", dataset.FromClasses(
			dataset.Class{Label: "x", Points: []geom.Point{{1}}},
		)); err != nil {
			t.Fatalf("unable to fit: %v", err)
		}
	}
	h, err := NewHandler(reg)
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status got: %d", w.Code)
	}
	var resp response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	if len(resp.Models) != 2 || resp.Models[0].Name != "a" || resp.Models[1].Name != "b" {
		t.Errorf("listed models got: %+v", resp.Models)
	}

	tests := []struct {
		name     string
		method   string
		target   string
		expected int
	}{
		{name: "delete", method: http.MethodDelete, target: "/models?name=a", expected: http.StatusNoContent},
		{name: "delete_again", method: http.MethodDelete, target: "/models?name=a", expected: http.StatusNotFound},
		{name: "delete_without_name", method: http.MethodDelete, target: "/models", expected: http.StatusBadRequest},
		{name: "wrong_method", method: http.MethodPost, target: "/models", expected: http.StatusMethodNotAllowed},
	}
	for _, test := range tests {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(test.method, test.target, nil))
		if w.Code != test.expected {
			t.Errorf("%s: status got: %d, expected: %d", test.name, w.Code, test.expected)
		}
	}
	if len(reg.Models()) != 1 {
		t.Errorf("models after delete got: %+v", reg.Models())
	}
}
