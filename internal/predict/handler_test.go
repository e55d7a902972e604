package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(nil)
	_, err := reg.Fit(context.Background(), "colors", 3, "", dataset.FromClasses(
		dataset.Class{Label: "blue", Points: []geom.Point{{2, 4}, {1, 3}, {2, 3}, {3, 2}, {2, 1}}},
		dataset.Class{Label: "orange", Points: []geom.Point{{5, 6}, {4, 5}, {4, 6}, {6, 6}, {5, 4}}},
	))
	if err != nil {
		t.Fatalf("unable to fit: %v", err)
	}
	return reg
}

func TestHandler(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		method         string
		body           string
		expected       int
		expectedLabels []string
	}{
		{
			name:           "positive",
			method:         http.MethodPost,
			body:           `{"model": "colors", "queries": [[3,3],[4,5],[9,9]]}`,
			expected:       http.StatusOK,
			expectedLabels: []string{"blue", "orange", "orange"},
		},
		{
			name:     "dimension_mismatch",
			method:   http.MethodPost,
			body:     `{"model": "colors", "queries": [[3,3,3]]}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "unknown_model",
			method:   http.MethodPost,
			body:     `{"model": "shapes", "queries": [[3,3]]}`,
			expected: http.StatusNotFound,
		},
		{
			name:     "no_queries",
			method:   http.MethodPost,
			body:     `{"model": "colors", "queries": []}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "too_many_queries",
			method:   http.MethodPost,
			body:     `{"model": "colors", "queries": [[1,1],[1,1],[1,1]]}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "malformed",
			method:   http.MethodPost,
			body:     `{"model": "colors", "queries": [[3,3]`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrong_method",
			method:   http.MethodPut,
			body:     `{}`,
			expected: http.StatusMethodNotAllowed,
		},
	}
	reg := newRegistry(t)
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			h, err := NewHandler(&Config{RequestTimeout: time.Second, MaxQueries: 2 + len(test.expectedLabels), MaxBodyBytes: 1 << 20}, reg)
			if err != nil {
				t.Fatalf("unable to create handler: %v", err)
			}
			r := httptest.NewRequest(test.method, "/predict", strings.NewReader(test.body))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != test.expected {
				t.Fatalf("status got: %d, expected: %d, body: %s", w.Code, test.expected, w.Body.String())
			}
			if test.expectedLabels == nil {
				return
			}
			var resp response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unable to decode response: %v", err)
			}
			if resp.Model != "colors" || !reflect.DeepEqual(resp.Labels, test.expectedLabels) {
				t.Errorf("response got: %+v, expected labels: %v", resp, test.expectedLabels)
			}
		})
	}
}
