package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sod/knn/internal/classifier"
	"github.com/go-sod/knn/internal/geom"
)

const colorsTOML = `
blue = [[2, 4], [1, 3], [2, 3], [3, 2], [2, 1]]
orange = [[5, 6], [4, 5], [4, 6], [6, 6], [5, 4]]
`

const colorsJSON = `{"blue": [[2,4],[1,3],[2,3],[3,2],[2,1]], "orange": [[5,6],[4,5],[4,6],[6,6],[5,4]]}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("unable to write %s: %v", path, err)
	}
	return path
}

func TestParsePoint(t *testing.T) {
	t.Parallel()
	p, err := parsePoint(" 3, 3.5 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Equal(geom.Point{3, 3.5}) {
		t.Errorf("parsed point got: %v", p)
	}
	if _, err := parsePoint("3,x"); err == nil {
		t.Errorf("expected an error for a non numeric coordinate")
	}
}

func TestRun(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		opts     func(t *testing.T) options
		expected string
		wantErr  error
	}{
		{
			name: "toml",
			opts: func(t *testing.T) options {
				return options{k: 3, distance: "euclidean", dataPath: writeFile(t, "set.toml", colorsTOML),
					queries: queries{{3, 3}, {4, 5}}}
			},
			expected: "[3 3] -> blue\n[4 5] -> orange\n",
		},
		{
			name: "json_with_plot",
			opts: func(t *testing.T) options {
				return options{k: 1, distance: "EUCLIDEAN", dataPath: writeFile(t, "set.json", colorsJSON),
					plotPath: filepath.Join(t.TempDir(), "plot.png"), queries: queries{{4, 5}}}
			},
			expected: "[4 5] -> orange\n",
		},
		{
			name: "dimension_mismatch",
			opts: func(t *testing.T) options {
				return options{k: 3, dataPath: writeFile(t, "set.toml", colorsTOML), queries: queries{{3, 3, 3}}}
			},
			wantErr: classifier.ErrDimensionMismatch,
		},
		{
			name: "invalid_k",
			opts: func(t *testing.T) options {
				return options{k: 0, dataPath: writeFile(t, "set.toml", colorsTOML), queries: queries{{3, 3}}}
			},
			wantErr: classifier.ErrInvalidParameter,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			err := run(context.Background(), test.opts(t), &out)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Errorf("run error got: %v, expected: %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.String() != test.expected {
				t.Errorf("output got: %q, expected: %q", out.String(), test.expected)
			}
		})
	}
}

func TestRun_Synthetic(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := run(context.Background(), options{k: 5, synthetic: 3, queries: queries{{5, 0}}}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "-> class-0") {
		t.Errorf("query at the first ring center got: %q", out.String())
	}
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()
	if err := run(context.Background(), options{k: 3, queries: queries{{1, 1}}}, &bytes.Buffer{}); err == nil {
		t.Errorf("expected an error without -data or -synthetic")
	}
	if err := run(context.Background(), options{k: 3, synthetic: 2}, &bytes.Buffer{}); err == nil {
		t.Errorf("expected an error without -query")
	}
}
