// Command knn fits a k-nearest-neighbours classifier on a labeled point set
// and classifies query points, locally or against a running knn service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sod/knn/internal/chart"
	"github.com/go-sod/knn/internal/classifier"
	"github.com/go-sod/knn/internal/client"
	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/shutdown"
)

type queries []geom.Point

func (q *queries) String() string {
	parts := make([]string, len(*q))
	for i, p := range *q {
		parts[i] = fmt.Sprint([]float64(p))
	}
	return strings.Join(parts, " ")
}

// Set parses a comma separated vector such as "3,3".
func (q *queries) Set(s string) error {
	p, err := parsePoint(s)
	if err != nil {
		return err
	}
	*q = append(*q, p)
	return nil
}

func parsePoint(s string) (geom.Point, error) {
	fields := strings.Split(s, ",")
	p := make(geom.Point, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q in %q: %w", f, s, err)
		}
		p = append(p, v)
	}
	return p, nil
}

type options struct {
	k         int
	dataPath  string
	synthetic int
	distance  string
	plotPath  string
	remote    string
	model     string
	token     string
	timeout   time.Duration
	queries   queries
}

func main() {
	var opts options
	flag.IntVar(&opts.k, "k", 3, "number of neighbours consulted")
	flag.StringVar(&opts.dataPath, "data", "", "labeled point set, .toml or .json")
	flag.IntVar(&opts.synthetic, "synthetic", 0, "generate this many two-dimensional blobs instead of reading -data")
	flag.StringVar(&opts.distance, "distance", string(geom.DistanceFuncTypeEuclidean), "EUCLIDEAN, MANHATTAN or CHEBYSHEV")
	flag.StringVar(&opts.plotPath, "plot", "", "write a scatter plot of the set and queries to this file")
	flag.StringVar(&opts.remote, "remote", "", "fit and predict on the knn service at this url")
	flag.StringVar(&opts.model, "model", "default", "model name on the remote service")
	flag.StringVar(&opts.token, "token", os.Getenv("KNN_AUTH_TOKEN"), "bearer token for the remote service")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "remote request timeout")
	flag.Var(&opts.queries, "query", "comma separated query point, repeatable")
	flag.Parse()

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	err := run(ctx, opts, os.Stdout)
	done()
	if err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	set, err := loadSet(opts)
	if err != nil {
		return err
	}
	if len(opts.queries) == 0 {
		return errors.New("at least one -query is required")
	}

	var labels []string
	if opts.remote != "" {
		labels, err = predictRemote(ctx, opts, set)
	} else {
		labels, err = predictLocal(opts, set)
	}
	if err != nil {
		return err
	}

	classified := make([]chart.Query, len(labels))
	for i, label := range labels {
		_, _ = fmt.Fprintf(out, "%v -> %s\n", []float64(opts.queries[i]), label)
		classified[i] = chart.Query{Point: opts.queries[i], Label: label}
	}

	if opts.plotPath != "" {
		title := fmt.Sprintf("k-nearest neighbours, k=%d", opts.k)
		if err := chart.Save(opts.plotPath, title, set, classified...); err != nil {
			return fmt.Errorf("plotting: %w", err)
		}
		logging.FromContext(ctx).Infof("plot written to %s", opts.plotPath)
	}
	return nil
}

func loadSet(opts options) (*dataset.LabeledPointSet, error) {
	if opts.synthetic > 0 {
		return dataset.Blobs(10, 1.5, dataset.RingCenters(opts.synthetic, 5)...), nil
	}
	if opts.dataPath == "" {
		return nil, errors.New("either -data or -synthetic is required")
	}
	f, err := os.Open(opts.dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(opts.dataPath)) {
	case ".toml":
		return dataset.DecodeTOML(f)
	case ".json":
		set := dataset.New()
		if err := json.NewDecoder(f).Decode(set); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", opts.dataPath, err)
		}
		return set, nil
	default:
		return nil, fmt.Errorf("unsupported data file extension %q", filepath.Ext(opts.dataPath))
	}
}

func predictLocal(opts options, set *dataset.LabeledPointSet) ([]string, error) {
	distFunc, err := geom.DistanceFuncFor(geom.DistanceFuncType(strings.ToUpper(opts.distance)))
	if err != nil {
		return nil, err
	}
	c, err := classifier.New(opts.k, classifier.WithDistance(distFunc))
	if err != nil {
		return nil, err
	}
	if err := c.Fit(set); err != nil {
		return nil, err
	}
	labels := make([]string, len(opts.queries))
	for i, q := range opts.queries {
		label, err := c.Predict(q)
		if err != nil {
			return nil, fmt.Errorf("query %v: %w", []float64(q), err)
		}
		labels[i] = label
	}
	return labels, nil
}

func predictRemote(ctx context.Context, opts options, set *dataset.LabeledPointSet) ([]string, error) {
	c, err := client.New(opts.remote, httputil.HTTPClientConfig{BearerToken: opts.token}, opts.timeout)
	if err != nil {
		return nil, err
	}
	distance := geom.DistanceFuncType(strings.ToUpper(opts.distance))
	if _, err := c.Fit(ctx, opts.model, opts.k, distance, set); err != nil {
		return nil, fmt.Errorf("remote fit: %w", err)
	}
	return c.Predict(ctx, opts.model, opts.queries...)
}
