// Package registry keeps named fitted classifiers for the service.
package registry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-sod/knn/internal/cache"
	"github.com/go-sod/knn/internal/classifier"
	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	"github.com/go-sod/knn/internal/model"
	modelDb "github.com/go-sod/knn/internal/model/database"
)

var ErrModelNotFound = errors.New("model not found")

// MaxNameLen bounds model names, which also tag every metric of the model.
const MaxNameLen = 64

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: model name is empty", classifier.ErrInvalidParameter)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: model name is longer than %d bytes", classifier.ErrInvalidParameter, MaxNameLen)
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: model name %q may only hold letters, digits, '.', '_' and '-'",
			classifier.ErrInvalidParameter, name)
	}
	return nil
}

// Store persists models between restarts.
type Store interface {
	Save(ctx context.Context, m model.Model) error
	FindAll(ctx context.Context) ([]model.Model, error)
	Delete(ctx context.Context, name string) error
}

type ProvideFn func() (*Registry, error)

type Options struct {
	defaultK        int
	defaultDistance geom.DistanceFuncType
	maxConcurrency  int
}

type Option func(*Registry)

func WithDefaultK(k int) Option {
	return func(r *Registry) {
		r.opts.defaultK = k
	}
}

func WithDefaultDistance(d geom.DistanceFuncType) Option {
	return func(r *Registry) {
		r.opts.defaultDistance = d
	}
}

// WithMaxConcurrency bounds the goroutines of one batch predict.
func WithMaxConcurrency(n int) Option {
	return func(r *Registry) {
		r.opts.maxConcurrency = n
	}
}

func WithCache(c cache.Cache) Option {
	return func(r *Registry) {
		r.cache = c
	}
}

func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		cache:   cache.Noop{},
		entries: map[string]*entry{},
		opts: Options{
			defaultK:        3,
			defaultDistance: geom.DistanceFuncTypeEuclidean,
			maxConcurrency:  runtime.GOMAXPROCS(0),
		},
	}
	for _, f := range opts {
		f(r)
	}
	return r
}

// Registry holds fitted classifiers by name. A classifier is never refitted in
// place: Fit builds a new one and swaps it in, so predictions only ever read
// immutable state. Writes hold writeMtx across the store call and the swap,
// so the store and the in-memory map change in the same order.
type Registry struct {
	writeMtx sync.Mutex
	mtx      sync.RWMutex
	opts    Options
	store   Store
	cache   cache.Cache
	entries map[string]*entry
}

type entry struct {
	model      model.Model
	classifier *classifier.Classifier
}

// Info describes a registered model without its training data.
type Info struct {
	Name      string                `json:"model"`
	ID        string                `json:"id"`
	K         int                   `json:"k"`
	Distance  geom.DistanceFuncType `json:"distance"`
	Labels    []string              `json:"labels"`
	Points    int                   `json:"points"`
	CreatedAt time.Time             `json:"createdAt"`
}

func infoOf(m model.Model) Info {
	return Info{
		Name:      m.Name,
		ID:        m.ID.String(),
		K:         m.K,
		Distance:  m.Distance,
		Labels:    m.Data.Labels(),
		Points:    m.Data.Len(),
		CreatedAt: m.CreatedAt,
	}
}

func build(m model.Model) (*classifier.Classifier, error) {
	distFunc, err := geom.DistanceFuncFor(m.Distance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", classifier.ErrInvalidParameter, err)
	}
	c, err := classifier.New(m.K, classifier.WithDistance(distFunc))
	if err != nil {
		return nil, err
	}
	if err := c.Fit(m.Data); err != nil {
		return nil, err
	}
	return c, nil
}

// Fit creates or replaces the named model. Zero k and an empty distance fall
// back to the registry defaults, a negative k is rejected.
func (r *Registry) Fit(ctx context.Context, name string, k int, distance geom.DistanceFuncType, data *dataset.LabeledPointSet) (info Info, err error) {
	if err := checkName(name); err != nil {
		return Info{}, err
	}
	defer func() {
		metrics.RecordFit(ctx, name, data.Len(), err)
	}()
	if k == 0 {
		k = r.opts.defaultK
	}
	if distance == "" {
		distance = r.opts.defaultDistance
	}

	m := model.New(name, k, distance, data.Copy())
	c, err := build(m)
	if err != nil {
		return Info{}, fmt.Errorf("fitting model %s: %w", name, err)
	}

	r.writeMtx.Lock()
	defer r.writeMtx.Unlock()
	if r.store != nil {
		if err := r.store.Save(ctx, m); err != nil {
			return Info{}, fmt.Errorf("saving model %s: %w", name, err)
		}
	}
	r.mtx.Lock()
	r.entries[name] = &entry{model: m, classifier: c}
	r.mtx.Unlock()

	logging.FromContext(ctx).Infof("fitted model %s revision %s: k=%d, %d points", name, m.ID, k, m.Data.Len())
	return infoOf(m), nil
}

func (r *Registry) get(name string) (*entry, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Predict classifies every query against the named model. Labels come back
// in query order; the first failing query fails the batch.
func (r *Registry) Predict(ctx context.Context, name string, queries ...geom.Point) ([]string, error) {
	e, ok := r.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}

	labels := make([]string, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.maxConcurrency)
	for i := range queries {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			label, err := r.predict(gctx, e, queries[i])
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			labels[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *Registry) predict(ctx context.Context, e *entry, query geom.Point) (label string, err error) {
	logger := logging.FromContext(ctx)
	started := time.Now()
	defer func() {
		metrics.RecordPredict(ctx, e.model.Name, started, err)
	}()

	key, err := cache.Key(e.model.ID, query)
	if err != nil {
		return "", err
	}
	if label, ok, err := r.cache.Get(ctx, key); err != nil {
		logger.Warnf("cache get for model %s: %v", e.model.Name, err)
	} else if ok {
		metrics.RecordCacheHit(ctx, e.model.Name)
		return label, nil
	}

	label, err = e.classifier.Predict(query)
	if err != nil {
		return "", err
	}
	if err := r.cache.Set(ctx, key, label); err != nil {
		logger.Warnf("cache set for model %s: %v", e.model.Name, err)
	}
	return label, nil
}

// Models lists registered models ordered by name.
func (r *Registry) Models() []Info {
	r.mtx.RLock()
	list := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, infoOf(e.model))
	}
	r.mtx.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Delete removes the model from the store and then from memory. A failed
// store delete leaves the model registered.
func (r *Registry) Delete(ctx context.Context, name string) error {
	r.writeMtx.Lock()
	defer r.writeMtx.Unlock()
	if _, ok := r.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if r.store != nil {
		if err := r.store.Delete(ctx, name); err != nil && !errors.Is(err, modelDb.ErrNotFound) {
			return fmt.Errorf("deleting model %s: %w", name, err)
		}
	}
	r.mtx.Lock()
	delete(r.entries, name)
	r.mtx.Unlock()
	logging.FromContext(ctx).Infof("deleted model %s", name)
	return nil
}

// Load rebuilds classifiers from the store. Models that no longer fit are
// skipped and logged.
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	logger := logging.FromContext(ctx)
	r.writeMtx.Lock()
	defer r.writeMtx.Unlock()
	list, err := r.store.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("loading models: %w", err)
	}
	entries := make(map[string]*entry, len(list))
	for _, m := range list {
		c, err := build(m)
		if err != nil {
			logger.Errorf("skipping stored model %s: %v", m.Name, err)
			continue
		}
		entries[m.Name] = &entry{model: m, classifier: c}
	}

	r.mtx.Lock()
	for name, e := range entries {
		r.entries[name] = e
	}
	r.mtx.Unlock()

	logger.Infof("loaded %d models", len(entries))
	return nil
}
