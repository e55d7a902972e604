package fit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-sod/knn/internal/classifier"
	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/registry"
)

type request struct {
	Model    string                   `json:"model"`
	K        *int                     `json:"k"`
	Distance geom.DistanceFuncType    `json:"distance"`
	Data     *dataset.LabeledPointSet `json:"data"`
}

// Fitter creates or replaces named models.
type Fitter interface {
	Fit(ctx context.Context, name string, k int, distance geom.DistanceFuncType, data *dataset.LabeledPointSet) (registry.Info, error)
}

func NewHandler(cfg *Config, fitter Fitter) (http.Handler, error) {
	return &handler{
		cfg:    cfg,
		fitter: fitter,
	}, nil
}

type handler struct {
	fitter Fitter
	cfg    *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if !httputil.RequireJSONPost(ctx, w, r) {
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	// an omitted k takes the registry default, an explicit one must be positive
	var k int
	if req.K != nil {
		if *req.K <= 0 {
			httputil.RespFor(ctx, w, fmt.Errorf("%w: k must be positive, got %d", classifier.ErrInvalidParameter, *req.K))
			return
		}
		k = *req.K
	}

	info, err := h.fitter.Fit(ctx, req.Model, k, req.Distance, req.Data)
	if err != nil {
		httputil.RespFor(ctx, w, err)
		return
	}

	httputil.RespJSON(ctx, w, http.StatusOK, info)
}
