package predict

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/httputil"
)

type request struct {
	Model   string       `json:"model"`
	Queries []geom.Point `json:"queries"`
}

type response struct {
	Model  string   `json:"model"`
	Labels []string `json:"labels"`
}

// Predictor classifies queries against a named model.
type Predictor interface {
	Predict(ctx context.Context, name string, queries ...geom.Point) ([]string, error)
}

func NewHandler(cfg *Config, predictor Predictor) (http.Handler, error) {
	return &handler{
		cfg:       cfg,
		predictor: predictor,
	}, nil
}

type handler struct {
	predictor Predictor
	cfg       *Config
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

	if len(req.Queries) == 0 {
		httputil.RespBadRequest(ctx, w, "queries must not be empty")
		return
	}
	if len(req.Queries) > h.cfg.MaxQueries {
		httputil.RespBadRequest(ctx, w, "too many queries, max allowed len is %d", h.cfg.MaxQueries)
		return
	}

	labels, err := h.predictor.Predict(ctx, req.Model, req.Queries...)
	if err != nil {
		httputil.RespFor(ctx, w, err)
		return
	}

	httputil.RespJSON(ctx, w, http.StatusOK, response{Model: req.Model, Labels: labels})
}
