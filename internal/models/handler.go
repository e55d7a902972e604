package models

import (
	"context"
	"net/http"

	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/registry"
)

// Lister lists and removes named models.
type Lister interface {
	Models() []registry.Info
	Delete(ctx context.Context, name string) error
}

type response struct {
	Models []registry.Info `json:"models"`
}

func NewHandler(lister Lister) (http.Handler, error) {
	return &handler{lister: lister}, nil
}

type handler struct {
	lister Lister
}

// ServeHTTP lists models on GET and deletes the model named by ?name= on DELETE.
func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		httputil.RespJSON(ctx, w, http.StatusOK, response{Models: h.lister.Models()})
	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			httputil.RespBadRequest(ctx, w, "name query parameter is required")
			return
		}
		if err := h.lister.Delete(ctx, name); err != nil {
			httputil.RespFor(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.RespError(ctx, w, http.StatusMethodNotAllowed, "method %v is not allowed", r.Method)
	}
}
