package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-sod/knn/internal/classifier"
	"github.com/go-sod/knn/internal/registry"
)

// StatusFor maps classifier and registry errors to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, classifier.ErrInvalidParameter),
		errors.Is(err, classifier.ErrInvalidInput),
		errors.Is(err, classifier.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, classifier.ErrNotFitted),
		errors.Is(err, registry.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RespFor writes err with the status StatusFor picks, hiding internal errors.
func RespFor(ctx context.Context, w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		RespInternalError(ctx, w, "%v", err)
		return
	}
	RespError(ctx, w, status, "%v", err)
}
