package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-sod/knn/internal/buildinfo"
	knn "github.com/go-sod/knn/internal/config"
	"github.com/go-sod/knn/internal/fit"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/models"
	"github.com/go-sod/knn/internal/predict"
	"github.com/go-sod/knn/internal/server"
	"github.com/go-sod/knn/internal/setup"
	"github.com/go-sod/knn/internal/shutdown"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintln(os.Stdout, buildinfo.Info)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	defer logger.Sync() //nolint:errcheck
	if err := run(ctx, done); err != nil {
		done()
		logger.Fatal(err)
	}
	done()
}

func run(ctx context.Context, cancel func()) error {
	logger := logging.FromContext(ctx)
	config := knn.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer func() {
		if err := env.Close(context.Background()); err != nil {
			logger.Errorf("env.Close: %v", err)
		}
	}()

	reg, err := env.ProvideRegistry()()
	if err != nil {
		return fmt.Errorf("registry provider function error: %w", err)
	}
	if err := reg.Load(ctx); err != nil {
		return fmt.Errorf("registry.Load: %w", err)
	}

	fitHandler, err := fit.NewHandler(&config.Fit, reg)
	if err != nil {
		return fmt.Errorf("fit.NewHandler: %w", err)
	}
	predictHandler, err := predict.NewHandler(&config.Predict, reg)
	if err != nil {
		return fmt.Errorf("predict.NewHandler: %w", err)
	}
	modelsHandler, err := models.NewHandler(reg)
	if err != nil {
		return fmt.Errorf("models.NewHandler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/fit", httputil.RequireBearer(config.AuthToken, fitHandler))
	mux.Handle("/predict", httputil.RequireBearer(config.AuthToken, predictHandler))
	mux.Handle("/models", httputil.RequireBearer(config.AuthToken, modelsHandler))
	mux.Handle("/health", server.HandleHealth(ctx))
	if h := env.MetricsHandler(); h != nil {
		mux.Handle("/metrics", h)
	}

	srv, err := server.New(config.SrvAddr, config.MaxConns)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	grpcSrv, err := server.New(config.GRPCAddr, 0)
	if err != nil {
		return fmt.Errorf("server.New grpc: %w", err)
	}
	healthSrv, _ := server.NewHealthGRPC(ctx, buildinfo.Info.Name())

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("http listening on %s", srv.Addr())
		errCh <- srv.ServeHTTPHandler(ctx, mux)
	}()
	go func() {
		logger.Infof("grpc health listening on %s", grpcSrv.Addr())
		errCh <- grpcSrv.ServeGRPC(ctx, healthSrv)
	}()

	var firstErr error
	for i := 0; i < cap(errCh); i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}
