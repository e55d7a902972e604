package registry

import "github.com/go-sod/knn/internal/geom"

type Config struct {
	DefaultK        int                   `envconfig:"KNN_DEFAULT_K" default:"3"`
	DefaultDistance geom.DistanceFuncType `envconfig:"KNN_DEFAULT_DISTANCE" default:"EUCLIDEAN"`
	// zero means GOMAXPROCS
	MaxConcurrency int `envconfig:"KNN_PREDICT_CONCURRENCY" default:"0"`
}
