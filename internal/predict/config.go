package predict

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"KNN_PREDICT_REQUEST_TIMEOUT" default:"30s"`
	MaxQueries     int           `envconfig:"KNN_PREDICT_MAX_QUERIES" default:"1000"`
	MaxBodyBytes   int64         `envconfig:"KNN_PREDICT_MAX_BODY_BYTES" default:"8388608"`
}
