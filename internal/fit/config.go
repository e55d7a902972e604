package fit

import (
	"time"
)

type Config struct {
	RequestTimeout time.Duration `envconfig:"KNN_FIT_REQUEST_TIMEOUT" default:"60s"`
	MaxBodyBytes   int64         `envconfig:"KNN_FIT_MAX_BODY_BYTES" default:"67108864"`
}
