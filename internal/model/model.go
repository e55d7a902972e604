// Package model describes a named, fitted classifier as it is persisted.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
)

// Model is the persisted form of a fitted classifier. ID changes on every fit.
type Model struct {
	ID        uuid.UUID                `json:"id"`
	Name      string                   `json:"name"`
	K         int                      `json:"k"`
	Distance  geom.DistanceFuncType    `json:"distance"`
	Data      *dataset.LabeledPointSet `json:"data"`
	CreatedAt time.Time                `json:"createdAt"`
}

func New(name string, k int, distance geom.DistanceFuncType, data *dataset.LabeledPointSet) Model {
	if distance == "" {
		distance = geom.DistanceFuncTypeEuclidean
	}
	return Model{
		ID:        uuid.New(),
		Name:      name,
		K:         k,
		Distance:  distance,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}
