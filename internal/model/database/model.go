package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/model"
)

var bucketModels = []byte("models")

var ErrNotFound = errors.New("model not found")

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

// Save stores the model under its name, replacing a previous revision.
func (db *DB) Save(_ context.Context, m model.Model) error {
	bytes, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model %s: %w", m.Name, err)
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketModels)
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(m.Name), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *DB) Find(_ context.Context, name string) (model.Model, error) {
	var m model.Model
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &m); err != nil {
			return fmt.Errorf("json unmarshal error, %w", err)
		}
		return nil
	}); err != nil {
		return model.Model{}, fmt.Errorf("view transaction error: %w", err)
	}

	return m, nil
}

// FindAll returns every stored model ordered by name.
func (db *DB) FindAll(_ context.Context) ([]model.Model, error) {
	var list []model.Model
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var m model.Model
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("json unmarshal error for %s, %w", k, err)
			}
			list = append(list, m)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return list, nil
}

func (db *DB) Delete(_ context.Context, name string) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b == nil || b.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(name))
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}
