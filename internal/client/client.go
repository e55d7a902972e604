// Package client talks to a running knn service over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/registry"
)

// APIError is a non-2xx answer of the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("knn service answered %d: %s", e.Status, e.Message)
}

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, cfg httputil.HTTPClientConfig, timeout time.Duration) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid service url %q: %w", baseURL, err)
	}
	hc, err := httputil.NewClientFromConfig(cfg, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}, nil
}

type fitRequest struct {
	Model    string                   `json:"model"`
	K        *int                     `json:"k"`
	Distance geom.DistanceFuncType    `json:"distance,omitempty"`
	Data     *dataset.LabeledPointSet `json:"data"`
}

type predictRequest struct {
	Model   string       `json:"model"`
	Queries []geom.Point `json:"queries"`
}

type predictResponse struct {
	Labels []string `json:"labels"`
}

func (c *Client) Fit(ctx context.Context, name string, k int, distance geom.DistanceFuncType, data *dataset.LabeledPointSet) (registry.Info, error) {
	var info registry.Info
	err := c.post(ctx, "/fit", fitRequest{Model: name, K: &k, Distance: distance, Data: data}, &info)
	return info, err
}

func (c *Client) Predict(ctx context.Context, name string, queries ...geom.Point) ([]string, error) {
	var resp predictResponse
	if err := c.post(ctx, "/predict", predictRequest{Model: name, Queries: queries}, &resp); err != nil {
		return nil, err
	}
	return resp.Labels, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", httputil.ContentTypeJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response of %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response of %s: %w", path, err)
	}
	return nil
}
