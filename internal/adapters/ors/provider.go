// Package ors is the OpenRouteService adapter for the matrix and directions ports.
package ors

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"hospital-route-service/internal/config"
)

// Provider implements MatrixProvider and DirectionsProvider using OpenRouteService.
//
// Matrix calls are retried on transient failures (429, 5xx, network errors);
// directions calls are issued once. Each attempt is bounded by the
// configured per-call timeout.
//
// The provider holds no mutable state and is safe for concurrent use.
type Provider struct {
	matrixSession     *http.Client
	directionsSession *http.Client
	apiKey            string
	baseURL           string
	profile           string
	maxAttempts       int
	backoff           time.Duration
}

func NewProvider(cfg config.ORSConfig) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MatrixTimeout <= 0 || cfg.DirectionsTimeout <= 0 {
		return nil, errors.New("ORS timeouts must be positive")
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Provider{
		matrixSession:     &http.Client{Timeout: cfg.MatrixTimeout},
		directionsSession: &http.Client{Timeout: cfg.DirectionsTimeout},
		apiKey:            cfg.APIKey,
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		profile:           cfg.Profile,
		maxAttempts:       maxAttempts,
		backoff:           200 * time.Millisecond,
	}, nil
}

func (o *Provider) Profile() string { return o.profile }
