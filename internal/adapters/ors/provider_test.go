package ors

import (
	"net/http/httptest"
	"testing"
	"time"

	"hospital-route-service/internal/config"
	"hospital-route-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, srv *httptest.Server) *Provider {
	t.Helper()
	p, err := NewProvider(config.ORSConfig{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		Profile:           "driving-car",
		MatrixTimeout:     2 * time.Second,
		DirectionsTimeout: 2 * time.Second,
		MaxAttempts:       3,
	})
	require.NoError(t, err)
	p.backoff = time.Millisecond
	return p
}

var kupangPair = []domain.Coordinates{
	{Lon: 123.57796417364386, Lat: -10.22096445896242},
	{Lon: 123.58578843996008, Lat: -10.168121004087805},
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider(config.ORSConfig{
		BaseURL:           "http://localhost",
		MatrixTimeout:     time.Second,
		DirectionsTimeout: time.Second,
	})
	require.Error(t, err)
}
