package ors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hospital-route-service/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orsRoute = `{
  "type": "FeatureCollection",
  "bbox": [123.577, -10.221, 123.586, -10.168],
  "features": [{
    "bbox": [123.577, -10.221, 123.586, -10.168],
    "type": "Feature",
    "properties": {"summary": {"distance": 7350.5, "duration": 612.3}, "way_points": [0, 2]},
    "geometry": {"type": "LineString", "coordinates": [[123.577964, -10.220964], [123.5801, -10.2], [123.585788, -10.168121]]}
  }],
  "metadata": {"service": "routing"}
}`

func TestDirectionsReturnsFirstGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/directions/driving-car/geojson", r.URL.Path)

		var body directionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.False(t, body.Instructions)
		assert.True(t, body.Geometry)
		assert.Equal(t, kupangPair[0].CoordsToList(), body.Coordinates[0])
		assert.Equal(t, kupangPair[1].CoordsToList(), body.Coordinates[1])

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(orsRoute))
	}))
	defer srv.Close()

	g, err := newTestProvider(t, srv).Directions(context.Background(), kupangPair)
	require.NoError(t, err)

	want := [][]float64{{123.577964, -10.220964}, {123.5801, -10.2}, {123.585788, -10.168121}}
	assert.True(t, g.IsLineString())
	if diff := cmp.Diff(want, g.LineString); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectionsEmptyFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).Directions(context.Background(), kupangPair)
	assert.True(t, domain.IsKind(err, domain.KindNoRoute), "got %v", err)
}

func TestDirectionsProviderErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).Directions(context.Background(), kupangPair)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindProvider, de.Kind)
	assert.Equal(t, http.StatusTooManyRequests, de.Status)
	assert.Equal(t, `{"error":"Rate limit exceeded"}`, de.Body)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDirectionsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	p.directionsSession.Timeout = 50 * time.Millisecond

	_, err := p.Directions(context.Background(), kupangPair)
	assert.True(t, domain.IsKind(err, domain.KindTimeout), "got %v", err)
}

func TestDirectionsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	p := newTestProvider(t, srv)
	srv.Close()

	_, err := p.Directions(context.Background(), kupangPair)
	assert.True(t, domain.IsKind(err, domain.KindNetwork), "got %v", err)
}

func TestDirectionsRejectsSinglePoint(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).Directions(context.Background(), kupangPair[:1])
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Zero(t, calls.Load())
}
