package services

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"hospital-route-service/internal/adapters/ors"
	"hospital-route-service/internal/adapters/repositories"
	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/ports"
	"hospital-route-service/internal/registry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeNodes() []domain.Node {
	return []domain.Node{
		{ID: 0, Name: "RSUP Dr. Ben Mboi", Lon: 123.577, Lat: -10.220, Category: "hospital", RoadClass: domain.RoadArterialPrimary},
		{ID: 1, Name: "RSIA Dedari", Lon: 123.627, Lat: -10.165, Category: "hospital", RoadClass: domain.RoadLocal},
		{ID: 2, Name: "RSU Leona", Lon: 123.627, Lat: -10.170, Category: "hospital", RoadClass: domain.RoadArterialSecondary},
	}
}

var (
	scenarioDistances = [][]float64{{0, 10, 20}, {10, 0, 15}, {20, 15, 0}}
	scenarioDurations = [][]float64{{0, 5, 8}, {5, 0, 6}, {8, 6, 0}}
)

func newTestBuilder(t *testing.T, provider ports.MatrixProvider) (*MatrixBuilder, string) {
	t.Helper()
	dir := t.TempDir()
	writer := repositories.NewFileDatasetWriter(dir, "dataset_with_matrix.json", "distance_matrix.csv", "duration_matrix.csv")

	b := NewMatrixBuilder(provider, writer, "driving-car")
	b.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("WITA", 8*3600)) }
	b.NewID = func() string { return "run-1" }
	return b, dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestBuildWritesConsistentDataset(t *testing.T) {
	provider := ors.NewMockProvider(scenarioDistances, scenarioDurations)
	b, dir := newTestBuilder(t, provider)

	ds, err := b.Build(context.Background(), threeNodes())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.MatrixCalls)
	assert.Equal(t, registry.Locations(threeNodes()), provider.LastLocations)

	assert.Equal(t, 3, ds.Meta.NLocations)
	assert.Equal(t, "matrixgen", ds.Meta.GeneratedBy)
	assert.Equal(t, "driving-car", ds.Meta.Profile)
	assert.Equal(t, "run-1", ds.Meta.RunID)
	assert.Equal(t, time.Date(2026, 1, 1, 19, 4, 5, 0, time.UTC), ds.Meta.GeneratedAt)
	assert.Equal(t, registry.Notes, ds.Meta.Notes)
	assert.Len(t, ds.Meta.RoadClasses, 3)
	assert.Equal(t, []float64{123.577, -10.220, 123.627, -10.165}, ds.Meta.BBox)

	require.Len(t, ds.Hospitals, 3)
	for k, node := range ds.Hospitals {
		assert.Equal(t, k, strconv.Itoa(node.ID))
	}
	assert.Equal(t, "RSIA Dedari", ds.Hospitals["1"].Name)

	if diff := cmp.Diff(scenarioDistances, ds.Matrices.DistancesM); diff != "" {
		t.Fatalf("distances mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(scenarioDurations, ds.Matrices.DurationsS); diff != "" {
		t.Fatalf("durations mismatch (-want +got):\n%s", diff)
	}

	csv, err := os.ReadFile(filepath.Join(dir, "distance_matrix.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(csv), "from_1,10,0,15")

	persisted, err := repositories.NewFileDatasetRepository(filepath.Join(dir, "dataset_with_matrix.json")).Load(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(ds.Matrices, persisted.Matrices); diff != "" {
		t.Fatalf("persisted matrices mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAbortsOnMissingDurations(t *testing.T) {
	provider := ors.NewMockProvider(scenarioDistances, nil)
	b, dir := newTestBuilder(t, provider)

	_, err := b.Build(context.Background(), threeNodes())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBuildAbort))
	assert.Contains(t, err.Error(), "durations present=false")
	assert.Empty(t, listDir(t, dir))
}

func TestBuildAbortCarriesProviderDiagnostic(t *testing.T) {
	provider := &ors.MockProvider{
		MatrixErr: domain.ProviderError("ors.Matrix", 403, `{"error":"Access to this API has been disallowed"}`),
	}
	b, dir := newTestBuilder(t, provider)

	_, err := b.Build(context.Background(), threeNodes())
	require.Error(t, err)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindBuildAbort, de.Kind)
	assert.Equal(t, 403, de.Status)
	assert.Contains(t, err.Error(), "status=403")
	assert.Contains(t, err.Error(), "disallowed")
	assert.Equal(t, 1, provider.MatrixCalls)
	assert.Empty(t, listDir(t, dir))
}

func TestBuildAbortsOnMalformedMatrix(t *testing.T) {
	cases := map[string]*ports.MatrixResult{
		"wrong row count": {
			Distances: ors.Cells([][]float64{{0, 10, 20}, {10, 0, 15}}),
			Durations: ors.Cells(scenarioDurations),
		},
		"ragged row": {
			Distances: ors.Cells(scenarioDistances),
			Durations: ors.Cells([][]float64{{0, 5, 8}, {5, 0}, {8, 6, 0}}),
		},
		"null cell": func() *ports.MatrixResult {
			r := &ports.MatrixResult{Distances: ors.Cells(scenarioDistances), Durations: ors.Cells(scenarioDurations)}
			r.Distances[2][0] = nil
			return r
		}(),
	}

	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			b, dir := newTestBuilder(t, &ors.MockProvider{MatrixResult: res})

			_, err := b.Build(context.Background(), threeNodes())
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindBuildAbort))
			assert.True(t, strings.Contains(err.Error(), "malformed matrix"), err.Error())
			assert.Empty(t, listDir(t, dir))
		})
	}
}

func TestBuildRejectsInvalidRegistry(t *testing.T) {
	provider := ors.NewMockProvider(scenarioDistances, scenarioDurations)
	b, _ := newTestBuilder(t, provider)

	_, err := b.Build(context.Background(), threeNodes()[:1])
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBuildAbort))
	assert.Zero(t, provider.MatrixCalls)
}

func TestBuildKeepsPreviousArtifactsOnAbort(t *testing.T) {
	provider := ors.NewMockProvider(scenarioDistances, scenarioDurations)
	b, dir := newTestBuilder(t, provider)

	_, err := b.Build(context.Background(), threeNodes())
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(dir, "dataset_with_matrix.json"))
	require.NoError(t, err)

	provider.MatrixErr = domain.TimeoutError("ors.Matrix", context.DeadlineExceeded)
	_, err = b.Build(context.Background(), threeNodes())
	require.Error(t, err)

	after, err := os.ReadFile(filepath.Join(dir, "dataset_with_matrix.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.ElementsMatch(t, []string{"dataset_with_matrix.json", "distance_matrix.csv", "duration_matrix.csv"}, listDir(t, dir))
}
