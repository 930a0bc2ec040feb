package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"
	"hospital-route-service/internal/ports"
	"hospital-route-service/internal/registry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const buildOp = "build matrix"

// MatrixBuilder runs the one-shot batch that turns the node registry into
// the persisted dataset and its tabular mirrors.
//
// It issues exactly one matrix call per run and writes nothing unless the
// response is complete and square. It is not safe to run two builds against
// the same output location concurrently.
type MatrixBuilder struct {
	Provider    ports.MatrixProvider
	Writer      ports.DatasetWriter
	Profile     string
	GeneratedBy string

	Now   func() time.Time
	NewID func() string
}

func NewMatrixBuilder(provider ports.MatrixProvider, writer ports.DatasetWriter, profile string) *MatrixBuilder {
	return &MatrixBuilder{
		Provider:    provider,
		Writer:      writer,
		Profile:     profile,
		GeneratedBy: "matrixgen",
		Now:         time.Now,
		NewID:       uuid.NewString,
	}
}

// Build fetches the pairwise matrix for nodes and persists the dataset.
// Every failure is a *domain.Error of kind BuildAbort.
func (b *MatrixBuilder) Build(ctx context.Context, nodes []domain.Node) (_ *domain.Dataset, err error) {
	defer obs.Time(ctx, "services.MatrixBuilder.Build")(&err)

	logger := obs.FromContext(ctx)

	if b.Provider == nil || b.Writer == nil {
		return nil, domain.BuildAbort(buildOp, "builder is missing its provider or writer", nil)
	}

	if err := registry.Validate(nodes); err != nil {
		return nil, domain.BuildAbort(buildOp, "invalid node registry", err)
	}

	n := len(nodes)
	locations := registry.Locations(nodes)

	logger.Info("requesting matrix", zap.Int("n_locations", n), zap.String("profile", b.Profile))

	res, err := b.Provider.Matrix(ctx, locations)
	if err != nil {
		return nil, domain.BuildAbort(buildOp, "matrix call failed", err)
	}
	if res == nil {
		return nil, domain.BuildAbort(buildOp, "matrix call returned no result", nil)
	}

	if res.Distances == nil || res.Durations == nil {
		return nil, domain.BuildAbort(buildOp, fmt.Sprintf(
			"missing distances/durations in response (distances present=%t, durations present=%t)",
			res.Distances != nil, res.Durations != nil,
		), nil)
	}

	distances, err := denseMatrix("distances", res.Distances, n)
	if err != nil {
		return nil, domain.BuildAbort(buildOp, "malformed matrix", err)
	}
	durations, err := denseMatrix("durations", res.Durations, n)
	if err != nil {
		return nil, domain.BuildAbort(buildOp, "malformed matrix", err)
	}

	ds := b.assemble(nodes, distances, durations)

	if err := b.Writer.WriteAll(ctx, ds); err != nil {
		return nil, domain.BuildAbort(buildOp, "write artifacts", err)
	}

	logger.Info("matrix build complete",
		zap.String("run_id", ds.Meta.RunID),
		zap.Int("n_locations", n),
	)
	return ds, nil
}

func (b *MatrixBuilder) assemble(nodes []domain.Node, distances, durations [][]float64) *domain.Dataset {
	hospitals := make(map[string]domain.Node, len(nodes))
	for _, node := range nodes {
		hospitals[strconv.Itoa(node.ID)] = node
	}

	legend := make(map[domain.RoadClass]string, len(registry.RoadClassLegend))
	for k, v := range registry.RoadClassLegend {
		legend[k] = v
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	newID := uuid.NewString
	if b.NewID != nil {
		newID = b.NewID
	}

	return &domain.Dataset{
		Meta: domain.Meta{
			GeneratedBy: b.GeneratedBy,
			GeneratedAt: now().UTC(),
			RunID:       newID(),
			Profile:     b.Profile,
			NLocations:  len(nodes),
			Notes:       registry.Notes,
			RoadClasses: legend,
			BBox:        registry.BBox(nodes),
		},
		Hospitals: hospitals,
		Matrices: domain.Matrices{
			DistancesM: distances,
			DurationsS: durations,
		},
	}
}

// denseMatrix checks that m is n×n with every cell present. Cells are
// copied without rounding or unit conversion.
func denseMatrix(name string, m [][]*float64, n int) ([][]float64, error) {
	if len(m) != n {
		return nil, fmt.Errorf("%s: got %d rows, want %d", name, len(m), n)
	}

	var errs []error
	out := make([][]float64, n)
	for i, row := range m {
		if len(row) != n {
			errs = append(errs, fmt.Errorf("%s: row %d has %d columns, want %d", name, i, len(row), n))
			continue
		}
		out[i] = make([]float64, n)
		for j, cell := range row {
			if cell == nil {
				errs = append(errs, fmt.Errorf("%s: cell [%d][%d] is missing", name, i, j))
				continue
			}
			out[i][j] = *cell
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
