package repositories

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FileDatasetWriter persists a Dataset as one JSON document plus one CSV
// mirror per metric, all in Dir.
//
// Every artifact is rendered in memory and written to a temp file in Dir
// first; only when all three temp files are durable are they renamed into
// place. A failure before that point leaves existing artifacts untouched.
type FileDatasetWriter struct {
	Dir         string
	DatasetFile string
	DistanceCSV string
	DurationCSV string
}

func NewFileDatasetWriter(dir, datasetFile, distanceCSV, durationCSV string) *FileDatasetWriter {
	return &FileDatasetWriter{
		Dir:         dir,
		DatasetFile: datasetFile,
		DistanceCSV: distanceCSV,
		DurationCSV: durationCSV,
	}
}

type artifact struct {
	name string
	data []byte
	tmp  string
}

func (w *FileDatasetWriter) WriteAll(ctx context.Context, ds *domain.Dataset) (err error) {
	defer obs.Time(ctx, "dataset.WriteAll")(&err)

	if ds == nil {
		return errors.New("write dataset: dataset is nil")
	}
	if err := domain.ValidateArtifactNames(w.DatasetFile, w.DistanceCSV, w.DurationCSV); err != nil {
		return errors.Wrap(err, "write dataset: invalid artifact names")
	}
	if err := ds.Validate(); err != nil {
		return errors.Wrap(err, "write dataset: refusing inconsistent dataset")
	}

	doc, err := EncodeDataset(ds)
	if err != nil {
		return err
	}
	distCSV, err := EncodeMirror(ds.Matrices.DistancesM)
	if err != nil {
		return errors.Wrap(err, "Can't encode distance mirror")
	}
	durCSV, err := EncodeMirror(ds.Matrices.DurationsS)
	if err != nil {
		return errors.Wrap(err, "Can't encode duration mirror")
	}

	arts := []*artifact{
		{name: w.DistanceCSV, data: distCSV},
		{name: w.DurationCSV, data: durCSV},
		{name: w.DatasetFile, data: doc},
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "Can't create output directory %q", w.Dir)
	}

	defer func() {
		for _, a := range arts {
			if a.tmp != "" {
				_ = os.Remove(a.tmp)
			}
		}
	}()

	for _, a := range arts {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmp, err := writeTemp(w.Dir, a.name, a.data)
		if err != nil {
			return err
		}
		a.tmp = tmp
	}

	// Commit point: from here on each rename replaces a live artifact.
	for i, a := range arts {
		final := filepath.Join(w.Dir, a.name)
		if err := os.Rename(a.tmp, final); err != nil {
			return errors.Wrapf(err, "Can't commit %q (%d of %d artifacts already replaced)", final, i, len(arts))
		}
		a.tmp = ""
	}

	obs.FromContext(ctx).Info("dataset artifacts written",
		zap.String("dir", w.Dir),
		zap.String("dataset", w.DatasetFile),
		zap.String("distance_csv", w.DistanceCSV),
		zap.String("duration_csv", w.DurationCSV),
		zap.Int("n_locations", len(ds.Hospitals)),
	)
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", errors.Wrapf(err, "Can't create temp file for %q", name)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", errors.Wrapf(err, "Can't write %q", name)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", errors.Wrapf(err, "Can't sync %q", name)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "Can't close %q", name)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "Can't chmod %q", name)
	}
	return tmp, nil
}

// EncodeDataset renders the dataset document with 2-space indentation and
// without HTML escaping, so facility names are stored as written.
func EncodeDataset(ds *domain.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return nil, errors.Wrap(err, "Can't encode dataset")
	}
	return buf.Bytes(), nil
}

// EncodeMirror renders one metric matrix as CSV: a loc_index,to_0..to_{N-1}
// header and one from_i row per origin.
func EncodeMirror(m [][]float64) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := make([]string, 0, len(m)+1)
	header = append(header, "loc_index")
	for j := range m {
		header = append(header, fmt.Sprintf("to_%d", j))
	}
	if err := writer.Write(header); err != nil {
		return nil, errors.Wrap(err, "Can't write header")
	}

	for i, row := range m {
		record := make([]string, 0, len(row)+1)
		record = append(record, fmt.Sprintf("from_%d", i))
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return nil, errors.Wrapf(err, "Can't write row %d", i)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "Can't flush csv")
	}
	return buf.Bytes(), nil
}
