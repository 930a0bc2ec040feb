package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateArtifactNames checks the dataset document and both mirror names.
// Each must be a plain, non-empty file name and all three must differ, so a
// build always replaces exactly three distinct files.
func ValidateArtifactNames(dataset, distanceCSV, durationCSV string) error {
	names := []struct{ key, name string }{
		{"dataset file", dataset},
		{"distance csv", distanceCSV},
		{"duration csv", durationCSV},
	}

	var errs []error
	seen := make(map[string]string, len(names))
	for _, n := range names {
		switch {
		case strings.TrimSpace(n.name) == "":
			errs = append(errs, fmt.Errorf("%s name is empty", n.key))
			continue
		case n.name == "." || n.name == ".." || strings.ContainsAny(n.name, `/\`) || filepath.Base(n.name) != n.name:
			errs = append(errs, fmt.Errorf("%s name %q must be a plain file name", n.key, n.name))
			continue
		}
		if prev, ok := seen[n.name]; ok {
			errs = append(errs, fmt.Errorf("%s name %q collides with %s", n.key, n.name, prev))
			continue
		}
		seen[n.name] = n.key
	}
	return errors.Join(errs...)
}
