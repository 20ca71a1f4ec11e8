package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// scenarioExtensions are the file types FindScenarios picks up.
var scenarioExtensions = []string{".yaml", ".yml", ".cue"}

// NoScenariosError is returned when a directory holds no scenario matching
// the filter.
type NoScenariosError struct {
	Dir    string
	Filter string
}

// Error implements the error interface.
func (e *NoScenariosError) Error() string {
	if e.Filter == "" {
		return fmt.Sprintf("no scenario files found in %s", e.Dir)
	}
	return fmt.Sprintf("no scenario files matching %q found in %s", e.Filter, e.Dir)
}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	return slices.Contains(scenarioExtensions, strings.ToLower(filepath.Ext(path)))
}

// FindScenarios walks dir and returns the scenario files whose base name,
// without extension, matches the glob filter. An empty filter matches
// everything. Paths are returned in lexical order.
func FindScenarios(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsScenarioFile(path) {
			return nil
		}
		if filter != "" {
			base := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
			if ok, _ := filepath.Match(filter, base); !ok {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenario directory: %w", err)
	}

	if len(paths) == 0 {
		return nil, &NoScenariosError{Dir: dir, Filter: filter}
	}
	slices.Sort(paths)
	return paths, nil
}
