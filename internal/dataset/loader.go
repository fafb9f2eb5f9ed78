package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoDatasets means the data directory produced no usable dataset.
var ErrNoDatasets = errors.New("no datasets could be loaded")

var formats = map[string]string{
	".csv":   "csv",
	".tsv":   "tsv",
	".txt":   "txt",
	".json":  "json",
	".jsonl": "jsonl",
}

// Options 控制目录扫描方式。
type Options struct {
	Recursive bool
}

// DefaultOptions walks subdirectories.
func DefaultOptions() Options {
	return Options{Recursive: true}
}

// LoadError records a file that could not be turned into a dataset.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one directory scan.
type Result struct {
	Datasets []*Dataset
	Errors   []*LoadError
}

// Load scans dir for supported files. Files that fail to parse are reported in
// Result.Errors and do not stop the scan. ErrNoDatasets is returned alongside
// the result when nothing loaded.
func Load(dir string, opts Options) (Result, error) {
	var result Result

	info, err := os.Stat(dir)
	if err != nil {
		return result, fmt.Errorf("read data dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("data dir %s is not a directory", dir)
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Errors = append(result.Errors, &LoadError{File: path, Err: walkErr})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && !opts.Recursive {
				return fs.SkipDir
			}
			return nil
		}

		format, ok := formats[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		name, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			name = d.Name()
		}
		ds, err := LoadFile(path, format)
		if err != nil {
			slog.Warn("skipping dataset", "component", "dataset", "file", path, "error", err)
			result.Errors = append(result.Errors, &LoadError{File: filepath.ToSlash(name), Err: err})
			return nil
		}
		ds.Name = filepath.ToSlash(name)
		result.Datasets = append(result.Datasets, ds)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walk data dir %s: %w", dir, err)
	}

	if len(result.Datasets) == 0 {
		return result, ErrNoDatasets
	}
	slog.Info("datasets loaded", "component", "dataset", "dir", dir, "count", len(result.Datasets), "failed", len(result.Errors))
	return result, nil
}

// LoadFile parses one file in the given format ("csv", "tsv", "txt", "json"
// or "jsonl"). The dataset must end up with a text column.
func LoadFile(path, format string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		columns []string
		rows    [][]string
	)
	switch format {
	case "csv":
		columns, rows, err = parseDelimited(f, ',', true)
	case "tsv":
		columns, rows, err = parseDelimited(f, '\t', false)
	case "txt":
		columns, rows, err = parseLabelledText(f)
	case "json", "jsonl":
		columns, rows, err = parseJSON(f)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if indexOf(columns, ColumnText) < 0 {
		return nil, fmt.Errorf("no %q column among %v", ColumnText, columns)
	}
	if rows == nil {
		rows = [][]string{}
	}

	return &Dataset{
		Name:    filepath.Base(path),
		Path:    path,
		Format:  format,
		Columns: columns,
		Rows:    rows,
	}, nil
}
