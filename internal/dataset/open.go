package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
)

// ErrUnsupportedFormat is returned by Open for an unknown file extension.
var ErrUnsupportedFormat = errors.New("dataset: unsupported format")

// Open loads a dataset file, choosing the reader by extension: .json, .csv
// or .xlsx. sheet only applies to workbooks.
func Open(path, sheet string) (dashboard.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return dashboard.Dataset{}, fmt.Errorf("dataset: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodeJSON(f)
	case ".csv":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, sheet)
	default:
		return dashboard.Dataset{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
