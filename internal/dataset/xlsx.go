package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
)

// ReadXLSX reads a dataset from a workbook sheet laid out like the CSV
// export. An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string) (dashboard.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dashboard.Dataset{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return dashboard.Dataset{}, fmt.Errorf("%w: sheet %q not found", ErrMalformed, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dashboard.Dataset{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromRecords(rows)
}
