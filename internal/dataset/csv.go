package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
)

// ReadCSV reads a dataset whose first record names the columns.
func ReadCSV(r io.Reader) (dashboard.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return dashboard.Dataset{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromRecords(records)
}
