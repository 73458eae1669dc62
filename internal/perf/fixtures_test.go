package perf

import (
	"fmt"
	"sort"
	"time"

	"github.com/CalibrantLtd/Slido/internal/claims"
	"github.com/CalibrantLtd/Slido/internal/dashboard"
)

var perfCategories = []string{"ATTRITIONAL", "LARGE", "CAT"}

// syntheticDataset returns months of underwriting data starting Jan-2010.
func syntheticDataset(id string, months int) dashboard.Dataset {
	cols := claims.Columns{"months.MONTH": 0, "months.LABEL": 1, "uw_data.GEP_AMOUNT": 2, "uws.GWP_SUM": 3, "uw_data.COMMISSION": 4, "uws.COMMISSION": 5}
	next := 6
	for _, cat := range perfCategories {
		for _, suffix := range []string{"claims_data.%s_inc", "claims_data.%s_paid", "%s_ibnr", "%s_unearned_apriori", "uw_data.%s_MODEL", "uw_data.%s_seasonality"} {
			cols[fmt.Sprintf(suffix, cat)] = next
			next++
		}
	}
	start := time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows := make(claims.Rows, months)
	for i := range rows {
		row := make(claims.Row, next)
		month := start.AddDate(0, i, 0).Format("Jan-2006")
		row[0] = month
		row[1] = month
		row[2] = 1000.0 + float64(i%12)*25
		row[3] = 1200.0 + float64(i%7)*10
		row[4] = 150.0
		row[5] = 160.0
		for c := 6; c < next; c++ {
			row[c] = float64((i*c)%97) + 1
		}
		rows[i] = row
	}
	return dashboard.Dataset{ID: id, Rows: rows, Columns: cols}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
