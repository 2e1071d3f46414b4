// Package export writes the cleaned, classified table and its series to disk
package export

import (
	"strconv"

	"github.com/psantana5/leadtime/pkg/models"
)

// TimestampLayout keeps sub-second precision so a re-ingested export yields
// the same lead times
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// Header returns the column order of the cleaned table: the two timestamps,
// the passthrough columns, then the derived columns
func Header(extra []string) []string {
	h := make([]string, 0, 2+len(extra)+len(models.DerivedColumns))
	h = append(h, models.ColumnCreatedAt, models.ColumnDeliveredAt)
	h = append(h, extra...)
	return append(h, models.DerivedColumns...)
}

// Row renders r in Header order
func Row(r models.Record, extra []string) []string {
	row := make([]string, 0, 2+len(extra)+len(models.DerivedColumns))
	row = append(row, r.CreatedAt.Format(TimestampLayout), r.DeliveredAt.Format(TimestampLayout))
	for _, col := range extra {
		row = append(row, r.Extra[col])
	}
	return append(row,
		formatHours(r.DeliveryHours),
		formatHours(r.RawLeadTimeHours),
		formatHours(r.LeadTimeHours),
		strconv.FormatBool(r.Adjusted),
		strconv.FormatBool(r.Capped),
		string(r.OnTime),
		strconv.Itoa(r.HourCreated()),
		r.DateCreated(),
		string(r.Window),
		string(r.SLA),
	)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
