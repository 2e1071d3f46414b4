package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/psantana5/leadtime/internal/aggregate"
	"github.com/psantana5/leadtime/pkg/models"
)

// Sheet names of the workbook export
const (
	SheetCleaned = "cleaned"
	SheetDaily   = "daily"
	SheetHourly  = "hourly"
)

var bucketHeader = []string{"Orders", "Mean Lead Time", "On Time Ratio", "Late Ratio", "In Scope", "SLA Met", "SLA Not Met", "SLA Met Ratio", "SLA Not Met Ratio"}

// WriteXLSX writes the cleaned table plus the daily and hourly series as a workbook.
// agg may be nil, in which case only the cleaned sheet is written.
func WriteXLSX(path string, records []models.Record, extra []string, agg *aggregate.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetCleaned); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, toCells(Row(r, extra)))
	}
	if err := writeSheet(f, SheetCleaned, Header(extra), rows, bold); err != nil {
		return err
	}

	if agg != nil {
		if err := writeBuckets(f, SheetDaily, "Date", agg.Daily, bold); err != nil {
			return err
		}
		if err := writeBuckets(f, SheetHourly, "Hour", agg.Hourly, bold); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeBuckets(f *excelize.File, sheet, label string, buckets []aggregate.Bucket, style int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := make([][]interface{}, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []interface{}{
			b.Label, b.Orders, b.MeanLeadTimeHours, b.OnTimeRatio, b.LateRatio,
			b.InScope, b.SLAMet, b.SLANotMet, b.SLAMetRatio, b.SLANotMetRatio,
		})
	}
	return writeSheet(f, sheet, append([]string{label}, bucketHeader...), rows, style)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}, style int) error {
	headerCells := toCells(header)
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
