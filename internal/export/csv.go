package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/psantana5/leadtime/pkg/models"
)

// WriteCSV writes the cleaned table as CSV
func WriteCSV(w io.Writer, records []models.Record, extra []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(extra)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r, extra)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the cleaned table to path
func WriteCSVFile(path string, records []models.Record, extra []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, records, extra); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
