package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/psantana5/leadtime/pkg/models"
)

// Supported input formats
const (
	FormatAuto = "auto"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Options controls how a delivery table is read
type Options struct {
	Format           string // auto, csv or xlsx
	Sheet            string // xlsx sheet; empty selects the first sheet
	Delimiter        rune   // csv delimiter; zero selects ','
	CreatedColumn    string
	DeliveredColumn  string
	TimestampLayouts []string
	Location         *time.Location
}

// DefaultOptions returns options for a comma-separated file with
// created_at / delivered_at columns
func DefaultOptions() Options {
	return Options{
		Format:           FormatAuto,
		Delimiter:        ',',
		CreatedColumn:    models.ColumnCreatedAt,
		DeliveredColumn:  models.ColumnDeliveredAt,
		TimestampLayouts: DefaultTimestampLayouts,
		Location:         time.UTC,
	}
}

// Stats counts what the reader saw
type Stats struct {
	Rows            int `json:"rows" yaml:"rows"`                         // orders parsed, including those without delivery
	MissingDelivery int `json:"missing_delivery" yaml:"missing_delivery"` // orders whose delivery cell is empty
	BlankRows       int `json:"blank_rows" yaml:"blank_rows"`             // fully empty lines skipped
}

// Result is the parsed input table
type Result struct {
	Orders       []models.Order
	ExtraColumns []string // passthrough column names in source order
	Stats        Stats
}

// DetectFormat picks a format from the file extension
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("cannot detect input format from extension of %s", path)
	}
}

// Read opens path and parses it with the configured or detected format
func Read(path string, opts Options) (*Result, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		if opts.Delimiter == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
			opts.Delimiter = '\t'
		}
		return ReadCSV(f, opts)
	case FormatXLSX:
		return ReadXLSX(f, opts)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// ReadCSV parses a delimited table with a header row
func ReadCSV(r io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	rows, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &models.MalformedInputError{
				Row:    max(parseErr.Line-1, 0),
				Reason: "invalid csv",
				Err:    err,
			}
		}
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return parseRows(rows, withDefaults(opts), false)
}

// ReadXLSX parses one sheet of a workbook. Date cells stored as serial numbers
// are converted with the 1900 date system.
func ReadXLSX(r io.Reader, opts Options) (*Result, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, &models.MalformedInputError{Reason: "workbook has no sheets"}
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	return parseRows(rows, withDefaults(opts), true)
}

func withDefaults(opts Options) Options {
	if opts.CreatedColumn == "" {
		opts.CreatedColumn = models.ColumnCreatedAt
	}
	if opts.DeliveredColumn == "" {
		opts.DeliveredColumn = models.ColumnDeliveredAt
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return opts
}
