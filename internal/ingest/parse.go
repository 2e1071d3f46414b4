package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/psantana5/leadtime/pkg/models"
)

// DefaultTimestampLayouts are tried in order when no layouts are configured.
// Fractional seconds are accepted after any layout with a seconds field.
var DefaultTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

// missingMarkers are cell values treated as an empty delivery timestamp
var missingMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"nat":  true,
	"null": true,
	"none": true,
	"na":   true,
	"n/a":  true,
}

// IsMissing reports whether a cell holds no value
func IsMissing(cell string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(cell))]
}

// ParseTimestamp parses a wall-clock timestamp with the first matching layout.
// Timestamps carrying an explicit offset are converted to loc so every value
// shares one clock. When serialDates is set, a bare number is read as an
// Excel serial date.
func ParseTimestamp(cell string, layouts []string, loc *time.Location, serialDates bool) (time.Time, error) {
	value := strings.TrimSpace(cell)
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}

	if serialDates {
		if serial, err := strconv.ParseFloat(value, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid excel serial date: %w", err)
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("no layout matches %q", value)
}

// normalizeHeader folds case and drops separators so "Created At",
// "created_at" and "createdAt" all compare equal
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch r {
		case ' ', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var derivedHeaders = func() map[string]bool {
	m := make(map[string]bool, len(models.DerivedColumns))
	for _, c := range models.DerivedColumns {
		m[normalizeHeader(c)] = true
	}
	return m
}()

// columnLayout locates the timestamp columns and the passthrough columns in a header row
type columnLayout struct {
	created   int
	delivered int
	extra     []int
	names     []string
}

func resolveColumns(header []string, opts Options) (*columnLayout, error) {
	layout := &columnLayout{created: -1, delivered: -1}
	createdKey := normalizeHeader(opts.CreatedColumn)
	deliveredKey := normalizeHeader(opts.DeliveredColumn)

	for i, h := range header {
		key := normalizeHeader(h)
		switch {
		case key == createdKey && layout.created < 0:
			layout.created = i
		case key == deliveredKey && layout.delivered < 0:
			layout.delivered = i
		case key == "" || derivedHeaders[key]:
			continue
		default:
			layout.extra = append(layout.extra, i)
			layout.names = append(layout.names, strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		}
	}

	if layout.created < 0 {
		return nil, &models.MalformedInputError{
			Column: models.ColumnCreatedAt,
			Reason: fmt.Sprintf("required column %q not found in header %v", opts.CreatedColumn, header),
		}
	}
	if layout.delivered < 0 {
		return nil, &models.MalformedInputError{
			Column: models.ColumnDeliveredAt,
			Reason: fmt.Sprintf("required column %q not found in header %v", opts.DeliveredColumn, header),
		}
	}
	return layout, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parseRows turns a header plus data rows into orders. Parsing stops at the
// first malformed row.
func parseRows(rows [][]string, opts Options, serialDates bool) (*Result, error) {
	if len(rows) == 0 {
		return nil, &models.MalformedInputError{Reason: "input has no header row"}
	}
	layout, err := resolveColumns(rows[0], opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Orders:       make([]models.Order, 0, len(rows)-1),
		ExtraColumns: layout.names,
	}

	for i, row := range rows[1:] {
		rowNum := i + 1
		if isBlankRow(row) {
			result.Stats.BlankRows++
			continue
		}

		createdCell := cellAt(row, layout.created)
		if IsMissing(createdCell) {
			return nil, &models.MalformedInputError{
				Row:    rowNum,
				Column: models.ColumnCreatedAt,
				Reason: "creation timestamp is empty",
			}
		}
		created, err := ParseTimestamp(createdCell, opts.TimestampLayouts, opts.Location, serialDates)
		if err != nil {
			return nil, &models.MalformedInputError{
				Row:    rowNum,
				Column: models.ColumnCreatedAt,
				Value:  createdCell,
				Reason: "unparseable timestamp",
				Err:    err,
			}
		}

		o := models.Order{Row: rowNum, CreatedAt: created}

		deliveredCell := cellAt(row, layout.delivered)
		if IsMissing(deliveredCell) {
			result.Stats.MissingDelivery++
		} else {
			delivered, err := ParseTimestamp(deliveredCell, opts.TimestampLayouts, opts.Location, serialDates)
			if err != nil {
				return nil, &models.MalformedInputError{
					Row:    rowNum,
					Column: models.ColumnDeliveredAt,
					Value:  deliveredCell,
					Reason: "unparseable timestamp",
					Err:    err,
				}
			}
			o.DeliveredAt = &delivered
		}

		if len(layout.extra) > 0 {
			o.Extra = make(map[string]string, len(layout.extra))
			for j, idx := range layout.extra {
				o.Extra[layout.names[j]] = cellAt(row, idx)
			}
		}

		result.Orders = append(result.Orders, o)
	}

	result.Stats.Rows = len(result.Orders)
	return result, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
