package models

// Header names of the derived columns in the cleaned table
const (
	ColumnCreatedAt     = "created_at"
	ColumnDeliveredAt   = "delivered_at"
	ColumnDeliveryHours = "Delivery Hours"
	ColumnRawLeadTime   = "Raw Lead Time"
	ColumnLeadTime      = "Lead Time"
	ColumnAdjusted      = "Adjusted"
	ColumnCapped        = "Capped"
	ColumnOnTime        = "On Time"
	ColumnHourCreated   = "Hour Created"
	ColumnDateCreated   = "Date Created"
	ColumnSLAWindow     = "SLA Window"
	ColumnSLA           = "SLA"
)

// DerivedColumns lists the columns the pipeline writes. Readers skip them so a
// cleaned file can be fed back in without duplicating columns.
var DerivedColumns = []string{
	ColumnDeliveryHours,
	ColumnRawLeadTime,
	ColumnLeadTime,
	ColumnAdjusted,
	ColumnCapped,
	ColumnOnTime,
	ColumnHourCreated,
	ColumnDateCreated,
	ColumnSLAWindow,
	ColumnSLA,
}
