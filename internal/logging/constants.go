package logging

// Standardized field names for structured logging.
const (
	FieldFile         = "file_path"
	FieldCategory     = "category"
	FieldKeyword      = "keyword"
	FieldDescription  = "description"
	FieldRow          = "row"
	FieldOperation    = "operation"
	FieldError        = "error"
	FieldCount        = "count"
	FieldTotal        = "total"
	FieldWindowDays   = "window_days"
	FieldAnchor       = "anchor"
	FieldBudget       = "budget"
	FieldMonths       = "months"
	FieldAttempt      = "attempt"
	FieldChannel      = "channel_id"
	FieldOutputFile   = "output_file"
	FieldUnclassified = "unclassified"
)
