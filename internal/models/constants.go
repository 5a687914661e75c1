package models

// Unclassified is the synthetic bucket for transactions matching no keyword.
const Unclassified = "Unclassified"

// Date layouts used in reports and file names.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutHeadline = "January 02, 2006"
	MonthFileLayout    = "January 2006"
)

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
