package resource

// MIME types of the formats known to the toolkit.
const (
	MimeINI   = "text/x-ini"
	MimeTable = "text/tab-separated-values"
	MimeText  = "text/plain"
	MimeXLIFF = "application/x-xliff+xml"
)
