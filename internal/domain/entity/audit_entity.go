package entity

// AuditEntry records an auth action taken at the HTTP boundary.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}
