package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionEnroll       = "ENROLLMENT_CREATE"
	AuditActionReassign     = "ENROLLMENT_REASSIGN"
	AuditActionWithdraw     = "ENROLLMENT_WITHDRAW"
	AuditActionUserCreate   = "USER_CREATE"
	AuditActionUserUpdate   = "USER_UPDATE"
	AuditActionUserDelete   = "USER_DELETE"
	AuditActionRoleCreate   = "ROLE_CREATE"
	AuditActionRoleDelete   = "ROLE_DELETE"
	AuditActionCatalogWrite = "CATALOG_WRITE"
)

// AuditLog represents an audit trail record in the help schema.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LogLevel classifies system log entries.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// SystemLog is an operational event recorded by the help schema.
type SystemLog struct {
	ID        string    `db:"id" json:"id"`
	Level     LogLevel  `db:"level" json:"level"`
	Source    string    `db:"source" json:"source"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
