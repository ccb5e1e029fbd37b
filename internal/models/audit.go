package models

import "time"

// Audit actions recorded for back-office operations.
const (
	AuditActionLogin                    = "admin_login"
	AuditActionScholarshipCreated       = "scholarship_created"
	AuditActionScholarshipUpdated       = "scholarship_updated"
	AuditActionScholarshipStatusChanged = "scholarship_status_changed"
	AuditActionApplicationStatusChanged = "application_status_changed"
	AuditActionApplicationsExported     = "applications_exported"
)

// AdminLog is one audit trail entry. Writing it must never fail the
// operation it describes.
type AdminLog struct {
	ID         string    `db:"id" json:"id"`
	AdminID    *string   `db:"admin_id" json:"adminId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
