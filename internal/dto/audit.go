package dto

// AuditLogQuery captures audit trail listing parameters.
type AuditLogQuery struct {
	AdminID  string `form:"adminId"`
	Action   string `form:"action"`
	Page     int    `form:"page"`
	PageSize int    `form:"limit"`
}
