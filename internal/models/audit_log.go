package models

import "gorm.io/datatypes"

// AuditLog records every budget-relevant change a user makes to their plan.
type AuditLog struct {
	Base
	UserID       string         `gorm:"not null;index" json:"user_id"`
	Action       string         `gorm:"not null;index" json:"action"`
	ResourceType string         `gorm:"not null" json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	IPAddress    string         `json:"ip_address"`
	Changes      datatypes.JSON `json:"changes,omitempty"`
}
