package entity

import (
	"time"
)

// ActivityLog is the audit trail. Writes are fire-and-forget: a failed audit
// insert never rolls back the operation it describes.
type ActivityLog struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	User      string    `json:"user" gorm:"size:100"`
	Action    string    `json:"action" gorm:"size:100"`
	Details   string    `json:"details" gorm:"type:text"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
