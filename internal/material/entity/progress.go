package entity

import (
	"time"
)

// ProgressSnapshot is the derived required-vs-consumed record for one take-off
// item. It is fully recomputable from TakeOffItem and the consumption tables
// and is owned exclusively by the reconciliation engine, which replaces a
// line's rows wholesale on every rebuild.
type ProgressSnapshot struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID     string    `json:"project_id" gorm:"type:uuid;not null;index:ix_progress_project_line,priority:1"`
	LineNo        string    `json:"line_no" gorm:"size:100;not null;index:ix_progress_project_line,priority:2"`
	TakeOffItemID string    `json:"take_off_item_id" gorm:"type:uuid;not null;uniqueIndex"`
	ItemCode      string    `json:"item_code" gorm:"size:100"`
	Description   string    `json:"description" gorm:"size:500"`
	Unit          string    `json:"unit" gorm:"size:50"`
	TotalQty      float64   `json:"total_qty" gorm:"type:decimal(14,4)"`
	UsedQty       float64   `json:"used_qty" gorm:"type:decimal(14,4)"`
	RemainingQty  float64   `json:"remaining_qty" gorm:"type:decimal(14,4)"`
	LastUpdated   time.Time `json:"last_updated"`
}

func (ProgressSnapshot) TableName() string {
	return "progress_snapshots"
}
