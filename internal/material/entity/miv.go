package entity

import (
	"time"
)

// MIVRecord is one material issue voucher: a single act of withdrawing
// material against a project line. Consumption rows of all kinds hang off it.
type MIVRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID     string    `json:"project_id" gorm:"type:uuid;not null;index:ix_miv_project_line,priority:1"`
	LineNo        string    `json:"line_no" gorm:"size:100;not null;index:ix_miv_project_line,priority:2"`
	MIVTag        string    `json:"miv_tag" gorm:"size:100;not null;index"`
	Location      string    `json:"location" gorm:"size:200"`
	Status        string    `json:"status" gorm:"size:50"`
	Comment       string    `json:"comment" gorm:"type:text"`
	RegisteredFor string    `json:"registered_for" gorm:"size:100"`
	RegisteredBy  string    `json:"registered_by" gorm:"size:100"`
	IsComplete    bool      `json:"is_complete" gorm:"default:false"`
	LastUpdated   time.Time `json:"last_updated"`
	CreatedAt     time.Time `json:"created_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (MIVRecord) TableName() string {
	return "miv_records"
}

// TakeOffConsumption links a take-off item to an MIV with the quantity drawn.
// InventoryItemID is set when the material came out of a general warehouse;
// direct and warehouse consumption share this table. Rows are never updated
// in place: an MIV edit deletes and reinserts them.
type TakeOffConsumption struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TakeOffItemID   string    `json:"take_off_item_id" gorm:"type:uuid;not null;index"`
	MIVRecordID     string    `json:"miv_record_id" gorm:"type:uuid;not null;index"`
	InventoryItemID *string   `json:"inventory_item_id" gorm:"type:uuid;index"`
	UsedQty         float64   `json:"used_qty" gorm:"type:decimal(14,4);not null"`
	Timestamp       time.Time `json:"timestamp"`

	TakeOffItem *TakeOffItem `json:"take_off_item,omitempty" gorm:"foreignKey:TakeOffItemID"`
	MIVRecord   *MIVRecord   `json:"miv_record,omitempty" gorm:"foreignKey:MIVRecordID"`
}

func (TakeOffConsumption) TableName() string {
	return "take_off_consumption"
}
