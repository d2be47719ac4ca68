package entity

import (
	"time"
)

// Reservation states. ACTIVE is the only state with legal transitions:
// to CONSUMED when remaining hits zero, or to CANCELLED on explicit cancel.
const (
	ReservationActive    = "ACTIVE"
	ReservationConsumed  = "CONSUMED"
	ReservationCancelled = "CANCELLED"
)

// MaterialReservation is a hold against an inventory item's available stock.
type MaterialReservation struct {
	ID              string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	InventoryItemID string `json:"inventory_item_id" gorm:"type:uuid;not null;index"`

	ReservationNo string  `json:"reservation_no" gorm:"size:50;not null;uniqueIndex"`
	ReservedQty   float64 `json:"reserved_qty" gorm:"type:decimal(14,4);not null"`
	ConsumedQty   float64 `json:"consumed_qty" gorm:"type:decimal(14,4);default:0"`
	RemainingQty  float64 `json:"remaining_qty" gorm:"type:decimal(14,4)"`

	ProjectID   *string `json:"project_id" gorm:"type:uuid;index:ix_reservation_project,priority:1"`
	MIVRecordID *string `json:"miv_record_id" gorm:"type:uuid"`
	LineNo      string  `json:"line_no" gorm:"size:100;index:ix_reservation_project,priority:2"`

	Status          string     `json:"status" gorm:"size:20;not null;default:ACTIVE;index"`
	ReservationDate time.Time  `json:"reservation_date"`
	ExpiryDate      *time.Time `json:"expiry_date"`

	ReservedBy string    `json:"reserved_by" gorm:"size:100"`
	Remarks    string    `json:"remarks" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	InventoryItem *InventoryItem `json:"inventory_item,omitempty" gorm:"foreignKey:InventoryItemID"`
}

func (MaterialReservation) TableName() string {
	return "material_reservations"
}
