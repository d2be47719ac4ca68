package entity

import (
	"time"
)

// Project groups take-off lines and MIV records under one contract.
type Project struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"size:200;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// TakeOffItem is one planned material requirement of a line, extracted from
// the engineering take-off. Rows are immutable once imported; a re-import
// replaces the whole line.
type TakeOffItem struct {
	ID           string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID    string  `json:"project_id" gorm:"type:uuid;not null;index:ix_takeoff_project_line,priority:1"`
	LineNo       string  `json:"line_no" gorm:"size:100;not null;index:ix_takeoff_project_line,priority:2"`
	Unit         string  `json:"unit" gorm:"size:50"`
	ItemClass    string  `json:"item_class" gorm:"size:50"`
	ItemType     string  `json:"item_type" gorm:"size:100"`
	Description  string  `json:"description" gorm:"size:500"`
	ItemCode     string  `json:"item_code" gorm:"size:100"`
	MaterialCode string  `json:"material_code" gorm:"size:100"`
	P1BoreIn     float64 `json:"p1_bore_in" gorm:"type:decimal(10,3)"`
	P2BoreIn     float64 `json:"p2_bore_in" gorm:"type:decimal(10,3)"`
	P3BoreIn     float64 `json:"p3_bore_in" gorm:"type:decimal(10,3)"`
	LengthM      float64 `json:"length_m" gorm:"type:decimal(14,4)"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(14,4)"`
	Joint        float64 `json:"joint" gorm:"type:decimal(14,4)"`
	InchDia      float64 `json:"inch_dia" gorm:"type:decimal(14,4)"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (TakeOffItem) TableName() string {
	return "take_off_items"
}

// IsPipe reports whether the item's required quantity is measured as length.
func (t *TakeOffItem) IsPipe() bool {
	return IsPipeComponent(t.ItemType)
}

// TotalRequired is the planned quantity: metres for pipe, count otherwise.
func (t *TakeOffItem) TotalRequired() float64 {
	if t.IsPipe() {
		return t.LengthM
	}
	return t.Quantity
}
