package entity

import (
	"strings"
	"time"
)

// QuantityKind tags how a spool component's stock is measured.
type QuantityKind string

const (
	QuantityLength QuantityKind = "LENGTH" // pipe, metres
	QuantityCount  QuantityKind = "COUNT"  // discrete components, pieces
)

// Quantity is the tagged remaining stock of a spool item. It replaces the
// original scheme of branching on two nullable columns at every call site.
type Quantity struct {
	Kind  QuantityKind `json:"kind"`
	Value float64      `json:"value"`
}

// Unit returns the display unit for the quantity kind.
func (q Quantity) Unit() string {
	if q.Kind == QuantityLength {
		return "m"
	}
	return "pcs"
}

// IsPipeComponent is the single classification predicate deciding whether a
// component is tracked by length. Every length-vs-count decision goes through
// here.
func IsPipeComponent(componentType string) bool {
	return strings.Contains(strings.ToUpper(componentType), "PIPE")
}

// Spool is a pre-fabricated pipe assembly carrying its own component stock.
type Spool struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SpoolID   string    `json:"spool_id" gorm:"size:100;not null;uniqueIndex"`
	RowNo     int       `json:"row_no"`
	LineNo    string    `json:"line_no" gorm:"size:100"`
	SheetNo   int       `json:"sheet_no"`
	Location  string    `json:"location" gorm:"size:200"`
	Command   string    `json:"command" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []SpoolItem `json:"items,omitempty" gorm:"foreignKey:SpoolFK;references:SpoolID"`
}

func (Spool) TableName() string {
	return "spools"
}

// SpoolItem is one component inside a spool. Length is populated for
// pipe-classified components, QtyAvailable for discrete ones.
type SpoolItem struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SpoolFK       string    `json:"spool_fk" gorm:"size:100;not null;index"`
	ComponentType string    `json:"component_type" gorm:"size:100"`
	ClassAngle    float64   `json:"class_angle" gorm:"type:decimal(10,3)"`
	P1Bore        float64   `json:"p1_bore" gorm:"type:decimal(10,3)"`
	P2Bore        float64   `json:"p2_bore" gorm:"type:decimal(10,3)"`
	Material      string    `json:"material" gorm:"size:100"`
	Schedule      string    `json:"schedule" gorm:"size:50"`
	Thickness     float64   `json:"thickness" gorm:"type:decimal(10,3)"`
	Length        float64   `json:"length" gorm:"type:decimal(14,4);default:0"`
	QtyAvailable  float64   `json:"qty_available" gorm:"type:decimal(14,4);default:0"`
	ItemCode      string    `json:"item_code" gorm:"size:100"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Spool *Spool `json:"spool,omitempty" gorm:"foreignKey:SpoolFK;references:SpoolID"`
}

func (SpoolItem) TableName() string {
	return "spool_items"
}

// Remaining returns the item's stock as a tagged quantity.
func (s *SpoolItem) Remaining() Quantity {
	if IsPipeComponent(s.ComponentType) {
		return Quantity{Kind: QuantityLength, Value: s.Length}
	}
	return Quantity{Kind: QuantityCount, Value: s.QtyAvailable}
}

// Apply adds delta to the field selected by the item's quantity kind.
// Callers validate bounds first; quantity fields are owned by the spool
// tracker.
func (s *SpoolItem) Apply(delta float64) {
	if IsPipeComponent(s.ComponentType) {
		s.Length += delta
	} else {
		s.QtyAvailable += delta
	}
}

// SpoolConsumption records a withdrawal of one spool item against an MIV.
type SpoolConsumption struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SpoolItemID string    `json:"spool_item_id" gorm:"type:uuid;not null;index"`
	SpoolID     string    `json:"spool_id" gorm:"size:100;not null;index"`
	MIVRecordID string    `json:"miv_record_id" gorm:"type:uuid;not null;index"`
	UsedQty     float64   `json:"used_qty" gorm:"type:decimal(14,4);not null"`
	Timestamp   time.Time `json:"timestamp"`

	SpoolItem *SpoolItem `json:"spool_item,omitempty" gorm:"foreignKey:SpoolItemID"`
	Spool     *Spool     `json:"spool,omitempty" gorm:"foreignKey:SpoolID;references:SpoolID"`
}

func (SpoolConsumption) TableName() string {
	return "spool_consumption"
}
