package entity

import (
	"time"
)

// TransactionType constants for the append-only inventory ledger.
const (
	TxTypeIn          = "IN"           // receipt into a warehouse
	TxTypeOut         = "OUT"          // issue out of a warehouse
	TxTypeAdjust      = "ADJUST"       // authoritative stock correction
	TxTypeTransferIn  = "TRANSFER_IN"  // inbound leg of a transfer
	TxTypeTransferOut = "TRANSFER_OUT" // outbound leg of a transfer
)

// Reference types recorded on transactions.
const (
	RefTypeMIV         = "MIV"
	RefTypeInitial     = "INITIAL"
	RefTypeAdjustment  = "ADJUSTMENT"
	RefTypeTransfer    = "TRANSFER"
	RefTypeReservation = "RESERVATION"
)

// Warehouse is a physical store of general inventory.
type Warehouse struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code      string    `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Location  string    `json:"location" gorm:"size:500"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

// InventoryItem is one stock position, identified by warehouse, material
// code, size and heat number.
//
// Invariants, held after every ledger and reservation operation:
//
//	AvailableQty == PhysicalQty - ReservedQty
//	ReservedQty  <= PhysicalQty
//
// Quantity fields are written only by the ledger and reservation services.
type InventoryItem struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WarehouseID string `json:"warehouse_id" gorm:"type:uuid;not null;uniqueIndex:uq_inventory_item,priority:1;index:ix_inventory_wh_material,priority:1"`

	MaterialCode  string `json:"material_code" gorm:"size:100;not null;uniqueIndex:uq_inventory_item,priority:2;index:ix_inventory_wh_material,priority:2"`
	Description   string `json:"description" gorm:"size:500"`
	Size          string `json:"size" gorm:"size:100;uniqueIndex:uq_inventory_item,priority:3"`
	Specification string `json:"specification" gorm:"size:200"`
	HeatNo        string `json:"heat_no" gorm:"size:100;uniqueIndex:uq_inventory_item,priority:4"`

	PhysicalQty  float64 `json:"physical_qty" gorm:"type:decimal(14,4);default:0"`
	ReservedQty  float64 `json:"reserved_qty" gorm:"type:decimal(14,4);default:0"`
	AvailableQty float64 `json:"available_qty" gorm:"type:decimal(14,4);default:0"`

	Unit       string  `json:"unit" gorm:"size:50;default:EA"`
	UnitPrice  float64 `json:"unit_price" gorm:"type:decimal(14,4);default:0"`
	TotalValue float64 `json:"total_value" gorm:"type:decimal(16,4);default:0"`

	MinStockLevel float64 `json:"min_stock_level" gorm:"type:decimal(14,4);default:0"`
	MaxStockLevel float64 `json:"max_stock_level" gorm:"type:decimal(14,4);default:0"`
	ReorderPoint  float64 `json:"reorder_point" gorm:"type:decimal(14,4);default:0"`

	LastReceiptDate *time.Time `json:"last_receipt_date"`
	LastIssueDate   *time.Time `json:"last_issue_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// RecomputeAvailable restores the available-quantity invariant after
// physical or reserved stock changed.
func (i *InventoryItem) RecomputeAvailable() {
	i.AvailableQty = i.PhysicalQty - i.ReservedQty
}

// InventoryTransaction is one append-only ledger entry. Rows are never
// updated or deleted; the history alone can reconstruct current balances.
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WarehouseID     string    `json:"warehouse_id" gorm:"type:uuid;not null;index"`
	InventoryItemID string    `json:"inventory_item_id" gorm:"type:uuid;not null;index"`
	TransactionType string    `json:"transaction_type" gorm:"size:20;not null"`
	TransactionDate time.Time `json:"transaction_date" gorm:"not null;index"`

	Quantity   float64 `json:"quantity" gorm:"type:decimal(14,4);not null"`
	UnitPrice  float64 `json:"unit_price" gorm:"type:decimal(14,4);default:0"`
	TotalValue float64 `json:"total_value" gorm:"type:decimal(16,4);default:0"`

	BalanceBefore float64 `json:"balance_before" gorm:"type:decimal(14,4)"`
	BalanceAfter  float64 `json:"balance_after" gorm:"type:decimal(14,4)"`

	ReferenceType string `json:"reference_type" gorm:"size:50;index:ix_tx_reference,priority:1"`
	ReferenceID   string `json:"reference_id" gorm:"size:64;index:ix_tx_reference,priority:2"`
	ReferenceNo   string `json:"reference_no" gorm:"size:100"`

	Remarks     string    `json:"remarks" gorm:"size:500"`
	PerformedBy string    `json:"performed_by" gorm:"size:100"`
	CreatedAt   time.Time `json:"created_at"`

	Warehouse     *Warehouse     `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	InventoryItem *InventoryItem `json:"inventory_item,omitempty" gorm:"foreignKey:InventoryItemID"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// StockAdjustment documents an authoritative correction of physical stock,
// alongside the ADJUST ledger entry it produced.
type StockAdjustment struct {
	ID              string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	InventoryItemID string `json:"inventory_item_id" gorm:"type:uuid;not null;index"`

	AdjustmentType string    `json:"adjustment_type" gorm:"size:50;not null"` // PHYSICAL_COUNT, CORRECTION, DAMAGE
	AdjustmentDate time.Time `json:"adjustment_date" gorm:"index"`

	QuantityBefore   float64 `json:"quantity_before" gorm:"type:decimal(14,4);not null"`
	QuantityAfter    float64 `json:"quantity_after" gorm:"type:decimal(14,4);not null"`
	QuantityAdjusted float64 `json:"quantity_adjusted" gorm:"type:decimal(14,4);not null"`

	Reason            string `json:"reason" gorm:"size:500;not null"`
	ReferenceDocument string `json:"reference_document" gorm:"size:200"`
	PerformedBy       string `json:"performed_by" gorm:"size:100;not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}
