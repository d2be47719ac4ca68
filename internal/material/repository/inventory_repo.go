package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) CreateWarehouse(w *entity.Warehouse) error {
	return r.db.Create(w).Error
}

func (r *InventoryRepository) GetWarehouse(id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.db.Where("id = ?", id).First(&w).Error
	return &w, err
}

func (r *InventoryRepository) GetWarehouseByCode(code string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.db.Where("code = ?", code).First(&w).Error
	return &w, err
}

func (r *InventoryRepository) ListWarehouses() ([]entity.Warehouse, error) {
	var warehouses []entity.Warehouse
	err := r.db.Where("is_active = true").Order("code ASC").Find(&warehouses).Error
	return warehouses, err
}

func (r *InventoryRepository) GetItem(db *gorm.DB, id string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := db.Where("id = ?", id).First(&item).Error
	return &item, err
}

// LockItem reads an inventory item under SELECT ... FOR UPDATE so a ledger
// mutation can check and write balances without racing a concurrent writer.
func (r *InventoryRepository) LockItem(tx *gorm.DB, id string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&item).Error
	return &item, err
}

// LockItemByKey locks a stock position by its natural key.
func (r *InventoryRepository) LockItemByKey(tx *gorm.DB, warehouseID, materialCode, size, heatNo string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND material_code = ? AND size = ? AND heat_no = ?",
			warehouseID, materialCode, size, heatNo).
		First(&item).Error
	return &item, err
}

type InventoryListParams struct {
	WarehouseID  string
	MaterialCode string
	Keyword      string
	LowStock     bool
	Page         int
	Size         int
}

func (r *InventoryRepository) List(params InventoryListParams) ([]entity.InventoryItem, int64, error) {
	query := r.db.Model(&entity.InventoryItem{})
	if params.WarehouseID != "" {
		query = query.Where("warehouse_id = ?", params.WarehouseID)
	}
	if params.MaterialCode != "" {
		query = query.Where("material_code = ?", params.MaterialCode)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("material_code ILIKE ? OR description ILIKE ?", kw, kw)
	}
	if params.LowStock {
		query = query.Where("available_qty < min_stock_level AND min_stock_level > 0")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.InventoryItem
	err := query.Preload("Warehouse").Order("material_code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&items).Error
	return items, total, err
}

func (r *InventoryRepository) ListTransactions(inventoryItemID string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	query := r.db.Model(&entity.InventoryTransaction{})
	if inventoryItemID != "" {
		query = query.Where("inventory_item_id = ?", inventoryItemID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var txs []entity.InventoryTransaction
	err := query.Order("transaction_date DESC, created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&txs).Error
	return txs, total, err
}

// StockSummary is one row of the per-warehouse valuation report.
type StockSummary struct {
	WarehouseID string  `json:"warehouse_id"`
	ItemCount   int     `json:"item_count"`
	TotalQty    float64 `json:"total_qty"`
	TotalValue  float64 `json:"total_value"`
}

func (r *InventoryRepository) Summarize(warehouseID string) ([]StockSummary, error) {
	query := r.db.Model(&entity.InventoryItem{}).
		Select("warehouse_id, COUNT(*) AS item_count, SUM(physical_qty) AS total_qty, SUM(total_value) AS total_value").
		Group("warehouse_id")
	if warehouseID != "" {
		query = query.Where("warehouse_id = ?", warehouseID)
	}
	var rows []StockSummary
	err := query.Scan(&rows).Error
	return rows, err
}

func (r *InventoryRepository) GetLowStock() ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem
	err := r.db.Where("available_qty < min_stock_level AND min_stock_level > 0").
		Preload("Warehouse").
		Find(&items).Error
	return items, err
}

func (r *InventoryRepository) DB() *gorm.DB {
	return r.db
}
