package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService owns warehouse stock. Every mutation locks the stock row,
// updates balances and appends a ledger transaction inside one database
// transaction, so the history always reconciles with the current position.
type LedgerService struct {
	db       *gorm.DB
	repo     *repository.InventoryRepository
	activity *ActivityService
}

func NewLedgerService(db *gorm.DB, repo *repository.InventoryRepository, activity *ActivityService) *LedgerService {
	return &LedgerService{db: db, repo: repo, activity: activity}
}

func (s *LedgerService) List(params repository.InventoryListParams) ([]entity.InventoryItem, int64, error) {
	return s.repo.List(params)
}

func (s *LedgerService) GetItem(id string) (*entity.InventoryItem, error) {
	item, err := s.repo.GetItem(s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	return item, err
}

func (s *LedgerService) ListTransactions(inventoryItemID string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	return s.repo.ListTransactions(inventoryItemID, page, size)
}

func (s *LedgerService) GetLowStock() ([]entity.InventoryItem, error) {
	return s.repo.GetLowStock()
}

func (s *LedgerService) Summarize(warehouseID string) ([]repository.StockSummary, error) {
	return s.repo.Summarize(warehouseID)
}

func (s *LedgerService) CreateWarehouse(w *entity.Warehouse) error {
	return s.repo.CreateWarehouse(w)
}

func (s *LedgerService) ListWarehouses() ([]entity.Warehouse, error) {
	return s.repo.ListWarehouses()
}

type ReceiveRequest struct {
	WarehouseID   string  `json:"warehouse_id" binding:"required"`
	MaterialCode  string  `json:"material_code" binding:"required"`
	Description   string  `json:"description"`
	Size          string  `json:"size"`
	Specification string  `json:"specification"`
	HeatNo        string  `json:"heat_no"`
	Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	Unit          string  `json:"unit"`
	UnitPrice     float64 `json:"unit_price"`
	ReferenceNo   string  `json:"reference_no"`
	Remarks       string  `json:"remarks"`
}

// Receive books stock in. An existing position gets its unit price replaced
// by the weighted average of the old holding and the new receipt; a new
// position is created at the receipt price.
func (s *LedgerService) Receive(ctx context.Context, req ReceiveRequest, userID string) (*entity.InventoryItem, error) {
	now := time.Now()
	unit := req.Unit
	if unit == "" {
		unit = "EA"
	}

	var result *entity.InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.LockItemByKey(tx, req.WarehouseID, req.MaterialCode, req.Size, req.HeatNo)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = &entity.InventoryItem{
				WarehouseID:   req.WarehouseID,
				MaterialCode:  req.MaterialCode,
				Description:   req.Description,
				Size:          req.Size,
				Specification: req.Specification,
				HeatNo:        req.HeatNo,
				Unit:          unit,
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("create inventory item: %w", err)
			}
		} else if err != nil {
			return err
		}

		balanceBefore := item.PhysicalQty

		// Weighted-average price over old holding plus receipt, computed
		// in decimal so repeated receipts do not drift. A zero-price
		// receipt keeps the old price; a priced receipt into an unpriced
		// position takes the receipt price outright.
		oldQty := decimal.NewFromFloat(item.PhysicalQty)
		oldPrice := decimal.NewFromFloat(item.UnitPrice)
		inQty := decimal.NewFromFloat(req.Quantity)
		inPrice := decimal.NewFromFloat(req.UnitPrice)
		if inPrice.IsPositive() {
			if oldPrice.IsPositive() {
				avg := oldQty.Mul(oldPrice).Add(inQty.Mul(inPrice)).Div(oldQty.Add(inQty))
				item.UnitPrice, _ = avg.Round(4).Float64()
			} else {
				item.UnitPrice = req.UnitPrice
			}
		}

		item.PhysicalQty += req.Quantity
		item.RecomputeAvailable()
		item.TotalValue, _ = decimal.NewFromFloat(item.PhysicalQty).
			Mul(decimal.NewFromFloat(item.UnitPrice)).Round(4).Float64()
		item.LastReceiptDate = &now
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}

		ledgerTx := &entity.InventoryTransaction{
			WarehouseID:     item.WarehouseID,
			InventoryItemID: item.ID,
			TransactionType: entity.TxTypeIn,
			TransactionDate: now,
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			TotalValue:      req.Quantity * req.UnitPrice,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    item.PhysicalQty,
			ReferenceType:   entity.RefTypeInitial,
			ReferenceNo:     req.ReferenceNo,
			Remarks:         req.Remarks,
			PerformedBy:     userID,
		}
		if err := tx.Create(ledgerTx).Error; err != nil {
			return fmt.Errorf("create ledger entry: %w", err)
		}

		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(userID, "INVENTORY_RECEIVE",
		fmt.Sprintf("received %.4f %s of %s into warehouse %s", req.Quantity, unit, req.MaterialCode, req.WarehouseID))
	return result, nil
}

type IssueRequest struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"`
	ReferenceType   string  `json:"reference_type"`
	ReferenceID     string  `json:"reference_id"`
	ReferenceNo     string  `json:"reference_no"`
	Remarks         string  `json:"remarks"`
}

// Issue books stock out against available (unreserved) quantity.
func (s *LedgerService) Issue(ctx context.Context, req IssueRequest, userID string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.LockItem(tx, req.InventoryItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("inventory item %s: %w", req.InventoryItemID, ErrNotFound)
		} else if err != nil {
			return err
		}

		if item.AvailableQty < req.Quantity {
			return fmt.Errorf("need %.4f, available %.4f: %w", req.Quantity, item.AvailableQty, ErrInsufficientStock)
		}

		balanceBefore := item.PhysicalQty
		item.PhysicalQty -= req.Quantity
		item.RecomputeAvailable()
		item.TotalValue = item.PhysicalQty * item.UnitPrice
		item.LastIssueDate = &now
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}

		refType := req.ReferenceType
		if refType == "" {
			refType = entity.RefTypeMIV
		}
		ledgerTx := &entity.InventoryTransaction{
			WarehouseID:     item.WarehouseID,
			InventoryItemID: item.ID,
			TransactionType: entity.TxTypeOut,
			TransactionDate: now,
			Quantity:        -req.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalValue:      -req.Quantity * item.UnitPrice,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    item.PhysicalQty,
			ReferenceType:   refType,
			ReferenceID:     req.ReferenceID,
			ReferenceNo:     req.ReferenceNo,
			Remarks:         req.Remarks,
			PerformedBy:     userID,
		}
		return tx.Create(ledgerTx).Error
	})
	if err != nil {
		return err
	}

	s.activity.Log(userID, "INVENTORY_ISSUE",
		fmt.Sprintf("issued %.4f from item %s (%s)", req.Quantity, req.InventoryItemID, req.ReferenceNo))
	return nil
}

type AdjustStockRequest struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required"`
	NewQuantity     float64 `json:"new_quantity" binding:"gte=0"`
	AdjustmentType  string  `json:"adjustment_type" binding:"required"`
	Reason          string  `json:"reason" binding:"required"`
	ReferenceDoc    string  `json:"reference_document"`
}

// AdjustStock sets physical stock to an authoritative counted value and
// records both the adjustment document and the ADJUST ledger entry. The new
// physical quantity may not fall below what is still reserved.
func (s *LedgerService) AdjustStock(ctx context.Context, req AdjustStockRequest, userID string) (*entity.StockAdjustment, error) {
	now := time.Now()
	var adjustment *entity.StockAdjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.LockItem(tx, req.InventoryItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("inventory item %s: %w", req.InventoryItemID, ErrNotFound)
		} else if err != nil {
			return err
		}

		if req.NewQuantity < item.ReservedQty {
			return fmt.Errorf("counted %.4f below reserved %.4f: %w", req.NewQuantity, item.ReservedQty, ErrValidation)
		}

		before := item.PhysicalQty
		delta := req.NewQuantity - before

		item.PhysicalQty = req.NewQuantity
		item.RecomputeAvailable()
		item.TotalValue = item.PhysicalQty * item.UnitPrice
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}

		adjustment = &entity.StockAdjustment{
			InventoryItemID:   item.ID,
			AdjustmentType:    req.AdjustmentType,
			AdjustmentDate:    now,
			QuantityBefore:    before,
			QuantityAfter:     req.NewQuantity,
			QuantityAdjusted:  delta,
			Reason:            req.Reason,
			ReferenceDocument: req.ReferenceDoc,
			PerformedBy:       userID,
		}
		if err := tx.Create(adjustment).Error; err != nil {
			return fmt.Errorf("create adjustment: %w", err)
		}

		ledgerTx := &entity.InventoryTransaction{
			WarehouseID:     item.WarehouseID,
			InventoryItemID: item.ID,
			TransactionType: entity.TxTypeAdjust,
			TransactionDate: now,
			Quantity:        delta,
			UnitPrice:       item.UnitPrice,
			BalanceBefore:   before,
			BalanceAfter:    req.NewQuantity,
			ReferenceType:   entity.RefTypeAdjustment,
			ReferenceID:     adjustment.ID,
			Remarks:         req.Reason,
			PerformedBy:     userID,
		}
		return tx.Create(ledgerTx).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(userID, "INVENTORY_ADJUST",
		fmt.Sprintf("adjusted item %s to %.4f (%s)", req.InventoryItemID, req.NewQuantity, req.Reason))
	return adjustment, nil
}

type TransferRequest struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required"`
	ToWarehouseID   string  `json:"to_warehouse_id" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"`
	Remarks         string  `json:"remarks"`
}

// Transfer moves available stock between warehouses, emitting a
// TRANSFER_OUT/TRANSFER_IN pair that shares one transfer number.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest, userID string) (string, error) {
	now := time.Now()
	transferNo := fmt.Sprintf("TRF-%s", now.Format("20060102-150405.000"))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		src, err := s.repo.LockItem(tx, req.InventoryItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("inventory item %s: %w", req.InventoryItemID, ErrNotFound)
		} else if err != nil {
			return err
		}
		if src.WarehouseID == req.ToWarehouseID {
			return fmt.Errorf("source and destination warehouse are the same: %w", ErrValidation)
		}
		if src.AvailableQty < req.Quantity {
			return fmt.Errorf("need %.4f, available %.4f: %w", req.Quantity, src.AvailableQty, ErrInsufficientStock)
		}

		dst, err := s.repo.LockItemByKey(tx, req.ToWarehouseID, src.MaterialCode, src.Size, src.HeatNo)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			dst = &entity.InventoryItem{
				WarehouseID:   req.ToWarehouseID,
				MaterialCode:  src.MaterialCode,
				Description:   src.Description,
				Size:          src.Size,
				Specification: src.Specification,
				HeatNo:        src.HeatNo,
				Unit:          src.Unit,
				UnitPrice:     src.UnitPrice,
			}
			if err := tx.Create(dst).Error; err != nil {
				return fmt.Errorf("create destination item: %w", err)
			}
		} else if err != nil {
			return err
		}

		srcBefore := src.PhysicalQty
		src.PhysicalQty -= req.Quantity
		src.RecomputeAvailable()
		src.TotalValue = src.PhysicalQty * src.UnitPrice
		src.LastIssueDate = &now
		if err := tx.Save(src).Error; err != nil {
			return fmt.Errorf("update source item: %w", err)
		}

		dstBefore := dst.PhysicalQty
		dst.PhysicalQty += req.Quantity
		dst.RecomputeAvailable()
		dst.TotalValue = dst.PhysicalQty * dst.UnitPrice
		dst.LastReceiptDate = &now
		if err := tx.Save(dst).Error; err != nil {
			return fmt.Errorf("update destination item: %w", err)
		}

		outTx := &entity.InventoryTransaction{
			WarehouseID:     src.WarehouseID,
			InventoryItemID: src.ID,
			TransactionType: entity.TxTypeTransferOut,
			TransactionDate: now,
			Quantity:        -req.Quantity,
			UnitPrice:       src.UnitPrice,
			BalanceBefore:   srcBefore,
			BalanceAfter:    src.PhysicalQty,
			ReferenceType:   entity.RefTypeTransfer,
			ReferenceNo:     transferNo,
			Remarks:         req.Remarks,
			PerformedBy:     userID,
		}
		if err := tx.Create(outTx).Error; err != nil {
			return fmt.Errorf("create transfer-out entry: %w", err)
		}

		inTx := &entity.InventoryTransaction{
			WarehouseID:     dst.WarehouseID,
			InventoryItemID: dst.ID,
			TransactionType: entity.TxTypeTransferIn,
			TransactionDate: now,
			Quantity:        req.Quantity,
			UnitPrice:       dst.UnitPrice,
			BalanceBefore:   dstBefore,
			BalanceAfter:    dst.PhysicalQty,
			ReferenceType:   entity.RefTypeTransfer,
			ReferenceNo:     transferNo,
			Remarks:         req.Remarks,
			PerformedBy:     userID,
		}
		return tx.Create(inTx).Error
	})
	if err != nil {
		return "", err
	}

	s.activity.Log(userID, "INVENTORY_TRANSFER",
		fmt.Sprintf("transferred %.4f of item %s to warehouse %s (%s)", req.Quantity, req.InventoryItemID, req.ToWarehouseID, transferNo))
	return transferNo, nil
}
