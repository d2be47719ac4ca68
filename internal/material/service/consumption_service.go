package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"gorm.io/gorm"
)

// ConsumptionService registers MIV usage events and keeps the per-line
// progress snapshot reconciled with them. Every mutation runs inside one
// transaction that ends with a full rebuild of the affected line, so the
// snapshot is always consistent with the event history at commit.
type ConsumptionService struct {
	db          *gorm.DB
	takeoffRepo *repository.TakeOffRepository
	mivRepo     *repository.MIVRepository
	progRepo    *repository.ProgressRepository
	spoolRepo   *repository.SpoolRepository
	invRepo     *repository.InventoryRepository
	spoolSvc    *SpoolService
	resolver    *EquivalenceResolver
	activity    *ActivityService
}

func NewConsumptionService(
	db *gorm.DB,
	takeoffRepo *repository.TakeOffRepository,
	mivRepo *repository.MIVRepository,
	progRepo *repository.ProgressRepository,
	spoolRepo *repository.SpoolRepository,
	invRepo *repository.InventoryRepository,
	spoolSvc *SpoolService,
	resolver *EquivalenceResolver,
	activity *ActivityService,
) *ConsumptionService {
	return &ConsumptionService{
		db:          db,
		takeoffRepo: takeoffRepo,
		mivRepo:     mivRepo,
		progRepo:    progRepo,
		spoolRepo:   spoolRepo,
		invRepo:     invRepo,
		spoolSvc:    spoolSvc,
		resolver:    resolver,
		activity:    activity,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ItemAllocation books usage against one take-off item. A set
// InventoryItemID additionally draws the quantity from warehouse stock.
type ItemAllocation struct {
	TakeOffItemID   string  `json:"take_off_item_id" binding:"required"`
	UsedQty         float64 `json:"used_qty" binding:"required,gt=0"`
	InventoryItemID *string `json:"inventory_item_id"`
}

// SpoolAllocation books usage against one spool item.
type SpoolAllocation struct {
	SpoolItemID string  `json:"spool_item_id" binding:"required"`
	UsedQty     float64 `json:"used_qty" binding:"required,gt=0"`
}

type RegisterMIVRequest struct {
	ProjectID     string            `json:"project_id" binding:"required"`
	LineNo        string            `json:"line_no" binding:"required"`
	MIVTag        string            `json:"miv_tag" binding:"required"`
	Location      string            `json:"location"`
	Status        string            `json:"status"`
	Comment       string            `json:"comment"`
	RegisteredFor string            `json:"registered_for"`
	IsComplete    bool              `json:"is_complete"`
	Items         []ItemAllocation  `json:"items"`
	SpoolItems    []SpoolAllocation `json:"spool_items"`
}

// RegisterMIV records one material issue voucher with its item and spool
// allocations, then rebuilds the line's progress snapshot in the same
// transaction.
func (s *ConsumptionService) RegisterMIV(ctx context.Context, req RegisterMIVRequest, userID string) (*entity.MIVRecord, error) {
	req.MIVTag = strings.TrimSpace(req.MIVTag)
	if len(req.Items) == 0 && len(req.SpoolItems) == 0 {
		return nil, fmt.Errorf("an MIV needs at least one allocation: %w", ErrValidation)
	}

	exists, err := s.takeoffRepo.LineExists(req.ProjectID, req.LineNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("line %s has no take-off items in project %s: %w", req.LineNo, req.ProjectID, ErrNotFound)
	}

	taken, err := s.mivRepo.TagExists(req.ProjectID, req.LineNo, req.MIVTag)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("MIV tag %s already registered for line %s: %w", req.MIVTag, req.LineNo, ErrDuplicate)
	}

	now := time.Now()
	record := &entity.MIVRecord{
		ProjectID:     req.ProjectID,
		LineNo:        req.LineNo,
		MIVTag:        req.MIVTag,
		Location:      req.Location,
		Status:        req.Status,
		Comment:       req.Comment,
		RegisteredFor: req.RegisteredFor,
		RegisteredBy:  userID,
		IsComplete:    req.IsComplete,
		LastUpdated:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize against concurrent rebuilds of the same line.
		if _, err := s.takeoffRepo.LockItemsByLine(tx, req.ProjectID, req.LineNo); err != nil {
			return err
		}

		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("create MIV record: %w", err)
		}

		if err := s.applyAllocations(tx, record, req.Items, req.SpoolItems, userID); err != nil {
			return err
		}

		return s.rebuildLineLocked(tx, req.ProjectID, req.LineNo)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(userID, "MIV_REGISTER",
		fmt.Sprintf("registered MIV %s on line %s (%d item, %d spool allocations)",
			req.MIVTag, req.LineNo, len(req.Items), len(req.SpoolItems)))
	return record, nil
}

// applyAllocations writes the consumption rows of an MIV record and moves
// the backing stock. Take-off items are validated against the record's line.
func (s *ConsumptionService) applyAllocations(tx *gorm.DB, record *entity.MIVRecord, items []ItemAllocation, spools []SpoolAllocation, userID string) error {
	now := time.Now()
	for _, alloc := range items {
		item, err := s.takeoffRepo.GetItem(alloc.TakeOffItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("take-off item %s: %w", alloc.TakeOffItemID, ErrNotFound)
		} else if err != nil {
			return err
		}
		if item.ProjectID != record.ProjectID || item.LineNo != record.LineNo {
			return fmt.Errorf("take-off item %s belongs to line %s, not %s: %w",
				item.ID, item.LineNo, record.LineNo, ErrValidation)
		}

		row := &entity.TakeOffConsumption{
			TakeOffItemID:   item.ID,
			MIVRecordID:     record.ID,
			InventoryItemID: alloc.InventoryItemID,
			UsedQty:         alloc.UsedQty,
			Timestamp:       now,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("create consumption row: %w", err)
		}

		if alloc.InventoryItemID != nil {
			if err := s.issueFromWarehouse(tx, *alloc.InventoryItemID, alloc.UsedQty, record, userID); err != nil {
				return err
			}
		}
	}

	for _, alloc := range spools {
		if err := s.spoolSvc.ConsumeItem(tx, alloc.SpoolItemID, record.ID, alloc.UsedQty); err != nil {
			return err
		}
	}
	return nil
}

// issueFromWarehouse draws an MIV allocation from warehouse stock inside the
// registration transaction, appending the matching OUT ledger entry.
func (s *ConsumptionService) issueFromWarehouse(tx *gorm.DB, inventoryItemID string, qty float64, record *entity.MIVRecord, userID string) error {
	now := time.Now()
	item, err := s.invRepo.LockItem(tx, inventoryItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("inventory item %s: %w", inventoryItemID, ErrNotFound)
	} else if err != nil {
		return err
	}
	if item.AvailableQty < qty {
		return fmt.Errorf("need %.4f, available %.4f of %s: %w", qty, item.AvailableQty, item.MaterialCode, ErrInsufficientStock)
	}

	balanceBefore := item.PhysicalQty
	item.PhysicalQty -= qty
	item.RecomputeAvailable()
	item.TotalValue = item.PhysicalQty * item.UnitPrice
	item.LastIssueDate = &now
	if err := tx.Save(item).Error; err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}

	ledgerTx := &entity.InventoryTransaction{
		WarehouseID:     item.WarehouseID,
		InventoryItemID: item.ID,
		TransactionType: entity.TxTypeOut,
		TransactionDate: now,
		Quantity:        -qty,
		UnitPrice:       item.UnitPrice,
		TotalValue:      -qty * item.UnitPrice,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    item.PhysicalQty,
		ReferenceType:   entity.RefTypeMIV,
		ReferenceID:     record.ID,
		ReferenceNo:     record.MIVTag,
		PerformedBy:     userID,
	}
	return tx.Create(ledgerTx).Error
}

// restoreWarehouseDraws reverses the warehouse side of an MIV record's
// consumption rows before they are deleted.
func (s *ConsumptionService) restoreWarehouseDraws(tx *gorm.DB, record *entity.MIVRecord, rows []entity.TakeOffConsumption, userID string) error {
	now := time.Now()
	for _, row := range rows {
		if row.InventoryItemID == nil {
			continue
		}
		item, err := s.invRepo.LockItem(tx, *row.InventoryItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		} else if err != nil {
			return err
		}

		balanceBefore := item.PhysicalQty
		item.PhysicalQty += row.UsedQty
		item.RecomputeAvailable()
		item.TotalValue = item.PhysicalQty * item.UnitPrice
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("restore inventory item: %w", err)
		}

		ledgerTx := &entity.InventoryTransaction{
			WarehouseID:     item.WarehouseID,
			InventoryItemID: item.ID,
			TransactionType: entity.TxTypeIn,
			TransactionDate: now,
			Quantity:        row.UsedQty,
			UnitPrice:       item.UnitPrice,
			TotalValue:      row.UsedQty * item.UnitPrice,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    item.PhysicalQty,
			ReferenceType:   entity.RefTypeMIV,
			ReferenceID:     record.ID,
			ReferenceNo:     record.MIVTag,
			Remarks:         "reversal of MIV " + record.MIVTag,
			PerformedBy:     userID,
		}
		if err := tx.Create(ledgerTx).Error; err != nil {
			return err
		}
	}
	return nil
}

type EditMIVRequest struct {
	MIVRecordID string            `json:"miv_record_id"`
	Location    string            `json:"location"`
	Status      string            `json:"status"`
	Comment     string            `json:"comment"`
	IsComplete  bool              `json:"is_complete"`
	Items       []ItemAllocation  `json:"items"`
	SpoolItems  []SpoolAllocation `json:"spool_items"`
}

// EditMIV replaces an MIV record's allocations wholesale: existing stock
// draws are restored, the old consumption rows deleted, the new set applied
// and the line rebuilt, all in one transaction.
func (s *ConsumptionService) EditMIV(ctx context.Context, req EditMIVRequest, userID string) (*entity.MIVRecord, error) {
	if len(req.Items) == 0 && len(req.SpoolItems) == 0 {
		return nil, fmt.Errorf("an MIV needs at least one allocation: %w", ErrValidation)
	}

	var record *entity.MIVRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.mivRepo.Get(tx, req.MIVRecordID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("MIV record %s: %w", req.MIVRecordID, ErrNotFound)
		} else if err != nil {
			return err
		}

		if _, err := s.takeoffRepo.LockItemsByLine(tx, record.ProjectID, record.LineNo); err != nil {
			return err
		}

		oldRows, err := s.mivRepo.ListConsumptions(tx, record.ID)
		if err != nil {
			return err
		}
		if err := s.restoreWarehouseDraws(tx, record, oldRows, userID); err != nil {
			return err
		}
		if err := tx.Where("miv_record_id = ?", record.ID).Delete(&entity.TakeOffConsumption{}).Error; err != nil {
			return err
		}
		if err := s.spoolSvc.RestoreForMIV(tx, record.ID); err != nil {
			return err
		}

		record.Location = req.Location
		record.Status = req.Status
		record.Comment = req.Comment
		record.IsComplete = req.IsComplete
		record.LastUpdated = time.Now()
		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("update MIV record: %w", err)
		}

		if err := s.applyAllocations(tx, record, req.Items, req.SpoolItems, userID); err != nil {
			return err
		}

		return s.rebuildLineLocked(tx, record.ProjectID, record.LineNo)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(userID, "MIV_EDIT",
		fmt.Sprintf("edited MIV %s on line %s", record.MIVTag, record.LineNo))
	return record, nil
}

// DeleteMIV removes an MIV record, restores the spool and warehouse stock it
// consumed and rebuilds the line.
func (s *ConsumptionService) DeleteMIV(ctx context.Context, mivRecordID, userID string) error {
	var record *entity.MIVRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.mivRepo.Get(tx, mivRecordID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("MIV record %s: %w", mivRecordID, ErrNotFound)
		} else if err != nil {
			return err
		}

		if _, err := s.takeoffRepo.LockItemsByLine(tx, record.ProjectID, record.LineNo); err != nil {
			return err
		}

		rows, err := s.mivRepo.ListConsumptions(tx, record.ID)
		if err != nil {
			return err
		}
		if err := s.restoreWarehouseDraws(tx, record, rows, userID); err != nil {
			return err
		}
		if err := tx.Where("miv_record_id = ?", record.ID).Delete(&entity.TakeOffConsumption{}).Error; err != nil {
			return err
		}
		if err := s.spoolSvc.RestoreForMIV(tx, record.ID); err != nil {
			return err
		}
		if err := tx.Delete(record).Error; err != nil {
			return err
		}

		return s.rebuildLineLocked(tx, record.ProjectID, record.LineNo)
	})
	if err != nil {
		return err
	}

	s.activity.Log(userID, "MIV_DELETE",
		fmt.Sprintf("deleted MIV %s on line %s", record.MIVTag, record.LineNo))
	return nil
}

// RebuildLineProgress recomputes one line's snapshot from scratch. Normally
// rebuilds ride along inside mutation transactions; this entry point serves
// manual repair and bulk backfills.
func (s *ConsumptionService) RebuildLineProgress(ctx context.Context, projectID, lineNo string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.takeoffRepo.LockItemsByLine(tx, projectID, lineNo); err != nil {
			return err
		}
		return s.rebuildLineLocked(tx, projectID, lineNo)
	})
}

// rebuildLineLocked derives the line's progress snapshot from the take-off
// baseline, the item-linked consumption sums and the line-wide spool
// aggregate. Caller must already hold the line's row locks.
//
// Spool usage is bucketed by (component family, primary bore): every
// take-off item whose equivalence set covers a bucket absorbs that bucket's
// total, which is how ELB spool stock satisfies ELBOW demand.
func (s *ConsumptionService) rebuildLineLocked(tx *gorm.DB, projectID, lineNo string) error {
	items, err := s.takeoffRepo.ListItemsByLine(tx, projectID, lineNo)
	if err != nil {
		return err
	}

	directSums, err := s.mivRepo.SumDirectByLine(tx, projectID, lineNo)
	if err != nil {
		return err
	}

	spoolSums, err := s.spoolRepo.SumByLine(tx, projectID, lineNo)
	if err != nil {
		return err
	}

	now := time.Now()
	rows := make([]entity.ProgressSnapshot, 0, len(items))
	for _, item := range items {
		used := directSums[item.ID]

		equivalents := s.resolver.Resolve(item.ItemType)
		for _, bucket := range spoolSums {
			if bucket.P1Bore != item.P1BoreIn {
				continue
			}
			for _, alias := range equivalents {
				if bucket.ComponentType == alias {
					used += bucket.Total
					break
				}
			}
		}

		total := round2(item.TotalRequired())
		used = round2(used)
		remaining := round2(total - used)
		if remaining < 0 {
			remaining = 0
		}

		unit := "pcs"
		if item.IsPipe() {
			unit = "m"
		}

		rows = append(rows, entity.ProgressSnapshot{
			ProjectID:     projectID,
			LineNo:        lineNo,
			TakeOffItemID: item.ID,
			ItemCode:      item.ItemCode,
			Description:   item.Description,
			Unit:          unit,
			TotalQty:      total,
			UsedQty:       used,
			RemainingQty:  remaining,
			LastUpdated:   now,
		})
	}

	return s.progRepo.ReplaceForLine(tx, projectID, lineNo, rows)
}

// LineProgress bundles a line's snapshot with its MIV history.
type LineProgress struct {
	ProjectID string                    `json:"project_id"`
	LineNo    string                    `json:"line_no"`
	Items     []entity.ProgressSnapshot `json:"items"`
	Records   []entity.MIVRecord        `json:"records"`
}

func (s *ConsumptionService) GetLineProgress(projectID, lineNo string) (*LineProgress, error) {
	items, err := s.progRepo.ListByLine(projectID, lineNo)
	if err != nil {
		return nil, err
	}
	records, _, err := s.mivRepo.List(repository.MIVListParams{
		ProjectID: projectID,
		LineNo:    lineNo,
		Size:      1000,
	})
	if err != nil {
		return nil, err
	}
	return &LineProgress{
		ProjectID: projectID,
		LineNo:    lineNo,
		Items:     items,
		Records:   records,
	}, nil
}

func (s *ConsumptionService) ProjectSummary(projectID string) ([]repository.ProjectSummary, error) {
	return s.progRepo.SummarizeByProject(projectID)
}

func (s *ConsumptionService) SearchLines(projectID, keyword string, limit int) ([]string, error) {
	return s.takeoffRepo.SearchLines(projectID, keyword, limit)
}

func (s *ConsumptionService) ListMIVs(params repository.MIVListParams) ([]entity.MIVRecord, int64, error) {
	return s.mivRepo.List(params)
}

func (s *ConsumptionService) GetMIV(id string) (*entity.MIVRecord, error) {
	record, err := s.mivRepo.Get(s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("MIV record %s: %w", id, ErrNotFound)
	}
	return record, err
}

// MIVDetail is one MIV record with both kinds of consumption rows.
type MIVDetail struct {
	Record     *entity.MIVRecord           `json:"record"`
	Items      []entity.TakeOffConsumption `json:"items"`
	SpoolItems []entity.SpoolConsumption   `json:"spool_items"`
}

func (s *ConsumptionService) GetMIVDetail(id string) (*MIVDetail, error) {
	record, err := s.GetMIV(id)
	if err != nil {
		return nil, err
	}
	items, err := s.mivRepo.ListConsumptions(s.db, record.ID)
	if err != nil {
		return nil, err
	}
	spoolRows, err := s.mivRepo.ListSpoolConsumptions(s.db, record.ID)
	if err != nil {
		return nil, err
	}
	return &MIVDetail{Record: record, Items: items, SpoolItems: spoolRows}, nil
}
