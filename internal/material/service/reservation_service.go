package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"gorm.io/gorm"
)

// ReservationService runs the reservation state machine. ACTIVE reservations
// hold available stock without moving it; consuming draws down physical and
// reserved stock together, so a consumed reservation never double-releases.
type ReservationService struct {
	db       *gorm.DB
	repo     *repository.ReservationRepository
	invRepo  *repository.InventoryRepository
	activity *ActivityService
}

func NewReservationService(db *gorm.DB, repo *repository.ReservationRepository, invRepo *repository.InventoryRepository, activity *ActivityService) *ReservationService {
	return &ReservationService{db: db, repo: repo, invRepo: invRepo, activity: activity}
}

func (s *ReservationService) List(params repository.ReservationListParams) ([]entity.MaterialReservation, int64, error) {
	return s.repo.List(params)
}

func (s *ReservationService) Get(id string) (*entity.MaterialReservation, error) {
	res, err := s.repo.Get(s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return res, err
}

type ReserveRequest struct {
	InventoryItemID string     `json:"inventory_item_id" binding:"required"`
	Quantity        float64    `json:"quantity" binding:"required,gt=0"`
	ProjectID       *string    `json:"project_id"`
	LineNo          string     `json:"line_no"`
	MIVRecordID     *string    `json:"miv_record_id"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	Remarks         string     `json:"remarks"`
}

// Reserve places a hold against available stock. Physical stock does not
// move; only the reserved and available columns shift.
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest, userID string) (*entity.MaterialReservation, error) {
	now := time.Now()

	var reservation *entity.MaterialReservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.invRepo.LockItem(tx, req.InventoryItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("inventory item %s: %w", req.InventoryItemID, ErrNotFound)
		} else if err != nil {
			return err
		}

		if item.AvailableQty < req.Quantity {
			return fmt.Errorf("need %.4f, available %.4f: %w", req.Quantity, item.AvailableQty, ErrInsufficientStock)
		}

		seq, err := s.repo.CountToday(tx)
		if err != nil {
			return fmt.Errorf("reservation sequence: %w", err)
		}
		reservationNo := fmt.Sprintf("RSV-%s-%04d", now.Format("20060102"), seq+1)

		item.ReservedQty += req.Quantity
		item.RecomputeAvailable()
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}

		reservation = &entity.MaterialReservation{
			InventoryItemID: item.ID,
			ReservationNo:   reservationNo,
			ReservedQty:     req.Quantity,
			RemainingQty:    req.Quantity,
			ProjectID:       req.ProjectID,
			MIVRecordID:     req.MIVRecordID,
			LineNo:          req.LineNo,
			Status:          entity.ReservationActive,
			ReservationDate: now,
			ExpiryDate:      req.ExpiryDate,
			ReservedBy:      userID,
			Remarks:         req.Remarks,
		}
		return tx.Create(reservation).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(userID, "RESERVATION_CREATE",
		fmt.Sprintf("reserved %.4f of item %s (%s)", req.Quantity, req.InventoryItemID, reservation.ReservationNo))
	return reservation, nil
}

// Consume draws down a reservation. Physical and reserved stock both fall by
// the consumed quantity, so available stock is unchanged. When the
// reservation is exhausted it moves to CONSUMED.
func (s *ReservationService) Consume(ctx context.Context, reservationID string, quantity float64, userID string) error {
	if quantity <= 0 {
		return fmt.Errorf("consume quantity must be positive: %w", ErrValidation)
	}
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.repo.Lock(tx, reservationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
		} else if err != nil {
			return err
		}

		if res.Status != entity.ReservationActive {
			return fmt.Errorf("reservation %s is %s: %w", res.ReservationNo, res.Status, ErrInvalidState)
		}
		if res.RemainingQty < quantity {
			return fmt.Errorf("need %.4f, remaining %.4f: %w", quantity, res.RemainingQty, ErrInsufficientReservation)
		}

		item, err := s.invRepo.LockItem(tx, res.InventoryItemID)
		if err != nil {
			return fmt.Errorf("lock inventory item: %w", err)
		}

		balanceBefore := item.PhysicalQty
		item.PhysicalQty -= quantity
		item.ReservedQty -= quantity
		item.RecomputeAvailable()
		item.TotalValue = item.PhysicalQty * item.UnitPrice
		item.LastIssueDate = &now
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}

		res.ConsumedQty += quantity
		res.RemainingQty -= quantity
		if res.RemainingQty <= 0 {
			res.RemainingQty = 0
			res.Status = entity.ReservationConsumed
		}
		if err := tx.Save(res).Error; err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}

		ledgerTx := &entity.InventoryTransaction{
			WarehouseID:     item.WarehouseID,
			InventoryItemID: item.ID,
			TransactionType: entity.TxTypeOut,
			TransactionDate: now,
			Quantity:        -quantity,
			UnitPrice:       item.UnitPrice,
			TotalValue:      -quantity * item.UnitPrice,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    item.PhysicalQty,
			ReferenceType:   entity.RefTypeReservation,
			ReferenceID:     res.ID,
			ReferenceNo:     res.ReservationNo,
			PerformedBy:     userID,
		}
		return tx.Create(ledgerTx).Error
	})
	if err != nil {
		return err
	}

	s.activity.Log(userID, "RESERVATION_CONSUME",
		fmt.Sprintf("consumed %.4f of reservation %s", quantity, reservationID))
	return nil
}

// Cancel releases whatever the reservation still holds and closes it.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.repo.Lock(tx, reservationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
		} else if err != nil {
			return err
		}

		if res.Status != entity.ReservationActive {
			return fmt.Errorf("reservation %s is %s: %w", res.ReservationNo, res.Status, ErrInvalidState)
		}

		if res.RemainingQty > 0 {
			item, err := s.invRepo.LockItem(tx, res.InventoryItemID)
			if err != nil {
				return fmt.Errorf("lock inventory item: %w", err)
			}
			item.ReservedQty -= res.RemainingQty
			if item.ReservedQty < 0 {
				item.ReservedQty = 0
			}
			item.RecomputeAvailable()
			if err := tx.Save(item).Error; err != nil {
				return fmt.Errorf("update inventory item: %w", err)
			}
		}

		res.RemainingQty = 0
		res.Status = entity.ReservationCancelled
		return tx.Save(res).Error
	})
	if err != nil {
		return err
	}

	s.activity.Log(userID, "RESERVATION_CANCEL",
		fmt.Sprintf("cancelled reservation %s", reservationID))
	return nil
}
