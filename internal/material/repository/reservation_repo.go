package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Get(db *gorm.DB, id string) (*entity.MaterialReservation, error) {
	var res entity.MaterialReservation
	err := db.Where("id = ?", id).First(&res).Error
	return &res, err
}

// Lock reads a reservation under SELECT ... FOR UPDATE for state transitions.
func (r *ReservationRepository) Lock(tx *gorm.DB, id string) (*entity.MaterialReservation, error) {
	var res entity.MaterialReservation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&res).Error
	return &res, err
}

func (r *ReservationRepository) GetByNo(reservationNo string) (*entity.MaterialReservation, error) {
	var res entity.MaterialReservation
	err := r.db.Where("reservation_no = ?", reservationNo).First(&res).Error
	return &res, err
}

type ReservationListParams struct {
	InventoryItemID string
	ProjectID       string
	Status          string
	Page            int
	Size            int
}

func (r *ReservationRepository) List(params ReservationListParams) ([]entity.MaterialReservation, int64, error) {
	query := r.db.Model(&entity.MaterialReservation{})
	if params.InventoryItemID != "" {
		query = query.Where("inventory_item_id = ?", params.InventoryItemID)
	}
	if params.ProjectID != "" {
		query = query.Where("project_id = ?", params.ProjectID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var reservations []entity.MaterialReservation
	err := query.Preload("InventoryItem").Order("reservation_date DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&reservations).Error
	return reservations, total, err
}

// CountToday returns how many reservations were opened today, for
// sequence-numbered reservation codes. Callers pass their transaction so the
// count and the insert see the same state; the unique index on
// reservation_no backstops a concurrent writer.
func (r *ReservationRepository) CountToday(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.MaterialReservation{}).
		Where("created_at >= CURRENT_DATE").
		Count(&count).Error
	return count, err
}

func (r *ReservationRepository) DB() *gorm.DB {
	return r.db
}
