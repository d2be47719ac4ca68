package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// ReplaceForLine swaps the line's snapshot rows: delete everything for the
// line, then bulk-insert the freshly computed set. Must run inside the
// rebuild transaction so readers never see a partial snapshot.
func (r *ProgressRepository) ReplaceForLine(tx *gorm.DB, projectID, lineNo string, rows []entity.ProgressSnapshot) error {
	if err := tx.Where("project_id = ? AND line_no = ?", projectID, lineNo).
		Delete(&entity.ProgressSnapshot{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *ProgressRepository) ListByLine(projectID, lineNo string) ([]entity.ProgressSnapshot, error) {
	var rows []entity.ProgressSnapshot
	err := r.db.Where("project_id = ? AND line_no = ?", projectID, lineNo).
		Order("item_code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ListByProject(projectID string) ([]entity.ProgressSnapshot, error) {
	var rows []entity.ProgressSnapshot
	err := r.db.Where("project_id = ?", projectID).
		Order("line_no ASC, item_code ASC").
		Find(&rows).Error
	return rows, err
}

// ProjectSummary aggregates per-line completion for the dashboard.
type ProjectSummary struct {
	LineNo       string  `json:"line_no"`
	TotalQty     float64 `json:"total_qty"`
	UsedQty      float64 `json:"used_qty"`
	RemainingQty float64 `json:"remaining_qty"`
	ItemCount    int     `json:"item_count"`
}

func (r *ProgressRepository) SummarizeByProject(projectID string) ([]ProjectSummary, error) {
	var rows []ProjectSummary
	err := r.db.Model(&entity.ProgressSnapshot{}).
		Select("line_no, SUM(total_qty) AS total_qty, SUM(used_qty) AS used_qty, SUM(remaining_qty) AS remaining_qty, COUNT(*) AS item_count").
		Where("project_id = ?", projectID).
		Group("line_no").
		Order("line_no ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *ProgressRepository) DB() *gorm.DB {
	return r.db
}
