package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
)

type SpoolRepository struct {
	db *gorm.DB
}

func NewSpoolRepository(db *gorm.DB) *SpoolRepository {
	return &SpoolRepository{db: db}
}

func (r *SpoolRepository) Create(spool *entity.Spool) error {
	return r.db.Create(spool).Error
}

func (r *SpoolRepository) GetBySpoolID(spoolID string) (*entity.Spool, error) {
	var spool entity.Spool
	err := r.db.Preload("Items").Where("spool_id = ?", spoolID).First(&spool).Error
	return &spool, err
}

func (r *SpoolRepository) GetItem(db *gorm.DB, id string) (*entity.SpoolItem, error) {
	var item entity.SpoolItem
	err := db.Where("id = ?", id).First(&item).Error
	return &item, err
}

type SpoolListParams struct {
	SpoolID  string
	Location string
	Page     int
	Size     int
}

func (r *SpoolRepository) List(params SpoolListParams) ([]entity.Spool, int64, error) {
	query := r.db.Model(&entity.Spool{})
	if params.SpoolID != "" {
		query = query.Where("spool_id ILIKE ?", "%"+params.SpoolID+"%")
	}
	if params.Location != "" {
		query = query.Where("location ILIKE ?", "%"+params.Location+"%")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var spools []entity.Spool
	err := query.Preload("Items").Order("spool_id ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&spools).Error
	return spools, total, err
}

func (r *SpoolRepository) DeleteBySpoolID(tx *gorm.DB, spoolID string) error {
	if err := tx.Where("spool_fk = ?", spoolID).Delete(&entity.SpoolItem{}).Error; err != nil {
		return err
	}
	return tx.Where("spool_id = ?", spoolID).Delete(&entity.Spool{}).Error
}

// MaxSpoolSeq returns the highest numeric suffix among spool ids with the
// given prefix, e.g. "SP-" over SP-001..SP-017 yields 17.
func (r *SpoolRepository) MaxSpoolSeq(prefix string) (int, error) {
	var result struct{ Max int }
	err := r.db.Raw(`
		SELECT COALESCE(MAX(CAST(SUBSTRING(spool_id FROM ?) AS INTEGER)), 0) AS max
		FROM spools
		WHERE spool_id LIKE ?
	`, len(prefix)+1, prefix+"%").Scan(&result).Error
	return result.Max, err
}

// FindCandidates returns spool items whose component type is in one of the
// accepted spellings and whose primary bore matches, with usable stock left.
// Pipe components are measured by length, everything else by piece count;
// the epsilon keeps float residue from resurfacing exhausted items.
func (r *SpoolRepository) FindCandidates(db *gorm.DB, componentTypes []string, p1Bore float64, epsilon float64) ([]entity.SpoolItem, error) {
	var items []entity.SpoolItem
	err := db.
		Where("UPPER(component_type) IN ?", componentTypes).
		Where("p1_bore = ?", p1Bore).
		Where("(length > ? OR qty_available > ?)", epsilon, epsilon).
		Order("spool_fk ASC, id ASC").
		Find(&items).Error
	return items, err
}

// ListConsumptionsByItem returns a spool item's consumption history.
func (r *SpoolRepository) ListConsumptionsByItem(spoolItemID string) ([]entity.SpoolConsumption, error) {
	var rows []entity.SpoolConsumption
	err := r.db.Where("spool_item_id = ?", spoolItemID).
		Order("timestamp DESC").
		Find(&rows).Error
	return rows, err
}

// SpoolUsage is one line of the spool utilization report.
type SpoolUsage struct {
	SpoolID       string  `json:"spool_id"`
	ComponentType string  `json:"component_type"`
	P1Bore        float64 `json:"p1_bore"`
	TotalUsed     float64 `json:"total_used"`
	EventCount    int     `json:"event_count"`
}

func (r *SpoolRepository) UsageReport(spoolID string) ([]SpoolUsage, error) {
	var rows []SpoolUsage
	query := r.db.Model(&entity.SpoolConsumption{}).
		Select(`spool_consumption.spool_id,
			spool_items.component_type,
			spool_items.p1_bore,
			SUM(spool_consumption.used_qty) AS total_used,
			COUNT(*) AS event_count`).
		Joins("JOIN spool_items ON spool_items.id = spool_consumption.spool_item_id").
		Group("spool_consumption.spool_id, spool_items.component_type, spool_items.p1_bore")
	if spoolID != "" {
		query = query.Where("spool_consumption.spool_id = ?", spoolID)
	}
	err := query.Order("spool_consumption.spool_id ASC").Scan(&rows).Error
	return rows, err
}

// SpoolLineSum is one bucket of the line-wide spool aggregate, keyed by
// upper-cased component type and primary bore.
type SpoolLineSum struct {
	ComponentType string
	P1Bore        float64
	Total         float64
}

// SumByLine totals spool usage for one line, grouped by component type and
// bore. Line scope comes through the owning MIV record.
func (r *SpoolRepository) SumByLine(db *gorm.DB, projectID, lineNo string) ([]SpoolLineSum, error) {
	var rows []SpoolLineSum
	err := db.Model(&entity.SpoolConsumption{}).
		Select("UPPER(spool_items.component_type) AS component_type, spool_items.p1_bore, SUM(spool_consumption.used_qty) AS total").
		Joins("JOIN spool_items ON spool_items.id = spool_consumption.spool_item_id").
		Joins("JOIN miv_records ON miv_records.id = spool_consumption.miv_record_id").
		Where("miv_records.project_id = ? AND miv_records.line_no = ?", projectID, lineNo).
		Group("UPPER(spool_items.component_type), spool_items.p1_bore").
		Scan(&rows).Error
	return rows, err
}

func (r *SpoolRepository) DB() *gorm.DB {
	return r.db
}
