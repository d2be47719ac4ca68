package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
)

type MIVRepository struct {
	db *gorm.DB
}

func NewMIVRepository(db *gorm.DB) *MIVRepository {
	return &MIVRepository{db: db}
}

func (r *MIVRepository) Get(db *gorm.DB, id string) (*entity.MIVRecord, error) {
	var rec entity.MIVRecord
	err := db.Where("id = ?", id).First(&rec).Error
	return &rec, err
}

// TagExists reports whether an MIV tag is already registered for the line.
func (r *MIVRepository) TagExists(projectID, lineNo, mivTag string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.MIVRecord{}).
		Where("project_id = ? AND line_no = ? AND miv_tag = ?", projectID, lineNo, mivTag).
		Count(&count).Error
	return count > 0, err
}

type MIVListParams struct {
	ProjectID string
	LineNo    string
	MIVTag    string
	Page      int
	Size      int
}

func (r *MIVRepository) List(params MIVListParams) ([]entity.MIVRecord, int64, error) {
	query := r.db.Model(&entity.MIVRecord{}).Where("project_id = ?", params.ProjectID)
	if params.LineNo != "" {
		query = query.Where("line_no = ?", params.LineNo)
	}
	if params.MIVTag != "" {
		query = query.Where("miv_tag ILIKE ?", "%"+params.MIVTag+"%")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var records []entity.MIVRecord
	err := query.Order("last_updated DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&records).Error
	return records, total, err
}

// ListConsumptions returns the take-off consumption rows of one MIV record.
func (r *MIVRepository) ListConsumptions(db *gorm.DB, mivRecordID string) ([]entity.TakeOffConsumption, error) {
	var rows []entity.TakeOffConsumption
	err := db.Where("miv_record_id = ?", mivRecordID).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// ListSpoolConsumptions returns the spool consumption rows of one MIV record.
func (r *MIVRepository) ListSpoolConsumptions(db *gorm.DB, mivRecordID string) ([]entity.SpoolConsumption, error) {
	var rows []entity.SpoolConsumption
	err := db.Where("miv_record_id = ?", mivRecordID).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// SumDirectByLine totals the item-linked consumption per take-off item for
// one line, in a single grouped query.
func (r *MIVRepository) SumDirectByLine(db *gorm.DB, projectID, lineNo string) (map[string]float64, error) {
	var rows []struct {
		TakeOffItemID string
		Total         float64
	}
	err := db.Model(&entity.TakeOffConsumption{}).
		Select("take_off_consumption.take_off_item_id, SUM(take_off_consumption.used_qty) AS total").
		Joins("JOIN miv_records ON miv_records.id = take_off_consumption.miv_record_id").
		Where("miv_records.project_id = ? AND miv_records.line_no = ?", projectID, lineNo).
		Group("take_off_consumption.take_off_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]float64, len(rows))
	for _, row := range rows {
		sums[row.TakeOffItemID] = row.Total
	}
	return sums, nil
}

func (r *MIVRepository) DB() *gorm.DB {
	return r.db
}
