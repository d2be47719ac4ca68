package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// ListActive loads every active mapping rule, best matches first.
func (r *MappingRepository) ListActive() ([]entity.ItemMapping, error) {
	var rules []entity.ItemMapping
	err := r.db.Where("is_active = true").
		Order("confidence_score DESC, usage_count DESC").
		Find(&rules).Error
	return rules, err
}

func (r *MappingRepository) Create(m *entity.ItemMapping) error {
	return r.db.Create(m).Error
}

func (r *MappingRepository) Get(id string) (*entity.ItemMapping, error) {
	var m entity.ItemMapping
	err := r.db.Where("id = ?", id).First(&m).Error
	return &m, err
}

// FindPair returns the rule for an exact source/target pair, active or not.
func (r *MappingRepository) FindPair(sourceCode, sourceSize, targetCode, targetSize string) (*entity.ItemMapping, error) {
	var m entity.ItemMapping
	err := r.db.Where("source_code = ? AND source_size = ? AND target_code = ? AND target_size = ?",
		sourceCode, sourceSize, targetCode, targetSize).
		First(&m).Error
	return &m, err
}

func (r *MappingRepository) Update(m *entity.ItemMapping) error {
	return r.db.Save(m).Error
}

func (r *MappingRepository) Deactivate(id string) error {
	return r.db.Model(&entity.ItemMapping{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
