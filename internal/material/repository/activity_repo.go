package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(log *entity.ActivityLog) error {
	return r.db.Create(log).Error
}

func (r *ActivityRepository) List(user, action string, page, size int) ([]entity.ActivityLog, int64, error) {
	query := r.db.Model(&entity.ActivityLog{})
	if user != "" {
		query = query.Where(`"user" = ?`, user)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var logs []entity.ActivityLog
	err := query.Order("timestamp DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&logs).Error
	return logs, total, err
}
