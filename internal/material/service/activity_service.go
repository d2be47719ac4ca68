package service

import (
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"go.uber.org/zap"
)

// ActivityService writes the audit trail. Log is fire-and-forget: it runs
// after the business transaction commits, and a failed insert only produces
// a warning, never an error for the caller.
type ActivityService struct {
	repo   *repository.ActivityRepository
	logger *zap.Logger
}

func NewActivityService(repo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

func (s *ActivityService) Log(user, action, details string) {
	entry := &entity.ActivityLog{
		Timestamp: time.Now(),
		User:      user,
		Action:    action,
		Details:   details,
	}
	if err := s.repo.Create(entry); err != nil {
		s.logger.Warn("activity log write failed",
			zap.String("user", user),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *ActivityService) List(user, action string, page, size int) ([]entity.ActivityLog, int64, error) {
	return s.repo.List(user, action, page, size)
}
