package service

import (
	"testing"

	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services, err := NewServices(repos, db, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	return services, db
}
