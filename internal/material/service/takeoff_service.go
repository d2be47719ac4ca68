package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"gorm.io/gorm"
)

// TakeOffService manages projects and their take-off baselines.
type TakeOffService struct {
	db       *gorm.DB
	repo     *repository.TakeOffRepository
	activity *ActivityService
}

func NewTakeOffService(db *gorm.DB, repo *repository.TakeOffRepository, activity *ActivityService) *TakeOffService {
	return &TakeOffService{db: db, repo: repo, activity: activity}
}

func (s *TakeOffService) CreateProject(name, description, userID string) (*entity.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required: %w", ErrValidation)
	}
	if _, err := s.repo.GetProjectByName(name); err == nil {
		return nil, fmt.Errorf("project %s: %w", name, ErrDuplicate)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	project := &entity.Project{Name: name, Description: description}
	if err := s.repo.CreateProject(project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.activity.Log(userID, "PROJECT_CREATE", fmt.Sprintf("created project %s", name))
	return project, nil
}

func (s *TakeOffService) GetProject(id string) (*entity.Project, error) {
	project, err := s.repo.GetProject(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return project, err
}

func (s *TakeOffService) ListProjects() ([]entity.Project, error) {
	return s.repo.ListProjects()
}

type TakeOffItemInput struct {
	LineNo       string  `json:"line_no" binding:"required"`
	ItemType     string  `json:"item_type" binding:"required"`
	Unit         string  `json:"unit"`
	ItemClass    string  `json:"item_class"`
	Description  string  `json:"description"`
	ItemCode     string  `json:"item_code"`
	MaterialCode string  `json:"material_code"`
	P1BoreIn     float64 `json:"p1_bore_in"`
	P2BoreIn     float64 `json:"p2_bore_in"`
	P3BoreIn     float64 `json:"p3_bore_in"`
	LengthM      float64 `json:"length_m" binding:"gte=0"`
	Quantity     float64 `json:"quantity" binding:"gte=0"`
	Joint        float64 `json:"joint"`
	InchDia      float64 `json:"inch_dia"`
}

// AddItems appends take-off rows to a project in one transaction. Pipe rows
// must carry a length, everything else a piece count.
func (s *TakeOffService) AddItems(ctx context.Context, projectID string, inputs []TakeOffItemInput, userID string) ([]entity.TakeOffItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no take-off rows given: %w", ErrValidation)
	}
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}

	items := make([]entity.TakeOffItem, 0, len(inputs))
	for i, in := range inputs {
		item := entity.TakeOffItem{
			ProjectID:    projectID,
			LineNo:       strings.TrimSpace(in.LineNo),
			ItemType:     strings.TrimSpace(in.ItemType),
			Unit:         in.Unit,
			ItemClass:    in.ItemClass,
			Description:  in.Description,
			ItemCode:     in.ItemCode,
			MaterialCode: in.MaterialCode,
			P1BoreIn:     in.P1BoreIn,
			P2BoreIn:     in.P2BoreIn,
			P3BoreIn:     in.P3BoreIn,
			LengthM:      in.LengthM,
			Quantity:     in.Quantity,
			Joint:        in.Joint,
			InchDia:      in.InchDia,
		}
		if item.IsPipe() && item.LengthM <= 0 {
			return nil, fmt.Errorf("row %d: pipe rows need a length: %w", i, ErrValidation)
		}
		if !item.IsPipe() && item.Quantity <= 0 {
			return nil, fmt.Errorf("row %d: component rows need a quantity: %w", i, ErrValidation)
		}
		items = append(items, item)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create take-off items: %w", err)
	}

	s.activity.Log(userID, "TAKEOFF_IMPORT",
		fmt.Sprintf("added %d take-off rows to project %s", len(items), projectID))
	return items, nil
}

func (s *TakeOffService) ListLineItems(projectID, lineNo string) ([]entity.TakeOffItem, error) {
	return s.repo.ListItemsByLine(s.repo.DB(), projectID, lineNo)
}

func (s *TakeOffService) SearchLines(projectID, keyword string, limit int) ([]string, error) {
	return s.repo.SearchLines(projectID, keyword, limit)
}
