package repository

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TakeOffRepository struct {
	db *gorm.DB
}

func NewTakeOffRepository(db *gorm.DB) *TakeOffRepository {
	return &TakeOffRepository{db: db}
}

func (r *TakeOffRepository) CreateProject(p *entity.Project) error {
	return r.db.Create(p).Error
}

func (r *TakeOffRepository) GetProject(id string) (*entity.Project, error) {
	var p entity.Project
	err := r.db.Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *TakeOffRepository) GetProjectByName(name string) (*entity.Project, error) {
	var p entity.Project
	err := r.db.Where("name = ?", name).First(&p).Error
	return &p, err
}

func (r *TakeOffRepository) ListProjects() ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.Order("name ASC").Find(&projects).Error
	return projects, err
}

func (r *TakeOffRepository) CreateItem(item *entity.TakeOffItem) error {
	return r.db.Create(item).Error
}

func (r *TakeOffRepository) GetItem(id string) (*entity.TakeOffItem, error) {
	var item entity.TakeOffItem
	err := r.db.Where("id = ?", id).First(&item).Error
	return &item, err
}

// ListItemsByLine returns all take-off rows of one line, ordered for
// stable reconciliation output.
func (r *TakeOffRepository) ListItemsByLine(db *gorm.DB, projectID, lineNo string) ([]entity.TakeOffItem, error) {
	var items []entity.TakeOffItem
	err := db.Where("project_id = ? AND line_no = ?", projectID, lineNo).
		Order("item_code ASC, id ASC").
		Find(&items).Error
	return items, err
}

// LockItemsByLine reads the line's take-off rows under SELECT ... FOR UPDATE,
// serializing concurrent rebuilds of the same line. Must run inside a
// transaction.
func (r *TakeOffRepository) LockItemsByLine(tx *gorm.DB, projectID, lineNo string) ([]entity.TakeOffItem, error) {
	var items []entity.TakeOffItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ? AND line_no = ?", projectID, lineNo).
		Order("item_code ASC, id ASC").
		Find(&items).Error
	return items, err
}

// SearchLines returns distinct line numbers of a project matching the
// keyword, for typeahead on MIV registration.
func (r *TakeOffRepository) SearchLines(projectID, keyword string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Model(&entity.TakeOffItem{}).
		Distinct("line_no").
		Where("project_id = ?", projectID)
	if keyword != "" {
		query = query.Where("line_no ILIKE ?", "%"+keyword+"%")
	}
	var lines []string
	err := query.Order("line_no ASC").Limit(limit).Pluck("line_no", &lines).Error
	return lines, err
}

func (r *TakeOffRepository) LineExists(projectID, lineNo string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.TakeOffItem{}).
		Where("project_id = ? AND line_no = ?", projectID, lineNo).
		Count(&count).Error
	return count > 0, err
}

func (r *TakeOffRepository) DB() *gorm.DB {
	return r.db
}
