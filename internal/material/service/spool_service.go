package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"gorm.io/gorm"
)

// spoolEpsilon is the float tolerance for "stock left". Items whose
// remaining quantity falls under it are treated as exhausted, so rounding
// residue never resurfaces a spent item as a candidate.
const spoolEpsilon = 0.001

// SpoolService manages prefabricated spool inventory and the matching of
// line demand against spool stock through the equivalence resolver.
type SpoolService struct {
	db       *gorm.DB
	repo     *repository.SpoolRepository
	resolver *EquivalenceResolver
	activity *ActivityService
}

func NewSpoolService(db *gorm.DB, repo *repository.SpoolRepository, resolver *EquivalenceResolver, activity *ActivityService) *SpoolService {
	return &SpoolService{db: db, repo: repo, resolver: resolver, activity: activity}
}

func (s *SpoolService) List(params repository.SpoolListParams) ([]entity.Spool, int64, error) {
	return s.repo.List(params)
}

func (s *SpoolService) Get(spoolID string) (*entity.Spool, error) {
	spool, err := s.repo.GetBySpoolID(spoolID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("spool %s: %w", spoolID, ErrNotFound)
	}
	return spool, err
}

type SpoolItemInput struct {
	ComponentType string  `json:"component_type" binding:"required"`
	ClassAngle    float64 `json:"class_angle"`
	P1Bore        float64 `json:"p1_bore" binding:"required,gt=0"`
	P2Bore        float64 `json:"p2_bore"`
	Material      string  `json:"material"`
	Schedule      string  `json:"schedule"`
	Thickness     float64 `json:"thickness"`
	Length        float64 `json:"length" binding:"gte=0"`
	QtyAvailable  float64 `json:"qty_available" binding:"gte=0"`
	ItemCode      string  `json:"item_code"`
}

type CreateSpoolRequest struct {
	SpoolID  string           `json:"spool_id"`
	Location string           `json:"location"`
	Items    []SpoolItemInput `json:"items" binding:"required,min=1,dive"`
}

// Create registers a spool with its component items. An empty SpoolID gets
// the next id in the SP- sequence.
func (s *SpoolService) Create(ctx context.Context, req CreateSpoolRequest, userID string) (*entity.Spool, error) {
	spoolID := strings.TrimSpace(req.SpoolID)
	if spoolID == "" {
		next, err := s.NextSpoolID("SP-")
		if err != nil {
			return nil, err
		}
		spoolID = next
	}

	spool := &entity.Spool{
		SpoolID:  spoolID,
		Location: req.Location,
	}
	for _, in := range req.Items {
		spool.Items = append(spool.Items, entity.SpoolItem{
			SpoolFK:       spoolID,
			ComponentType: strings.ToUpper(strings.TrimSpace(in.ComponentType)),
			ClassAngle:    in.ClassAngle,
			P1Bore:        in.P1Bore,
			P2Bore:        in.P2Bore,
			Material:      in.Material,
			Schedule:      in.Schedule,
			Thickness:     in.Thickness,
			Length:        in.Length,
			QtyAvailable:  in.QtyAvailable,
			ItemCode:      in.ItemCode,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(spool).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create spool: %w", err)
	}

	s.activity.Log(userID, "SPOOL_CREATE",
		fmt.Sprintf("created spool %s with %d items", spoolID, len(spool.Items)))
	return spool, nil
}

// Delete removes a spool and its items. Consumption history rows survive:
// they keep the denormalized spool id for reporting.
func (s *SpoolService) Delete(ctx context.Context, spoolID, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.GetBySpoolID(spoolID); errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("spool %s: %w", spoolID, ErrNotFound)
		} else if err != nil {
			return err
		}
		return s.repo.DeleteBySpoolID(tx, spoolID)
	})
	if err != nil {
		return err
	}

	s.activity.Log(userID, "SPOOL_DELETE", fmt.Sprintf("deleted spool %s", spoolID))
	return nil
}

// NextSpoolID returns the next free id for a prefix, e.g. SP-018.
func (s *SpoolService) NextSpoolID(prefix string) (string, error) {
	max, err := s.repo.MaxSpoolSeq(prefix)
	if err != nil {
		return "", fmt.Errorf("spool sequence: %w", err)
	}
	return fmt.Sprintf("%s%03d", prefix, max+1), nil
}

// CompatibleItem is one spool item able to serve a demand, with how much it
// still holds in the demand's own unit.
type CompatibleItem struct {
	Item      entity.SpoolItem `json:"item"`
	Remaining entity.Quantity  `json:"remaining"`
}

// FindCompatibleItems returns spool items that can serve the given component
// demand. The component type is widened through the equivalence table, so a
// demand for ELBOW also surfaces stock registered as ELB or ELL.
func (s *SpoolService) FindCompatibleItems(componentType string, p1Bore float64) ([]CompatibleItem, error) {
	types := s.resolver.Resolve(componentType)
	items, err := s.repo.FindCandidates(s.db, types, p1Bore, spoolEpsilon)
	if err != nil {
		return nil, fmt.Errorf("find spool candidates: %w", err)
	}

	out := make([]CompatibleItem, 0, len(items))
	for _, item := range items {
		remaining := item.Remaining()
		if remaining.Value <= spoolEpsilon {
			continue
		}
		out = append(out, CompatibleItem{Item: item, Remaining: remaining})
	}
	return out, nil
}

// ConsumeItem draws stock off a spool item inside the caller's transaction
// and appends the consumption row tying it to the MIV record.
func (s *SpoolService) ConsumeItem(tx *gorm.DB, spoolItemID string, mivRecordID string, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("spool consume quantity must be positive: %w", ErrValidation)
	}

	var item entity.SpoolItem
	if err := tx.Where("id = ?", spoolItemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("spool item %s: %w", spoolItemID, ErrNotFound)
		}
		return err
	}

	remaining := item.Remaining()
	if remaining.Value+spoolEpsilon < qty {
		return fmt.Errorf("need %.4f %s, spool item %s holds %.4f: %w",
			qty, remaining.Unit(), spoolItemID, remaining.Value, ErrInsufficientStock)
	}

	item.Apply(-qty)
	if err := tx.Save(&item).Error; err != nil {
		return fmt.Errorf("update spool item: %w", err)
	}

	consumption := &entity.SpoolConsumption{
		SpoolItemID: item.ID,
		SpoolID:     item.SpoolFK,
		MIVRecordID: mivRecordID,
		UsedQty:     qty,
		Timestamp:   time.Now(),
	}
	return tx.Create(consumption).Error
}

// RestoreForMIV puts back every spool quantity an MIV record consumed and
// deletes the consumption rows. Used when the MIV record is edited or
// deleted.
func (s *SpoolService) RestoreForMIV(tx *gorm.DB, mivRecordID string) error {
	var rows []entity.SpoolConsumption
	if err := tx.Where("miv_record_id = ?", mivRecordID).Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		var item entity.SpoolItem
		err := tx.Where("id = ?", row.SpoolItemID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// spool was deleted after the consumption; nothing to restore
			continue
		} else if err != nil {
			return err
		}
		item.Apply(row.UsedQty)
		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("restore spool item %s: %w", row.SpoolItemID, err)
		}
	}
	return tx.Where("miv_record_id = ?", mivRecordID).Delete(&entity.SpoolConsumption{}).Error
}

func (s *SpoolService) UsageReport(spoolID string) ([]repository.SpoolUsage, error) {
	return s.repo.UsageReport(spoolID)
}

func (s *SpoolService) ItemHistory(spoolItemID string) ([]entity.SpoolConsumption, error) {
	return s.repo.ListConsumptionsByItem(spoolItemID)
}
