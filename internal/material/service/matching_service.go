package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"gorm.io/gorm"
)

// DefaultRuleTTL bounds how stale the in-process rule cache may get.
const DefaultRuleTTL = 30 * time.Minute

// MatchingService suggests warehouse stock for take-off codes. Exact
// material-code hits come first; learned mapping rules widen the search.
// Rules sit behind a read-through cache with an injected clock, reloaded
// after the TTL and invalidated on every rule write.
type MatchingService struct {
	repo     *repository.MappingRepository
	invRepo  *repository.InventoryRepository
	activity *ActivityService

	clock func() time.Time
	ttl   time.Duration

	mu       sync.RWMutex
	rules    []entity.ItemMapping
	loadedAt time.Time
	loaded   bool
}

func NewMatchingService(repo *repository.MappingRepository, invRepo *repository.InventoryRepository, activity *ActivityService, clock func() time.Time, ttl time.Duration) *MatchingService {
	if clock == nil {
		clock = time.Now
	}
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}
	return &MatchingService{
		repo:     repo,
		invRepo:  invRepo,
		activity: activity,
		clock:    clock,
		ttl:      ttl,
	}
}

// activeRules serves the rule set from cache, reloading once it expires.
func (s *MatchingService) activeRules() ([]entity.ItemMapping, error) {
	s.mu.RLock()
	if s.loaded && s.clock().Sub(s.loadedAt) < s.ttl {
		rules := s.rules
		s.mu.RUnlock()
		return rules, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded && s.clock().Sub(s.loadedAt) < s.ttl {
		return s.rules, nil
	}
	rules, err := s.repo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("load mapping rules: %w", err)
	}
	s.rules = rules
	s.loadedAt = s.clock()
	s.loaded = true
	return rules, nil
}

// Invalidate drops the cached rule set. Called after every rule write; the
// next lookup reloads from the database.
func (s *MatchingService) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.rules = nil
	s.mu.Unlock()
}

// MatchCandidate is one suggested stock position with its provenance.
type MatchCandidate struct {
	Item       entity.InventoryItem `json:"item"`
	MatchType  string               `json:"match_type"` // EXACT or RULE
	Confidence float64              `json:"confidence"`
	RuleID     string               `json:"rule_id,omitempty"`
}

// Match returns warehouse candidates for a take-off code, exact hits first,
// then rule-derived ones ordered by rule confidence.
func (s *MatchingService) Match(sourceCode, sourceSize, warehouseID string) ([]MatchCandidate, error) {
	sourceCode = strings.TrimSpace(sourceCode)
	if sourceCode == "" {
		return nil, fmt.Errorf("source code is required: %w", ErrValidation)
	}

	var candidates []MatchCandidate
	seen := make(map[string]bool)

	exact, _, err := s.invRepo.List(repository.InventoryListParams{
		WarehouseID:  warehouseID,
		MaterialCode: sourceCode,
		Size:         100,
	})
	if err != nil {
		return nil, err
	}
	for _, item := range exact {
		if sourceSize != "" && item.Size != "" && item.Size != sourceSize {
			continue
		}
		seen[item.ID] = true
		candidates = append(candidates, MatchCandidate{Item: item, MatchType: "EXACT", Confidence: 1})
	}

	rules, err := s.activeRules()
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if rule.SourceCode != sourceCode {
			continue
		}
		if rule.SourceSize != "" && sourceSize != "" && rule.SourceSize != sourceSize {
			continue
		}
		matched, _, err := s.invRepo.List(repository.InventoryListParams{
			WarehouseID:  warehouseID,
			MaterialCode: rule.TargetCode,
			Size:         100,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range matched {
			if seen[item.ID] {
				continue
			}
			if rule.TargetSize != "" && item.Size != "" && item.Size != rule.TargetSize {
				continue
			}
			seen[item.ID] = true
			candidates = append(candidates, MatchCandidate{
				Item:       item,
				MatchType:  "RULE",
				Confidence: rule.ConfidenceScore,
				RuleID:     rule.ID,
			})
		}
	}

	return candidates, nil
}

type RecordSelectionRequest struct {
	SourceCode string `json:"source_code" binding:"required"`
	SourceSize string `json:"source_size"`
	TargetCode string `json:"target_code" binding:"required"`
	TargetSize string `json:"target_size"`
}

// RecordSelection learns from a user picking a warehouse item for a take-off
// code. A known pair gets its usage count and confidence bumped; a new pair
// becomes a USER_LEARNED rule. Either way the cache is invalidated.
func (s *MatchingService) RecordSelection(req RecordSelectionRequest, userID string) (*entity.ItemMapping, error) {
	now := s.clock()

	rule, err := s.repo.FindPair(req.SourceCode, req.SourceSize, req.TargetCode, req.TargetSize)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rule = &entity.ItemMapping{
			SourceCode:      req.SourceCode,
			SourceSize:      req.SourceSize,
			TargetCode:      req.TargetCode,
			TargetSize:      req.TargetSize,
			MappingType:     entity.MappingUserLearned,
			ConfidenceScore: 0.7,
			UsageCount:      1,
			LastUsed:        &now,
			CreatedBy:       userID,
			IsActive:        true,
		}
		if err := s.repo.Create(rule); err != nil {
			return nil, fmt.Errorf("create mapping rule: %w", err)
		}
	} else if err != nil {
		return nil, err
	} else {
		rule.UsageCount++
		rule.LastUsed = &now
		rule.IsActive = true
		// confidence creeps toward 1 with repeated confirmations
		rule.ConfidenceScore += (1 - rule.ConfidenceScore) * 0.1
		if err := s.repo.Update(rule); err != nil {
			return nil, fmt.Errorf("update mapping rule: %w", err)
		}
	}

	s.Invalidate()
	s.activity.Log(userID, "MAPPING_LEARN",
		fmt.Sprintf("mapped %s -> %s", req.SourceCode, req.TargetCode))
	return rule, nil
}

// Deactivate retires a mapping rule without deleting its history.
func (s *MatchingService) Deactivate(ruleID, userID string) error {
	if _, err := s.repo.Get(ruleID); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("mapping rule %s: %w", ruleID, ErrNotFound)
	} else if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ruleID); err != nil {
		return err
	}
	s.Invalidate()
	s.activity.Log(userID, "MAPPING_DEACTIVATE", fmt.Sprintf("deactivated rule %s", ruleID))
	return nil
}

func (s *MatchingService) ListRules() ([]entity.ItemMapping, error) {
	return s.repo.ListActive()
}
