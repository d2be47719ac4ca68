package service

import (
	"context"
	"testing"
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeClock is an adjustable time source for exercising cache expiry.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newMatchingUnderTest(t *testing.T) (*MatchingService, *fakeClock, *Services, *gorm.DB) {
	t.Helper()
	services, db := newTestServices(t)
	repos := repository.NewRepositories(db)
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewMatchingService(repos.Mapping, repos.Inventory,
		NewActivityService(repos.Activity, zap.NewNop()), clock.Now, 30*time.Minute)
	return svc, clock, services, db
}

func TestMatchExactThenLearnedRule(t *testing.T) {
	svc, _, services, db := newMatchingUnderTest(t)
	warehouse := testutil.SeedWarehouse(t, db, "WH-M")
	ctx := context.Background()

	exact, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Size:         "6IN",
		Quantity:     10,
	}, "tester")
	if err != nil {
		t.Fatalf("Receive exact: %v", err)
	}
	alt, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B-EQ",
		Size:         "6IN",
		Quantity:     5,
	}, "tester")
	if err != nil {
		t.Fatalf("Receive alt: %v", err)
	}

	candidates, err := svc.Match("A106B", "6IN", warehouse.ID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Item.ID != exact.ID || candidates[0].MatchType != "EXACT" {
		t.Fatalf("candidates = %+v, want one EXACT hit on %s", candidates, exact.ID)
	}

	if _, err := svc.RecordSelection(RecordSelectionRequest{
		SourceCode: "A106B",
		SourceSize: "6IN",
		TargetCode: "A106B-EQ",
		TargetSize: "6IN",
	}, "tester"); err != nil {
		t.Fatalf("RecordSelection: %v", err)
	}

	candidates, err = svc.Match("A106B", "6IN", warehouse.ID)
	if err != nil {
		t.Fatalf("Match after learning: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates after learning = %d, want 2", len(candidates))
	}
	if candidates[1].Item.ID != alt.ID || candidates[1].MatchType != "RULE" {
		t.Fatalf("rule candidate = %+v, want RULE hit on %s", candidates[1], alt.ID)
	}
}

func TestRuleCacheExpiresWithClock(t *testing.T) {
	svc, clock, _, db := newMatchingUnderTest(t)

	// prime the cache with an empty rule set
	if _, err := svc.activeRules(); err != nil {
		t.Fatalf("activeRules: %v", err)
	}

	// a rule written behind the service's back stays invisible until expiry
	rule := &entity.ItemMapping{
		SourceCode:      "X-100",
		TargetCode:      "Y-200",
		MappingType:     entity.MappingManual,
		ConfidenceScore: 1,
		IsActive:        true,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("create rule: %v", err)
	}

	rules, err := svc.activeRules()
	if err != nil {
		t.Fatalf("activeRules: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("rules before expiry = %d, want 0 (stale cache)", len(rules))
	}

	clock.Advance(29 * time.Minute)
	rules, _ = svc.activeRules()
	if len(rules) != 0 {
		t.Fatalf("rules at 29m = %d, want 0", len(rules))
	}

	clock.Advance(2 * time.Minute)
	rules, err = svc.activeRules()
	if err != nil {
		t.Fatalf("activeRules after expiry: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("rules after expiry = %d, want 1", len(rules))
	}
}

func TestRecordSelectionInvalidatesCache(t *testing.T) {
	svc, _, _, _ := newMatchingUnderTest(t)

	if _, err := svc.activeRules(); err != nil {
		t.Fatalf("activeRules: %v", err)
	}

	if _, err := svc.RecordSelection(RecordSelectionRequest{
		SourceCode: "X-100",
		TargetCode: "Y-200",
	}, "tester"); err != nil {
		t.Fatalf("RecordSelection: %v", err)
	}

	// no clock advance needed: the write invalidated the cache
	rules, err := svc.activeRules()
	if err != nil {
		t.Fatalf("activeRules after write: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("rules after write = %d, want 1", len(rules))
	}
}

func TestRepeatedSelectionBumpsConfidence(t *testing.T) {
	svc, _, _, _ := newMatchingUnderTest(t)

	first, err := svc.RecordSelection(RecordSelectionRequest{
		SourceCode: "X-100",
		TargetCode: "Y-200",
	}, "tester")
	if err != nil {
		t.Fatalf("first RecordSelection: %v", err)
	}
	if first.MappingType != entity.MappingUserLearned || first.UsageCount != 1 {
		t.Fatalf("first rule = %+v, want USER_LEARNED with usage 1", first)
	}

	second, err := svc.RecordSelection(RecordSelectionRequest{
		SourceCode: "X-100",
		TargetCode: "Y-200",
	}, "tester")
	if err != nil {
		t.Fatalf("second RecordSelection: %v", err)
	}
	if second.UsageCount != 2 {
		t.Fatalf("usage count = %d, want 2", second.UsageCount)
	}
	if second.ConfidenceScore <= first.ConfidenceScore {
		t.Fatalf("confidence did not increase: %v -> %v", first.ConfidenceScore, second.ConfidenceScore)
	}
}
