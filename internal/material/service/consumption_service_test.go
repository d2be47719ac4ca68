package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/testutil"
	"gorm.io/gorm"
)

type lineFixture struct {
	project *entity.Project
	pipe    *entity.TakeOffItem
	elbow   *entity.TakeOffItem
}

// seedLine creates a project with one line holding a pipe row (20 m) and an
// elbow row (4 pcs at 6 in bore).
func seedLine(t *testing.T, db *gorm.DB) *lineFixture {
	t.Helper()
	project := testutil.SeedProject(t, db, "PRJ-"+t.Name())

	pipe := &entity.TakeOffItem{
		ProjectID:    project.ID,
		LineNo:       "L-100",
		ItemType:     "Pipe, Seamless",
		ItemCode:     "P-001",
		MaterialCode: "A106B",
		P1BoreIn:     6,
		LengthM:      20,
	}
	elbow := &entity.TakeOffItem{
		ProjectID:    project.ID,
		LineNo:       "L-100",
		ItemType:     "ELBOW",
		ItemCode:     "E-001",
		MaterialCode: "A234-WPB",
		P1BoreIn:     6,
		Quantity:     4,
	}
	if err := db.Create(pipe).Error; err != nil {
		t.Fatalf("seed pipe: %v", err)
	}
	if err := db.Create(elbow).Error; err != nil {
		t.Fatalf("seed elbow: %v", err)
	}
	return &lineFixture{project: project, pipe: pipe, elbow: elbow}
}

// seedSpoolWithElbows creates a spool holding ELB stock at 6 in bore.
func seedSpoolWithElbows(t *testing.T, db *gorm.DB, qty float64) *entity.SpoolItem {
	t.Helper()
	spool := &entity.Spool{
		SpoolID:  "SP-" + t.Name(),
		Location: "yard",
		Items: []entity.SpoolItem{
			{SpoolFK: "SP-" + t.Name(), ComponentType: "ELB", P1Bore: 6, QtyAvailable: qty},
		},
	}
	if err := db.Create(spool).Error; err != nil {
		t.Fatalf("seed spool: %v", err)
	}
	return &spool.Items[0]
}

func progressByItem(t *testing.T, db *gorm.DB, takeOffItemID string) *entity.ProgressSnapshot {
	t.Helper()
	var row entity.ProgressSnapshot
	if err := db.Where("take_off_item_id = ?", takeOffItemID).First(&row).Error; err != nil {
		t.Fatalf("progress row for %s: %v", takeOffItemID, err)
	}
	return &row
}

func TestRegisterMIVRebuildsProgress(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	ctx := context.Background()

	record, err := services.Consumption.RegisterMIV(ctx, RegisterMIVRequest{
		ProjectID: fx.project.ID,
		LineNo:    "L-100",
		MIVTag:    "MIV-001",
		Items: []ItemAllocation{
			{TakeOffItemID: fx.elbow.ID, UsedQty: 2},
			{TakeOffItemID: fx.pipe.ID, UsedQty: 7.5},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("RegisterMIV: %v", err)
	}
	if record.ID == "" {
		t.Fatal("record has no id")
	}

	elbowRow := progressByItem(t, db, fx.elbow.ID)
	if elbowRow.TotalQty != 4 || elbowRow.UsedQty != 2 || elbowRow.RemainingQty != 2 {
		t.Fatalf("elbow progress = %+v, want total 4 used 2 remaining 2", elbowRow)
	}
	if elbowRow.Unit != "pcs" {
		t.Fatalf("elbow unit = %q, want pcs", elbowRow.Unit)
	}

	pipeRow := progressByItem(t, db, fx.pipe.ID)
	if pipeRow.TotalQty != 20 || pipeRow.UsedQty != 7.5 || pipeRow.RemainingQty != 12.5 {
		t.Fatalf("pipe progress = %+v, want total 20 used 7.5 remaining 12.5", pipeRow)
	}
	if pipeRow.Unit != "m" {
		t.Fatalf("pipe unit = %q, want m", pipeRow.Unit)
	}
}

func TestRegisterMIVDuplicateTag(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	ctx := context.Background()

	req := RegisterMIVRequest{
		ProjectID: fx.project.ID,
		LineNo:    "L-100",
		MIVTag:    "MIV-DUP",
		Items:     []ItemAllocation{{TakeOffItemID: fx.elbow.ID, UsedQty: 1}},
	}
	if _, err := services.Consumption.RegisterMIV(ctx, req, "tester"); err != nil {
		t.Fatalf("first RegisterMIV: %v", err)
	}
	if _, err := services.Consumption.RegisterMIV(ctx, req, "tester"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second RegisterMIV error = %v, want ErrDuplicate", err)
	}
}

func TestSpoolEquivalenceFeedsElbowDemand(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	spoolItem := seedSpoolWithElbows(t, db, 5)
	ctx := context.Background()

	_, err := services.Consumption.RegisterMIV(ctx, RegisterMIVRequest{
		ProjectID:  fx.project.ID,
		LineNo:     "L-100",
		MIVTag:     "MIV-SPOOL",
		SpoolItems: []SpoolAllocation{{SpoolItemID: spoolItem.ID, UsedQty: 3}},
	}, "tester")
	if err != nil {
		t.Fatalf("RegisterMIV: %v", err)
	}

	// ELB spool stock satisfies the ELBOW take-off row through equivalence
	elbowRow := progressByItem(t, db, fx.elbow.ID)
	if elbowRow.UsedQty != 3 || elbowRow.RemainingQty != 1 {
		t.Fatalf("elbow progress = used %v remaining %v, want 3 and 1", elbowRow.UsedQty, elbowRow.RemainingQty)
	}

	// pipe row at the same bore must not absorb the elbow bucket
	pipeRow := progressByItem(t, db, fx.pipe.ID)
	if pipeRow.UsedQty != 0 {
		t.Fatalf("pipe progress used = %v, want 0", pipeRow.UsedQty)
	}

	var item entity.SpoolItem
	if err := db.Where("id = ?", spoolItem.ID).First(&item).Error; err != nil {
		t.Fatalf("reload spool item: %v", err)
	}
	if item.QtyAvailable != 2 {
		t.Fatalf("spool qty after consume = %v, want 2", item.QtyAvailable)
	}
}

func TestSpoolOverdrawRejected(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	spoolItem := seedSpoolWithElbows(t, db, 2)
	ctx := context.Background()

	_, err := services.Consumption.RegisterMIV(ctx, RegisterMIVRequest{
		ProjectID:  fx.project.ID,
		LineNo:     "L-100",
		MIVTag:     "MIV-OVER",
		SpoolItems: []SpoolAllocation{{SpoolItemID: spoolItem.ID, UsedQty: 3}},
	}, "tester")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("RegisterMIV error = %v, want ErrInsufficientStock", err)
	}

	// the failed registration must leave nothing behind
	var count int64
	db.Model(&entity.MIVRecord{}).Where("project_id = ?", fx.project.ID).Count(&count)
	if count != 0 {
		t.Fatalf("MIV records after rollback = %d, want 0", count)
	}
	var item entity.SpoolItem
	db.Where("id = ?", spoolItem.ID).First(&item)
	if item.QtyAvailable != 2 {
		t.Fatalf("spool qty after rollback = %v, want 2", item.QtyAvailable)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	ctx := context.Background()

	_, err := services.Consumption.RegisterMIV(ctx, RegisterMIVRequest{
		ProjectID: fx.project.ID,
		LineNo:    "L-100",
		MIVTag:    "MIV-IDEM",
		Items:     []ItemAllocation{{TakeOffItemID: fx.elbow.ID, UsedQty: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("RegisterMIV: %v", err)
	}

	first := progressByItem(t, db, fx.elbow.ID)

	if err := services.Consumption.RebuildLineProgress(ctx, fx.project.ID, "L-100"); err != nil {
		t.Fatalf("RebuildLineProgress: %v", err)
	}
	if err := services.Consumption.RebuildLineProgress(ctx, fx.project.ID, "L-100"); err != nil {
		t.Fatalf("second RebuildLineProgress: %v", err)
	}

	second := progressByItem(t, db, fx.elbow.ID)
	if first.TotalQty != second.TotalQty || first.UsedQty != second.UsedQty || first.RemainingQty != second.RemainingQty {
		t.Fatalf("rebuild changed values: %+v vs %+v", first, second)
	}

	var count int64
	db.Model(&entity.ProgressSnapshot{}).
		Where("project_id = ? AND line_no = ?", fx.project.ID, "L-100").Count(&count)
	if count != 2 {
		t.Fatalf("progress rows = %d, want 2", count)
	}
}

func TestDeleteMIVRestoresStockAndProgress(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	spoolItem := seedSpoolWithElbows(t, db, 5)
	warehouse := testutil.SeedWarehouse(t, db, "WH1")
	ctx := context.Background()

	invItem, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A234-WPB",
		Size:         "6IN",
		Quantity:     10,
		UnitPrice:    3,
	}, "tester")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}

	record, err := services.Consumption.RegisterMIV(ctx, RegisterMIVRequest{
		ProjectID: fx.project.ID,
		LineNo:    "L-100",
		MIVTag:    "MIV-DEL",
		Items: []ItemAllocation{
			{TakeOffItemID: fx.elbow.ID, UsedQty: 2, InventoryItemID: &invItem.ID},
		},
		SpoolItems: []SpoolAllocation{{SpoolItemID: spoolItem.ID, UsedQty: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("RegisterMIV: %v", err)
	}

	reloaded, err := services.Ledger.GetItem(invItem.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if reloaded.PhysicalQty != 8 || reloaded.AvailableQty != 8 {
		t.Fatalf("warehouse after draw = physical %v available %v, want 8/8", reloaded.PhysicalQty, reloaded.AvailableQty)
	}

	if err := services.Consumption.DeleteMIV(ctx, record.ID, "tester"); err != nil {
		t.Fatalf("DeleteMIV: %v", err)
	}

	var item entity.SpoolItem
	db.Where("id = ?", spoolItem.ID).First(&item)
	if item.QtyAvailable != 5 {
		t.Fatalf("spool qty after delete = %v, want 5", item.QtyAvailable)
	}

	restored, err := services.Ledger.GetItem(invItem.ID)
	if err != nil {
		t.Fatalf("GetItem after delete: %v", err)
	}
	if restored.PhysicalQty != 10 || restored.AvailableQty != 10 {
		t.Fatalf("warehouse after delete = physical %v available %v, want 10/10", restored.PhysicalQty, restored.AvailableQty)
	}

	elbowRow := progressByItem(t, db, fx.elbow.ID)
	if elbowRow.UsedQty != 0 || elbowRow.RemainingQty != 4 {
		t.Fatalf("elbow progress after delete = used %v remaining %v, want 0 and 4", elbowRow.UsedQty, elbowRow.RemainingQty)
	}
}

func TestEditMIVReplacesAllocations(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	ctx := context.Background()

	record, err := services.Consumption.RegisterMIV(ctx, RegisterMIVRequest{
		ProjectID: fx.project.ID,
		LineNo:    "L-100",
		MIVTag:    "MIV-EDIT",
		Items:     []ItemAllocation{{TakeOffItemID: fx.elbow.ID, UsedQty: 3}},
	}, "tester")
	if err != nil {
		t.Fatalf("RegisterMIV: %v", err)
	}

	_, err = services.Consumption.EditMIV(ctx, EditMIVRequest{
		MIVRecordID: record.ID,
		Items:       []ItemAllocation{{TakeOffItemID: fx.elbow.ID, UsedQty: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("EditMIV: %v", err)
	}

	elbowRow := progressByItem(t, db, fx.elbow.ID)
	if elbowRow.UsedQty != 1 || elbowRow.RemainingQty != 3 {
		t.Fatalf("elbow progress after edit = used %v remaining %v, want 1 and 3", elbowRow.UsedQty, elbowRow.RemainingQty)
	}

	var rows []entity.TakeOffConsumption
	db.Where("miv_record_id = ?", record.ID).Find(&rows)
	if len(rows) != 1 || rows[0].UsedQty != 1 {
		t.Fatalf("consumption rows after edit = %+v, want one row of 1", rows)
	}
}

func TestRegisterMIVUnknownLine(t *testing.T) {
	services, db := newTestServices(t)
	fx := seedLine(t, db)
	ctx := context.Background()

	_, err := services.Consumption.RegisterMIV(ctx, RegisterMIVRequest{
		ProjectID: fx.project.ID,
		LineNo:    "L-404",
		MIVTag:    "MIV-X",
		Items:     []ItemAllocation{{TakeOffItemID: fx.elbow.ID, UsedQty: 1}},
	}, "tester")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("RegisterMIV error = %v, want ErrNotFound", err)
	}
}
