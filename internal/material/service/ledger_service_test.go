package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/testutil"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReceiveWeightedAveragePrice(t *testing.T) {
	services, db := newTestServices(t)
	warehouse := testutil.SeedWarehouse(t, db, "WH-AVG")
	ctx := context.Background()

	item, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Size:         "6IN",
		Quantity:     10,
		UnitPrice:    2,
	}, "tester")
	if err != nil {
		t.Fatalf("first Receive: %v", err)
	}
	if !almostEqual(item.UnitPrice, 2) {
		t.Fatalf("unit price after first receipt = %v, want 2", item.UnitPrice)
	}

	item, err = services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Size:         "6IN",
		Quantity:     10,
		UnitPrice:    4,
	}, "tester")
	if err != nil {
		t.Fatalf("second Receive: %v", err)
	}

	// (10*2 + 10*4) / 20 = 3
	if !almostEqual(item.UnitPrice, 3) {
		t.Fatalf("weighted unit price = %v, want 3", item.UnitPrice)
	}
	if item.PhysicalQty != 20 || item.AvailableQty != 20 {
		t.Fatalf("quantities = physical %v available %v, want 20/20", item.PhysicalQty, item.AvailableQty)
	}
	if !almostEqual(item.TotalValue, 60) {
		t.Fatalf("total value = %v, want 60", item.TotalValue)
	}
}

func TestReceiveZeroPriceKeepsUnitPrice(t *testing.T) {
	services, db := newTestServices(t)
	warehouse := testutil.SeedWarehouse(t, db, "WH-ZP")
	ctx := context.Background()

	item, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Size:         "6IN",
		Quantity:     10,
		UnitPrice:    10,
	}, "tester")
	if err != nil {
		t.Fatalf("priced Receive: %v", err)
	}

	// an unpriced receipt must not dilute the holding's price
	item, err = services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Size:         "6IN",
		Quantity:     10,
	}, "tester")
	if err != nil {
		t.Fatalf("unpriced Receive: %v", err)
	}
	if !almostEqual(item.UnitPrice, 10) {
		t.Fatalf("unit price after unpriced receipt = %v, want 10", item.UnitPrice)
	}
	if item.PhysicalQty != 20 {
		t.Fatalf("physical = %v, want 20", item.PhysicalQty)
	}

	// a priced receipt into an unpriced position takes the receipt price
	item, err = services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "B16-9",
		Size:         "6IN",
		Quantity:     5,
	}, "tester")
	if err != nil {
		t.Fatalf("unpriced first Receive: %v", err)
	}
	if item.UnitPrice != 0 {
		t.Fatalf("unit price of unpriced position = %v, want 0", item.UnitPrice)
	}

	item, err = services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "B16-9",
		Size:         "6IN",
		Quantity:     5,
		UnitPrice:    3,
	}, "tester")
	if err != nil {
		t.Fatalf("priced second Receive: %v", err)
	}
	if !almostEqual(item.UnitPrice, 3) {
		t.Fatalf("unit price after pricing an unpriced position = %v, want 3", item.UnitPrice)
	}
}

func TestIssueInsufficientStock(t *testing.T) {
	services, db := newTestServices(t)
	warehouse := testutil.SeedWarehouse(t, db, "WH-ISS")
	ctx := context.Background()

	item, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Quantity:     5,
	}, "tester")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}

	err = services.Ledger.Issue(ctx, IssueRequest{
		InventoryItemID: item.ID,
		Quantity:        6,
	}, "tester")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Issue error = %v, want ErrInsufficientStock", err)
	}

	reloaded, _ := services.Ledger.GetItem(item.ID)
	if reloaded.PhysicalQty != 5 {
		t.Fatalf("physical after failed issue = %v, want 5", reloaded.PhysicalQty)
	}
}

func TestLedgerEntriesCarryBalances(t *testing.T) {
	services, db := newTestServices(t)
	warehouse := testutil.SeedWarehouse(t, db, "WH-BAL")
	ctx := context.Background()

	item, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Quantity:     10,
	}, "tester")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := services.Ledger.Issue(ctx, IssueRequest{
		InventoryItemID: item.ID,
		Quantity:        4,
	}, "tester"); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var txs []entity.InventoryTransaction
	if err := db.Where("inventory_item_id = ?", item.ID).Order("created_at ASC").Find(&txs).Error; err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("transactions = %d, want 2", len(txs))
	}
	in, out := txs[0], txs[1]
	if in.TransactionType != entity.TxTypeIn || in.BalanceBefore != 0 || in.BalanceAfter != 10 {
		t.Fatalf("IN entry = %+v, want balances 0 -> 10", in)
	}
	if out.TransactionType != entity.TxTypeOut || out.BalanceBefore != 10 || out.BalanceAfter != 6 {
		t.Fatalf("OUT entry = %+v, want balances 10 -> 6", out)
	}
	if out.Quantity != -4 {
		t.Fatalf("OUT quantity = %v, want -4", out.Quantity)
	}
}

func TestTransferEmitsPairedEntries(t *testing.T) {
	services, db := newTestServices(t)
	src := testutil.SeedWarehouse(t, db, "WH-SRC")
	dst := testutil.SeedWarehouse(t, db, "WH-DST")
	ctx := context.Background()

	item, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  src.ID,
		MaterialCode: "A106B",
		Size:         "6IN",
		Quantity:     10,
		UnitPrice:    2,
	}, "tester")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}

	transferNo, err := services.Ledger.Transfer(ctx, TransferRequest{
		InventoryItemID: item.ID,
		ToWarehouseID:   dst.ID,
		Quantity:        4,
	}, "tester")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if transferNo == "" {
		t.Fatal("empty transfer number")
	}

	var txs []entity.InventoryTransaction
	if err := db.Where("reference_no = ?", transferNo).Order("quantity ASC").Find(&txs).Error; err != nil {
		t.Fatalf("load transfer entries: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("transfer entries = %d, want 2", len(txs))
	}
	if txs[0].TransactionType != entity.TxTypeTransferOut || txs[0].Quantity != -4 {
		t.Fatalf("out leg = %+v, want TRANSFER_OUT of -4", txs[0])
	}
	if txs[1].TransactionType != entity.TxTypeTransferIn || txs[1].Quantity != 4 {
		t.Fatalf("in leg = %+v, want TRANSFER_IN of 4", txs[1])
	}

	srcItem, _ := services.Ledger.GetItem(item.ID)
	if srcItem.PhysicalQty != 6 {
		t.Fatalf("source physical = %v, want 6", srcItem.PhysicalQty)
	}

	var dstItem entity.InventoryItem
	if err := db.Where("warehouse_id = ? AND material_code = ?", dst.ID, "A106B").First(&dstItem).Error; err != nil {
		t.Fatalf("destination item: %v", err)
	}
	if dstItem.PhysicalQty != 4 {
		t.Fatalf("destination physical = %v, want 4", dstItem.PhysicalQty)
	}
}

func TestAdjustBelowReservedRejected(t *testing.T) {
	services, db := newTestServices(t)
	warehouse := testutil.SeedWarehouse(t, db, "WH-ADJ")
	ctx := context.Background()

	item, err := services.Ledger.Receive(ctx, ReceiveRequest{
		WarehouseID:  warehouse.ID,
		MaterialCode: "A106B",
		Quantity:     10,
	}, "tester")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if _, err := services.Reservation.Reserve(ctx, ReserveRequest{
		InventoryItemID: item.ID,
		Quantity:        6,
	}, "tester"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	_, err = services.Ledger.AdjustStock(ctx, AdjustStockRequest{
		InventoryItemID: item.ID,
		NewQuantity:     5,
		AdjustmentType:  "PHYSICAL_COUNT",
		Reason:          "cycle count",
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("AdjustStock error = %v, want ErrValidation", err)
	}

	adjustment, err := services.Ledger.AdjustStock(ctx, AdjustStockRequest{
		InventoryItemID: item.ID,
		NewQuantity:     8,
		AdjustmentType:  "PHYSICAL_COUNT",
		Reason:          "cycle count",
	}, "tester")
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if adjustment.QuantityAdjusted != -2 {
		t.Fatalf("adjusted delta = %v, want -2", adjustment.QuantityAdjusted)
	}

	reloaded, _ := services.Ledger.GetItem(item.ID)
	if reloaded.PhysicalQty != 8 || reloaded.ReservedQty != 6 || reloaded.AvailableQty != 2 {
		t.Fatalf("after adjust = physical %v reserved %v available %v, want 8/6/2",
			reloaded.PhysicalQty, reloaded.ReservedQty, reloaded.AvailableQty)
	}
}
