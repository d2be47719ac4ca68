package handler

import (
	"strconv"

	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc *service.LedgerService
}

func NewInventoryHandler(svc *service.LedgerService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	items, total, err := h.svc.List(repository.InventoryListParams{
		WarehouseID:  c.Query("warehouse_id"),
		MaterialCode: c.Query("material_code"),
		Keyword:      c.Query("keyword"),
		LowStock:     c.Query("low_stock") == "true",
		Page:         page,
		Size:         size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": items, "total": total, "page": page, "size": size})
}

func (h *InventoryHandler) Get(c *gin.Context) {
	item, err := h.svc.GetItem(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, item)
}

func (h *InventoryHandler) Receive(c *gin.Context) {
	var req service.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.svc.Receive(c.Request.Context(), req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, item)
}

func (h *InventoryHandler) Issue(c *gin.Context) {
	var req service.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Issue(c.Request.Context(), req, currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	adjustment, err := h.svc.AdjustStock(c.Request.Context(), req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, adjustment)
}

func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	transferNo, err := h.svc.Transfer(c.Request.Context(), req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"transfer_no": transferNo})
}

func (h *InventoryHandler) Transactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	txs, total, err := h.svc.ListTransactions(c.Query("inventory_item_id"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": txs, "total": total, "page": page, "size": size})
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.svc.GetLowStock()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (h *InventoryHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summarize(c.Query("warehouse_id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

func (h *InventoryHandler) CreateWarehouse(c *gin.Context) {
	var w entity.Warehouse
	if err := c.ShouldBindJSON(&w); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.CreateWarehouse(&w); err != nil {
		fail(c, err)
		return
	}
	ok(c, w)
}

func (h *InventoryHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.svc.ListWarehouses()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, warehouses)
}
