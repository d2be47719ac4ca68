package handler

import (
	"strconv"

	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

type SpoolHandler struct {
	svc *service.SpoolService
}

func NewSpoolHandler(svc *service.SpoolService) *SpoolHandler {
	return &SpoolHandler{svc: svc}
}

func (h *SpoolHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	spools, total, err := h.svc.List(repository.SpoolListParams{
		SpoolID:  c.Query("spool_id"),
		Location: c.Query("location"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": spools, "total": total, "page": page, "size": size})
}

func (h *SpoolHandler) Get(c *gin.Context) {
	spool, err := h.svc.Get(c.Param("spool_id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, spool)
}

func (h *SpoolHandler) Create(c *gin.Context) {
	var req service.CreateSpoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	spool, err := h.svc.Create(c.Request.Context(), req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, spool)
}

func (h *SpoolHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("spool_id"), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *SpoolHandler) NextID(c *gin.Context) {
	next, err := h.svc.NextSpoolID(c.DefaultQuery("prefix", "SP-"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"spool_id": next})
}

func (h *SpoolHandler) Compatible(c *gin.Context) {
	bore, err := strconv.ParseFloat(c.Query("p1_bore"), 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	items, err := h.svc.FindCompatibleItems(c.Query("component_type"), bore)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (h *SpoolHandler) Report(c *gin.Context) {
	report, err := h.svc.UsageReport(c.Query("spool_id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}

func (h *SpoolHandler) ItemHistory(c *gin.Context) {
	history, err := h.svc.ItemHistory(c.Param("item_id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, history)
}
