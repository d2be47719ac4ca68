package handler

import (
	"strconv"

	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

type ConsumptionHandler struct {
	svc *service.ConsumptionService
}

func NewConsumptionHandler(svc *service.ConsumptionService) *ConsumptionHandler {
	return &ConsumptionHandler{svc: svc}
}

func (h *ConsumptionHandler) Register(c *gin.Context) {
	var req service.RegisterMIVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.svc.RegisterMIV(c.Request.Context(), req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, record)
}

func (h *ConsumptionHandler) Edit(c *gin.Context) {
	var req service.EditMIVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.MIVRecordID = c.Param("id")
	record, err := h.svc.EditMIV(c.Request.Context(), req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, record)
}

func (h *ConsumptionHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteMIV(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ConsumptionHandler) Get(c *gin.Context) {
	detail, err := h.svc.GetMIVDetail(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, detail)
}

func (h *ConsumptionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	records, total, err := h.svc.ListMIVs(repository.MIVListParams{
		ProjectID: c.Query("project_id"),
		LineNo:    c.Query("line_no"),
		MIVTag:    c.Query("miv_tag"),
		Page:      page,
		Size:      size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": records, "total": total, "page": page, "size": size})
}

func (h *ConsumptionHandler) LineProgress(c *gin.Context) {
	progress, err := h.svc.GetLineProgress(c.Query("project_id"), c.Query("line_no"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, progress)
}

func (h *ConsumptionHandler) ProjectSummary(c *gin.Context) {
	summary, err := h.svc.ProjectSummary(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

type rebuildRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	LineNo    string `json:"line_no" binding:"required"`
}

func (h *ConsumptionHandler) Rebuild(c *gin.Context) {
	var req rebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.RebuildLineProgress(c.Request.Context(), req.ProjectID, req.LineNo); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
