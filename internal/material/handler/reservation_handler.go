package handler

import (
	"strconv"

	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	reservations, total, err := h.svc.List(repository.ReservationListParams{
		InventoryItemID: c.Query("inventory_item_id"),
		ProjectID:       c.Query("project_id"),
		Status:          c.Query("status"),
		Page:            page,
		Size:            size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": reservations, "total": total, "page": page, "size": size})
}

func (h *ReservationHandler) Get(c *gin.Context) {
	reservation, err := h.svc.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, reservation)
}

func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req service.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reservation, err := h.svc.Reserve(c.Request.Context(), req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, reservation)
}

type consumeRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

func (h *ReservationHandler) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Consume(c.Request.Context(), c.Param("id"), req.Quantity, currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
