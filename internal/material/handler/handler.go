package handler

import (
	"errors"
	"net/http"

	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler group.
type Handlers struct {
	Project     *ProjectHandler
	Consumption *ConsumptionHandler
	Spool       *SpoolHandler
	Inventory   *InventoryHandler
	Reservation *ReservationHandler
	Matching    *MatchingHandler
	Activity    *ActivityHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Project:     NewProjectHandler(services.TakeOff),
		Consumption: NewConsumptionHandler(services.Consumption),
		Spool:       NewSpoolHandler(services.Spool),
		Inventory:   NewInventoryHandler(services.Ledger),
		Reservation: NewReservationHandler(services.Reservation),
		Matching:    NewMatchingHandler(services.Matching),
		Activity:    NewActivityHandler(services.Activity),
	}
}

func ok(c *gin.Context, data interface{}) {
	if data == nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
}

// fail maps service sentinels to HTTP statuses; anything unrecognized is a 500.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInsufficientReservation),
		errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"code": 10003, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}

func currentUser(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
