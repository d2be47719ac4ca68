package handler

import (
	"strconv"

	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	svc *service.ActivityService
}

func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func (h *ActivityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	logs, total, err := h.svc.List(c.Query("user"), c.Query("action"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": logs, "total": total, "page": page, "size": size})
}
