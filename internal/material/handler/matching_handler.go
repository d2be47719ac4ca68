package handler

import (
	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	svc *service.MatchingService
}

func NewMatchingHandler(svc *service.MatchingService) *MatchingHandler {
	return &MatchingHandler{svc: svc}
}

func (h *MatchingHandler) Match(c *gin.Context) {
	candidates, err := h.svc.Match(c.Query("source_code"), c.Query("source_size"), c.Query("warehouse_id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, candidates)
}

func (h *MatchingHandler) RecordSelection(c *gin.Context) {
	var req service.RecordSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rule, err := h.svc.RecordSelection(req, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rule)
}

func (h *MatchingHandler) Deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(c.Param("id"), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *MatchingHandler) ListRules(c *gin.Context) {
	rules, err := h.svc.ListRules()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rules)
}
