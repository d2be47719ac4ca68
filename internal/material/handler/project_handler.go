package handler

import (
	"strconv"

	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	svc *service.TakeOffService
}

func NewProjectHandler(svc *service.TakeOffService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.svc.CreateProject(req.Name, req.Description, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.ListProjects()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.GetProject(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, project)
}

func (h *ProjectHandler) AddItems(c *gin.Context) {
	var inputs []service.TakeOffItemInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		badRequest(c, err)
		return
	}
	items, err := h.svc.AddItems(c.Request.Context(), c.Param("id"), inputs, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (h *ProjectHandler) LineItems(c *gin.Context) {
	items, err := h.svc.ListLineItems(c.Param("id"), c.Query("line_no"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (h *ProjectHandler) SearchLines(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	lines, err := h.svc.SearchLines(c.Param("id"), c.Query("q"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, lines)
}
