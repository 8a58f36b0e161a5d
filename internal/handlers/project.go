package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *services.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: logger}
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), actor, services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns projects the current user owns or participates in
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	projects, total, err := h.projectService.ListProjects(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, params.Response(total)))
}

// GetProject returns a specific project by ID
func (h *ProjectHandler) GetProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), actor, middleware.GetPathID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject updates title and/or description
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), actor, middleware.GetPathID(c), services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), actor, middleware.GetPathID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddParticipant adds a user to the project
func (h *ProjectHandler) AddParticipant(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	participants, err := h.projectService.AddParticipant(c.Request.Context(), actor, middleware.GetPathID(c), req.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"participants": dto.ToUserSummaryDTOs(participants)})
}

// ListParticipants returns the project's participants
func (h *ProjectHandler) ListParticipants(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	participants, err := h.projectService.ListParticipants(c.Request.Context(), actor, middleware.GetPathID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": dto.ToUserSummaryDTOs(participants)})
}

// SearchCandidates finds users that can still be added to the project
func (h *ProjectHandler) SearchCandidates(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := h.projectService.SearchCandidates(c.Request.Context(), actor, middleware.GetPathID(c), c.Query("query"), utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserSummaryDTOs(users)})
}

// GetProgress returns the completion percentage of the project's tasks
func (h *ProjectHandler) GetProgress(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := h.projectService.GetProgress(c.Request.Context(), actor, middleware.GetPathID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProgressDTO(*progress))
}

// ListTasks returns the project's tasks
func (h *ProjectHandler) ListTasks(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.projectService.ListTasks(c.Request.Context(), actor, middleware.GetPathID(c), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Response(total)))
}
