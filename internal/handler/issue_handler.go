package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IssueService is the part of service.IssueService the HTTP layer drives.
type IssueService interface {
	Create(ctx context.Context, reporterID uuid.UUID, in service.CreateIssueInput) (*model.IssueRecord, error)
	Get(ctx context.Context, id uint) (*model.IssueRecord, error)
	List(ctx context.Context) ([]model.IssueRecord, error)
	Update(ctx context.Context, id uint, patch service.IssuePatch) (*model.IssueRecord, error)
	Delete(ctx context.Context, id uint) (*model.IssueDeletion, error)
	Search(ctx context.Context, criteria service.SearchCriteria) ([]model.IssueRecord, error)
	StatusReport(ctx context.Context) ([]model.StatusCount, error)
}

type IssueHandler struct {
	issues IssueService
}

func NewIssueHandler(issues IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

type CreateIssueRequest struct {
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Status            string  `json:"status" binding:"omitempty,issue_status"`
	Priority          string  `json:"priority" binding:"omitempty,issue_priority"`
	AssigneeID        *string `json:"assignee_id"`
	ProjectID         *uint   `json:"project_id"`
	ProjectTaskID     *uint   `json:"project_task_id"`
	IndependentTaskID *uint   `json:"independent_task_id"`
}

// UpdateIssueRequest is a partial update. Blank title or description are
// ignored. An assignee_id of null or "" unassigns the issue.
type UpdateIssueRequest struct {
	Title       *string                  `json:"title"`
	Description *string                  `json:"description"`
	Status      *string                  `json:"status" binding:"omitempty,issue_status"`
	Priority    *string                  `json:"priority" binding:"omitempty,issue_priority"`
	AssigneeID  service.Optional[string] `json:"assignee_id" swaggertype:"string"`
}

type SearchIssuesQuery struct {
	Title      string `form:"title"`
	Status     string `form:"status" binding:"omitempty,issue_status"`
	Priority   string `form:"priority" binding:"omitempty,issue_priority"`
	AssigneeID string `form:"assignee_id"`
	ReporterID string `form:"reporter_id"`
	Keywords   string `form:"keywords"`
}

// Create godoc
// @Summary      Create an issue
// @Description  The authenticated caller becomes the reporter.
// @Tags         Issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        issue  body      CreateIssueRequest  true  "New issue"
// @Success      201    {object}  model.IssueRecord
// @Failure      400,422,429  {object}  map[string]string
// @Router       /issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	reporterID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := service.CreateIssueInput{
		Title:             req.Title,
		Description:       req.Description,
		ProjectID:         req.ProjectID,
		ProjectTaskID:     req.ProjectTaskID,
		IndependentTaskID: req.IndependentTaskID,
	}
	if req.Status != "" {
		in.Status, _ = model.ParseIssueStatus(req.Status)
	}
	if req.Priority != "" {
		in.Priority, _ = model.ParseIssuePriority(req.Priority)
	}
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		assigneeID, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		in.AssigneeID = &assigneeID
	}

	record, err := h.issues.Create(c.Request.Context(), reporterID, in)
	if err != nil {
		respondIssueError(c, err, "Failed to create issue")
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List godoc
// @Summary   List issues, newest first
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  model.IssueRecord
// @Router    /issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	records, err := h.issues.List(c.Request.Context())
	if err != nil {
		respondIssueError(c, err, "Failed to retrieve issues")
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetByID godoc
// @Summary   Get an issue
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "Issue ID"
// @Success   200  {object}  model.IssueRecord
// @Failure   404  {object}  map[string]string
// @Router    /issues/{id} [get]
func (h *IssueHandler) GetByID(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "Invalid issue ID format")
	if !ok {
		return
	}

	record, err := h.issues.Get(c.Request.Context(), id)
	if err != nil {
		respondIssueError(c, err, "Failed to retrieve issue")
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Update godoc
// @Summary   Partially update an issue
// @Tags      Issues
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id     path      int                 true  "Issue ID"
// @Param     patch  body      UpdateIssueRequest  true  "Fields to change"
// @Success   200    {object}  model.IssueRecord
// @Failure   400,404,422  {object}  map[string]string
// @Router    /issues/{id} [put]
// @Router    /issues/{id} [patch]
func (h *IssueHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "Invalid issue ID format")
	if !ok {
		return
	}

	var req UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var patch service.IssuePatch
	if req.Title != nil {
		patch.Title = service.Some(*req.Title)
	}
	if req.Description != nil {
		patch.Description = service.Some(*req.Description)
	}
	if req.Status != nil {
		status, _ := model.ParseIssueStatus(*req.Status)
		patch.Status = service.Some(status)
	}
	if req.Priority != nil {
		priority, _ := model.ParseIssuePriority(*req.Priority)
		patch.Priority = service.Some(priority)
	}
	if req.AssigneeID.Set {
		var assigneeID *uuid.UUID
		if v := strings.TrimSpace(req.AssigneeID.Value); v != "" {
			parsed, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
				return
			}
			assigneeID = &parsed
		}
		patch.AssigneeID = service.Some(assigneeID)
	}

	record, err := h.issues.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondIssueError(c, err, "Failed to update issue")
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete godoc
// @Summary   Delete an issue
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "Issue ID"
// @Success   200  {object}  model.IssueDeletion
// @Failure   404  {object}  map[string]string
// @Router    /issues/{id} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "Invalid issue ID format")
	if !ok {
		return
	}

	deletion, err := h.issues.Delete(c.Request.Context(), id)
	if err != nil {
		respondIssueError(c, err, "Failed to delete issue")
		return
	}
	if deletion == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, deletion)
}

// Search godoc
// @Summary   Search issues
// @Description  Every supplied filter must match. Title and keywords match case-insensitively.
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Param     title        query  string  false  "Title contains"
// @Param     status       query  string  false  "Status"
// @Param     priority     query  string  false  "Priority"
// @Param     assignee_id  query  string  false  "Assignee ID"
// @Param     reporter_id  query  string  false  "Reporter ID"
// @Param     keywords     query  string  false  "Title or description contains"
// @Success   200  {array}  model.IssueRecord
// @Router    /issues/search [get]
func (h *IssueHandler) Search(c *gin.Context) {
	var q SearchIssuesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	criteria := service.SearchCriteria{
		Title:    q.Title,
		Keywords: q.Keywords,
	}
	if q.Status != "" {
		criteria.Status, _ = model.ParseIssueStatus(q.Status)
	}
	if q.Priority != "" {
		criteria.Priority, _ = model.ParseIssuePriority(q.Priority)
	}
	if q.AssigneeID != "" {
		id, err := uuid.Parse(q.AssigneeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		criteria.AssigneeID = &id
	}
	if q.ReporterID != "" {
		id, err := uuid.Parse(q.ReporterID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reporter ID format"})
			return
		}
		criteria.ReporterID = &id
	}

	records, err := h.issues.Search(c.Request.Context(), criteria)
	if err != nil {
		respondIssueError(c, err, "Failed to search issues")
		return
	}
	c.JSON(http.StatusOK, records)
}

// Report godoc
// @Summary   Issue counts per status
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  model.StatusCount
// @Router    /issues/report [get]
func (h *IssueHandler) Report(c *gin.Context) {
	rows, err := h.issues.StatusReport(c.Request.Context())
	if err != nil {
		respondIssueError(c, err, "Failed to build report")
		return
	}
	if rows == nil {
		rows = []model.StatusCount{}
	}
	c.JSON(http.StatusOK, rows)
}

func respondIssueError(c *gin.Context, err error, fallback string) {
	if service.IsValidationError(err) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	log.Printf("❌ %s: %v", fallback, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// parseUintParam reads a numeric path parameter, answering 400 when it is not one.
func parseUintParam(c *gin.Context, name, msg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return uint(id), true
}
