package handler

import (
	"context"
	"net/http"
	"time"

	"projecthub/internal/middleware"
	"projecthub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectTaskStore interface {
	Create(ctx context.Context, task *model.ProjectTask) error
	GetByID(ctx context.Context, id uint) (*model.ProjectTask, error)
	ListByProject(ctx context.Context, projectID uint) ([]model.ProjectTask, error)
}

type IndependentTaskStore interface {
	Create(ctx context.Context, task *model.IndependentTask) error
	GetByID(ctx context.Context, id uint) (*model.IndependentTask, error)
	List(ctx context.Context, createdBy *uuid.UUID) ([]model.IndependentTask, error)
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type TaskResponse struct {
	ID          uint      `json:"id"`
	ProjectID   *uint     `json:"project_id,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func projectTaskResponse(t *model.ProjectTask) TaskResponse {
	projectID := t.ProjectID
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   &projectID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func independentTaskResponse(t *model.IndependentTask) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		CreatedBy:   t.CreatedBy.String(),
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ProjectTaskHandler serves tasks that belong to a project.
type ProjectTaskHandler struct {
	taskRepo    ProjectTaskStore
	projectRepo ProjectStore
}

func NewProjectTaskHandler(taskRepo ProjectTaskStore, projectRepo ProjectStore) *ProjectTaskHandler {
	return &ProjectTaskHandler{taskRepo: taskRepo, projectRepo: projectRepo}
}

func (h *ProjectTaskHandler) Create(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	task := &model.ProjectTask{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, projectTaskResponse(task))
}

func (h *ProjectTaskHandler) GetByProject(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	tasks, err := h.taskRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = projectTaskResponse(&tasks[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProjectTaskHandler) GetByID(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "Invalid task ID format")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, projectTaskResponse(task))
}

// IndependentTaskHandler serves standalone tasks.
type IndependentTaskHandler struct {
	taskRepo IndependentTaskStore
}

func NewIndependentTaskHandler(taskRepo IndependentTaskStore) *IndependentTaskHandler {
	return &IndependentTaskHandler{taskRepo: taskRepo}
}

func (h *IndependentTaskHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task := &model.IndependentTask{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, independentTaskResponse(task))
}

// GetAll lists standalone tasks. ?mine=true narrows to the caller's own.
func (h *IndependentTaskHandler) GetAll(c *gin.Context) {
	var createdBy *uuid.UUID
	if c.Query("mine") == "true" {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		createdBy = &userID
	}

	tasks, err := h.taskRepo.List(c.Request.Context(), createdBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = independentTaskResponse(&tasks[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *IndependentTaskHandler) GetByID(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "Invalid task ID format")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, independentTaskResponse(task))
}
