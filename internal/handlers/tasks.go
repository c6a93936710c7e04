package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/innut/innut/internal/services"
	"github.com/innut/innut/pkg/errors"
	"github.com/innut/innut/pkg/response"
)

// TaskHandler exposes project and task endpoints.
type TaskHandler struct {
	service *services.TaskService
}

// NewTaskHandler constructs a task handler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

// CreateProject handles POST /api/projects.
func (h *TaskHandler) CreateProject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.service.CreateProject(requestContext(c), actor, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, project)
}

// ListProjects handles GET /api/projects.
func (h *TaskHandler) ListProjects(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	projects, err := h.service.ListProjects(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, projects)
}

type createTaskRequest struct {
	Title      string `json:"title" validate:"required,notblank,max=255"`
	AssigneeID string `json:"assignee_id" validate:"max=64"`
}

// CreateTask handles POST /api/projects/:id/tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.service.CreateTask(requestContext(c), actor, strings.TrimSpace(c.Param("id")), services.CreateTaskInput{
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, task)
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}

// UpdateStatus handles PATCH /api/tasks/:id/status.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateTaskStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.service.UpdateTaskStatus(requestContext(c), actor, strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

type addCommentRequest struct {
	Body string `json:"body" validate:"required,notblank,max=4000"`
}

// AddComment handles POST /api/tasks/:id/comments.
func (h *TaskHandler) AddComment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req addCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.service.AddComment(requestContext(c), actor, strings.TrimSpace(c.Param("id")), req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}
