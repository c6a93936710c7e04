package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/innut/innut/internal/models"
	apperrors "github.com/innut/innut/pkg/errors"
	"github.com/innut/innut/pkg/logger"
)

// Notification types raised by task activity.
const (
	NotificationTaskAssigned      = "task.assigned"
	NotificationTaskStatusChanged = "task.status_changed"
	NotificationTaskCommented     = "task.commented"
)

// Notifier persists and pushes a notification.
type Notifier interface {
	Notify(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error)
}

// CreateProjectInput captures project attributes.
type CreateProjectInput struct {
	Name        string
	Description string
}

// CreateTaskInput captures task attributes.
type CreateTaskInput struct {
	Title      string
	AssigneeID string
}

// TaskService manages tenant-scoped projects and tasks and raises
// notifications for the people involved. Notification failures never fail
// the task operation.
type TaskService struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

// NewTaskService constructs a TaskService. notifier may be nil.
func NewTaskService(db *gorm.DB, notifier Notifier) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("task service: db is required")
	}
	return &TaskService{db: db, notifier: notifier, log: logger.WithModule("tasks")}, nil
}

// CreateProject adds a project to the actor's organization.
func (s *TaskService) CreateProject(ctx context.Context, actor Actor, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)
	if err := s.enterTenant(ctx, actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	project := models.Project{
		OrganizationID: actor.OrganizationID,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		CreatedByID:    actor.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, persistenceError("task service: create project", err)
	}
	return &project, nil
}

// ListProjects returns the actor organization's projects, newest first.
func (s *TaskService) ListProjects(ctx context.Context, actor Actor) ([]models.Project, error) {
	ctx = ensureContext(ctx)
	if err := s.enterTenant(ctx, actor); err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0)
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", actor.OrganizationID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, persistenceError("task service: list projects", err)
	}
	return projects, nil
}

// CreateTask adds a task to a project and notifies the assignee.
func (s *TaskService) CreateTask(ctx context.Context, actor Actor, projectID string, input CreateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)
	project, err := s.loadProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}

	assigneeID := strings.TrimSpace(input.AssigneeID)
	if err := s.requireMember(ctx, actor.OrganizationID, assigneeID); err != nil {
		return nil, err
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       title,
		Status:      models.TaskStatusTodo,
		AssigneeID:  assigneeID,
		CreatedByID: actor.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, persistenceError("task service: create task", err)
	}

	s.notify(ctx, actor, []string{task.AssigneeID}, CreateNotificationInput{
		Type:      NotificationTaskAssigned,
		Title:     "New task assigned",
		Message:   fmt.Sprintf("You were assigned %q in %s", task.Title, project.Name),
		ActionURL: taskURL(task),
		Metadata:  map[string]any{"project_id": project.ID, "task_id": task.ID},
	})
	return &task, nil
}

// UpdateTaskStatus moves a task through its workflow and notifies the
// assignee and creator.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, actor Actor, taskID, status string) (*models.Task, error) {
	ctx = ensureContext(ctx)
	status = strings.TrimSpace(status)
	if !validTaskStatus(status) {
		return nil, apperrors.NewBadRequest("status must be one of todo, in_progress, done")
	}

	task, err := s.loadTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == status {
		return task, nil
	}

	previous := task.Status
	if err := s.db.WithContext(ctx).Model(task).Update("status", status).Error; err != nil {
		return nil, persistenceError("task service: update status", err)
	}
	task.Status = status

	s.notify(ctx, actor, []string{task.AssigneeID, task.CreatedByID}, CreateNotificationInput{
		Type:      NotificationTaskStatusChanged,
		Title:     "Task status changed",
		Message:   fmt.Sprintf("%q moved from %s to %s", task.Title, previous, status),
		ActionURL: taskURL(*task),
		Metadata:  map[string]any{"task_id": task.ID, "from": previous, "to": status},
	})
	return task, nil
}

// AddComment records a comment and notifies the assignee and creator.
func (s *TaskService) AddComment(ctx context.Context, actor Actor, taskID, body string) (*models.TaskComment, error) {
	ctx = ensureContext(ctx)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewBadRequest("body is required")
	}

	task, err := s.loadTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	comment := models.TaskComment{
		TaskID:   task.ID,
		AuthorID: actor.UserID,
		Body:     body,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, persistenceError("task service: add comment", err)
	}

	s.notify(ctx, actor, []string{task.AssigneeID, task.CreatedByID}, CreateNotificationInput{
		Type:      NotificationTaskCommented,
		Title:     "New comment",
		Message:   fmt.Sprintf("New comment on %q", task.Title),
		ActionURL: taskURL(*task),
		Metadata:  map[string]any{"task_id": task.ID, "comment_id": comment.ID},
	})
	return &comment, nil
}

func (s *TaskService) loadProject(ctx context.Context, actor Actor, projectID string) (*models.Project, error) {
	if err := s.enterTenant(ctx, actor); err != nil {
		return nil, err
	}
	var project models.Project
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", strings.TrimSpace(projectID), actor.OrganizationID).
		Take(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, persistenceError("task service: load project", err)
	}
	return &project, nil
}

func (s *TaskService) loadTask(ctx context.Context, actor Actor, taskID string) (*models.Task, error) {
	if err := s.enterTenant(ctx, actor); err != nil {
		return nil, err
	}
	var task models.Task
	err := s.db.WithContext(ctx).
		Select("tasks.*").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.id = ? AND projects.organization_id = ?", strings.TrimSpace(taskID), actor.OrganizationID).
		Take(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, persistenceError("task service: load task", err)
	}
	return &task, nil
}

// enterTenant checks the actor belongs to an organization and records the
// membership so the actor can later be assigned work there.
func (s *TaskService) enterTenant(ctx context.Context, actor Actor) error {
	if err := requireTenant(actor); err != nil {
		return err
	}
	member := models.OrganizationMember{
		OrganizationID: actor.OrganizationID,
		UserID:         actor.UserID,
		Role:           actor.Role,
		LastSeenAt:     time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "last_seen_at"}),
	}).Create(&member).Error
	if err != nil {
		return persistenceError("task service: record member", err)
	}
	return nil
}

// requireMember rejects assignees that were never seen in organizationID.
// An empty assignee leaves the task unassigned.
func (s *TaskService) requireMember(ctx context.Context, organizationID, userID string) error {
	if userID == "" {
		return nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Count(&count).Error
	if err != nil {
		return persistenceError("task service: check member", err)
	}
	if count == 0 {
		return apperrors.NewBadRequest("assignee is not a member of this organization")
	}
	return nil
}

// notify sends template to each distinct recipient other than the actor.
func (s *TaskService) notify(ctx context.Context, actor Actor, recipients []string, template CreateNotificationInput) {
	if s.notifier == nil {
		return
	}
	for _, userID := range normaliseIDs(recipients) {
		if userID == actor.UserID {
			continue
		}
		input := template
		input.UserID = userID
		if _, err := s.notifier.Notify(ctx, input); err != nil {
			s.log.Warn("notification failed",
				zap.String("type", input.Type),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

func requireTenant(actor Actor) error {
	if actor.UserID == "" {
		return apperrors.ErrUnauthorized
	}
	if actor.OrganizationID == "" {
		return apperrors.ErrForbidden.WithMessage("an organization is required")
	}
	return nil
}

func validTaskStatus(status string) bool {
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
		return true
	default:
		return false
	}
}

func taskURL(task models.Task) string {
	return fmt.Sprintf("/projects/%s/tasks/%s", task.ProjectID, task.ID)
}
