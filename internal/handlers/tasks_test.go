package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/innut/innut/internal/models"
	"github.com/innut/innut/internal/services"
)

func TestTaskHandlerFlowNotifiesAssignee(t *testing.T) {
	env := newHandlerEnv(t)
	manager := env.token("manager", "org-1", "member")
	worker := env.token("worker", "org-1", "member")

	w := env.do(http.MethodPost, "/api/projects", map[string]string{"name": "Tower B"}, manager)
	assertStatus(t, w, http.StatusCreated)
	var project models.Project
	decode(t, w, &project)
	require.NotEmpty(t, project.ID)

	w = env.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", map[string]string{
		"title":       "Pour slab",
		"assignee_id": "worker",
	}, manager)
	assertStatus(t, w, http.StatusBadRequest)
	require.Equal(t, "BAD_REQUEST", errorCode(t, w))

	// The worker becomes assignable once they have used the workspace.
	w = env.do(http.MethodGet, "/api/projects", nil, worker)
	assertStatus(t, w, http.StatusOK)

	w = env.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", map[string]string{
		"title":       "Pour slab",
		"assignee_id": "worker",
	}, manager)
	assertStatus(t, w, http.StatusCreated)
	var task models.Task
	decode(t, w, &task)
	require.Equal(t, models.TaskStatusTodo, task.Status)

	page, err := env.notifications.List(context.Background(), services.Actor{UserID: "worker"}, services.ListNotificationsInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, services.NotificationTaskAssigned, page.Items[0].Type)
	require.Equal(t, "/projects/"+project.ID+"/tasks/"+task.ID, page.Items[0].ActionURL)

	w = env.do(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]string{"status": "in_progress"}, env.token("worker", "org-1", "member"))
	assertStatus(t, w, http.StatusOK)

	w = env.do(http.MethodPost, "/api/tasks/"+task.ID+"/comments", map[string]string{"body": "Formwork ready"}, env.token("worker", "org-1", "member"))
	assertStatus(t, w, http.StatusCreated)

	// The manager hears about the status change and the comment, the worker
	// is never notified about their own actions.
	page, err = env.notifications.List(context.Background(), services.Actor{UserID: "manager"}, services.ListNotificationsInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	page, err = env.notifications.List(context.Background(), services.Actor{UserID: "worker"}, services.ListNotificationsInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestTaskHandlerValidation(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token("manager", "org-1", "member")

	w := env.do(http.MethodPost, "/api/projects", map[string]string{"name": "  "}, token)
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(http.MethodPost, "/api/projects", map[string]string{"name": "Depot"}, token)
	assertStatus(t, w, http.StatusCreated)
	var project models.Project
	decode(t, w, &project)

	w = env.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", map[string]string{"title": "Inspect"}, token)
	assertStatus(t, w, http.StatusCreated)
	var task models.Task
	decode(t, w, &task)

	w = env.do(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]string{"status": "archived"}, token)
	assertStatus(t, w, http.StatusBadRequest)
	require.Contains(t, decode(t, w, nil).Error.Message, "status must be one of")
}

func TestTaskHandlerHidesOtherOrganizations(t *testing.T) {
	env := newHandlerEnv(t)

	w := env.do(http.MethodPost, "/api/projects", map[string]string{"name": "Private"}, env.token("owner", "org-1", "member"))
	assertStatus(t, w, http.StatusCreated)
	var project models.Project
	decode(t, w, &project)

	outsider := env.token("outsider", "org-2", "member")
	w = env.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", map[string]string{"title": "Sneak"}, outsider)
	assertStatus(t, w, http.StatusNotFound)

	w = env.do(http.MethodGet, "/api/projects", nil, outsider)
	assertStatus(t, w, http.StatusOK)
	var projects []models.Project
	decode(t, w, &projects)
	require.Empty(t, projects)
}

func TestTaskHandlerRequiresOrganization(t *testing.T) {
	env := newHandlerEnv(t)
	w := env.do(http.MethodPost, "/api/projects", map[string]string{"name": "Nowhere"}, env.token("drifter", "", "member"))
	assertStatus(t, w, http.StatusForbidden)
}
