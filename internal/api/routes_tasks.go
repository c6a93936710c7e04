package api

import (
	"github.com/gin-gonic/gin"

	"github.com/innut/innut/internal/handlers"
)

func registerTaskRoutes(api *gin.RouterGroup, handler *handlers.TaskHandler) {
	projects := api.Group("/projects")
	{
		projects.GET("", handler.ListProjects)
		projects.POST("", handler.CreateProject)
		projects.POST("/:id/tasks", handler.CreateTask)
	}

	tasks := api.Group("/tasks")
	{
		tasks.PATCH("/:id/status", handler.UpdateStatus)
		tasks.POST("/:id/comments", handler.AddComment)
	}
}
