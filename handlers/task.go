package handlers

import (
	"errors"
	"net/http"
	"time"
	"visa_flow_app_go/db"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// CreateTaskRequest is the payload for creating a client task
type CreateTaskRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"` // YYYY-MM-DD, optional
}

// CreateTaskHandler creates a task on a client
func CreateTaskHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)
	clientID := c.Param("id")

	req := new(CreateTaskRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"title": {"This field is required."},
		})
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := services.ParseDate(req.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"due_date": {"Invalid date format (expected YYYY-MM-DD)."},
			})
		}
		dueDate = &parsed
	}

	task, err := services.CreateTask(db.DB, clientID, req.Title, dueDate, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Client not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create task",
		})
	}

	return c.JSON(http.StatusCreated, task)
}

// CompleteTaskHandler marks a task as completed
func CompleteTaskHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	task, err := services.CompleteTask(db.DB, c.Param("id"), currentUser.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Task not found",
			})
		case errors.Is(err, services.ErrTaskAlreadyCompleted):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Task already completed",
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to complete task",
			})
		}
	}

	return c.JSON(http.StatusOK, task)
}

// GetTasksHandler lists a client's tasks
func GetTasksHandler(c echo.Context) error {
	tasks, err := services.GetTasksByClient(db.DB, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch tasks",
		})
	}
	return c.JSON(http.StatusOK, tasks)
}
