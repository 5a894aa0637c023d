package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"visa_flow_app_go/db"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/models"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// CreateReminderRequest is the payload for creating a standalone reminder
type CreateReminderRequest struct {
	Title        string            `json:"title"`
	ReminderDate string            `json:"reminder_date"`
	ReminderTime string            `json:"reminder_time"`
	ContentType  string            `json:"content_type"`
	ObjectID     string            `json:"object_id"`
	MetaInfo     map[string]string `json:"meta_info"`
}

// CreateReminderHandler creates a reminder not tied to a comment
func CreateReminderHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	req := new(CreateReminderRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	fieldErrors := map[string][]string{}
	if req.Title == "" {
		fieldErrors["title"] = []string{"This field is required."}
	}
	if req.ReminderDate == "" {
		fieldErrors["reminder_date"] = []string{"This field is required."}
	}
	if req.ContentType == "" {
		fieldErrors["content_type"] = []string{"This field is required."}
	}
	if req.ObjectID == "" {
		fieldErrors["object_id"] = []string{"This field is required."}
	}
	if len(fieldErrors) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrors)
	}

	date, err := services.ParseDate(req.ReminderDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"reminder_date": {"Invalid date format (expected YYYY-MM-DD)."},
		})
	}
	if req.ReminderTime != "" {
		if err := services.ParseClockTime(req.ReminderTime); err != nil {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"reminder_time": {"Invalid time format (expected HH:MM)."},
			})
		}
	}

	reminder := &models.Reminder{
		Title:        req.Title,
		ReminderDate: date,
		ContentType:  req.ContentType,
		ObjectID:     req.ObjectID,
		CreatedByID:  currentUser.ID,
		AssignedToID: &currentUser.ID,
	}
	if req.ReminderTime != "" {
		t := req.ReminderTime
		reminder.ReminderTime = &t
	}
	if len(req.MetaInfo) > 0 {
		raw, err := encodeMetaInfo(req.MetaInfo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"meta_info": {"Invalid meta info."},
			})
		}
		reminder.MetaInfo = raw
	}

	reminder, err = services.CreateReminder(db.DB, reminder)
	if err != nil {
		if errors.Is(err, services.ErrReminderDateRequired) {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"reminder_date": {"This field is required."},
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create reminder",
		})
	}

	return c.JSON(http.StatusCreated, reminder)
}

func encodeMetaInfo(meta map[string]string) (string, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// GetRemindersHandler lists reminders for a subject entity
func GetRemindersHandler(c echo.Context) error {
	contentType := c.QueryParam("content_type")
	if contentType == "" {
		contentType = models.EntityTypeClient
	}
	objectID := c.QueryParam("object_id")
	if objectID == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"object_id": {"This field is required."},
		})
	}

	reminders, err := services.GetRemindersByObject(db.DB, contentType, objectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch reminders",
		})
	}
	return c.JSON(http.StatusOK, reminders)
}
