package handlers

import (
	"errors"
	"net/http"
	"visa_flow_app_go/db"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/models"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// CreateNoteRequest is the payload for posting a comment, optionally
// promoting it to a reminder
type CreateNoteRequest struct {
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
	Content       string `json:"content"`
	WantsReminder bool   `json:"wants_reminder"`
	ReminderDate  string `json:"reminder_date"`
	ReminderTime  string `json:"reminder_time"`
}

// UpdateNoteRequest is the payload for editing a note
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// CreateNoteHandler runs the comment workflow. The note is created first;
// a requested reminder that fails leaves the note in place and reports the
// partial outcome so the client can clear the form but offer a retry.
func CreateNoteHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	req := new(CreateNoteRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if req.EntityType == "" {
		req.EntityType = models.EntityTypeClient
	}
	if req.EntityID == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"entity_id": {"This field is required."},
		})
	}

	result, err := services.PostComment(db.DB, services.CommentRequest{
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		Content:       req.Content,
		WantsReminder: req.WantsReminder,
		ReminderDate:  req.ReminderDate,
		ReminderTime:  req.ReminderTime,
		ActorID:       currentUser.ID,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyContent) {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"content": {"This field may not be blank."},
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create note",
		})
	}

	response := map[string]interface{}{
		"note": result.Note,
	}
	if result.Reminder != nil {
		response["reminder"] = result.Reminder
	}
	if result.PartialSuccess() {
		// The note persisted; only the reminder step failed
		response["reminder_error"] = result.ReminderErr.Error()
	}

	return c.JSON(http.StatusCreated, response)
}

// UpdateNoteHandler edits a note's content
func UpdateNoteHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	req := new(UpdateNoteRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	note, err := services.UpdateNote(db.DB, c.Param("id"), req.Content, currentUser.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoteNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Note not found",
			})
		case errors.Is(err, services.ErrEmptyContent):
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"content": {"This field may not be blank."},
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to update note",
			})
		}
	}

	return c.JSON(http.StatusOK, note)
}

// DeleteNoteHandler soft-deletes a note. The note's earlier timeline
// entries stay in the audit trail.
func DeleteNoteHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	if err := services.DeleteNote(db.DB, c.Param("id"), currentUser.ID); err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Note not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete note",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// GetNotesHandler lists the live notes for an entity
func GetNotesHandler(c echo.Context) error {
	entityType := c.QueryParam("entity_type")
	if entityType == "" {
		entityType = models.EntityTypeClient
	}
	entityID := c.QueryParam("entity_id")
	if entityID == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"entity_id": {"This field is required."},
		})
	}

	notes, err := services.GetNotesByEntity(db.DB, entityType, entityID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch notes",
		})
	}
	return c.JSON(http.StatusOK, notes)
}
