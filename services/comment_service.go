package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"visa_flow_app_go/models"

	"gorm.io/gorm"
)

// Comment flow errors
var (
	ErrNoteCreation         = errors.New("failed to create note")
	ErrReminderDateRequired = errors.New("reminder date is required")
)

// CommentRequest describes one "post a comment, optionally promote to a
// reminder" action
type CommentRequest struct {
	EntityType    string
	EntityID      string
	Content       string
	WantsReminder bool
	ReminderDate  string // YYYY-MM-DD, required when WantsReminder
	ReminderTime  string // HH:MM, optional
	ActorID       string
}

// CommentResult reports the outcome of a comment action. Note is always
// set on any success path. ReminderErr is set when the note was persisted
// but the reminder step failed - partial success is a first-class outcome,
// not a rollback.
type CommentResult struct {
	Note        *models.Note
	Reminder    *models.Reminder
	ReminderErr error
}

// PartialSuccess reports whether the note persisted but the reminder did not
func (r *CommentResult) PartialSuccess() bool {
	return r.Note != nil && r.ReminderErr != nil
}

// PostComment runs the two-step comment workflow: the note is durably
// created first; only then is the reminder attempted. A reminder is never
// created without its note. A failed reminder does not roll the note back.
func PostComment(db *gorm.DB, req CommentRequest) (*CommentResult, error) {
	content := SanitizeNoteContent(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	// Step 1: durable note write (plus its NOTE_ADDED activity)
	reminderDate, reminderTime := "", ""
	if req.WantsReminder && req.ReminderDate != "" {
		reminderDate = req.ReminderDate
		reminderTime = req.ReminderTime
	}
	note, err := CreateNote(db, req.EntityType, req.EntityID, content, req.ActorID, reminderDate, reminderTime)
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNoteCreation, err)
	}

	result := &CommentResult{Note: note}
	if !req.WantsReminder {
		return result, nil
	}

	// Step 2: reminder, scoped so its failure only taints this step
	reminder, err := createReminderForNote(db, req, content)
	if err != nil {
		result.ReminderErr = err
		return result, nil
	}
	result.Reminder = reminder
	return result, nil
}

// createReminderForNote builds the reminder that accompanies a comment
func createReminderForNote(db *gorm.DB, req CommentRequest, content string) (*models.Reminder, error) {
	if req.ReminderDate == "" {
		return nil, ErrReminderDateRequired
	}
	date, err := ParseDate(req.ReminderDate)
	if err != nil {
		return nil, err
	}
	if req.ReminderTime != "" {
		if err := ParseClockTime(req.ReminderTime); err != nil {
			return nil, err
		}
	}

	metaInfo, err := json.Marshal(map[string]string{"note_content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode reminder meta info: %w", err)
	}

	reminder := &models.Reminder{
		Title:        models.TruncateReminderTitle(content),
		ReminderDate: date,
		ContentType:  req.EntityType,
		ObjectID:     req.EntityID,
		MetaInfo:     string(metaInfo),
		CreatedByID:  req.ActorID,
		AssignedToID: &req.ActorID,
	}
	if req.ReminderTime != "" {
		t := req.ReminderTime
		reminder.ReminderTime = &t
	}

	if err := db.Create(reminder).Error; err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// CreateReminder persists a standalone reminder (not tied to a comment)
func CreateReminder(db *gorm.DB, reminder *models.Reminder) (*models.Reminder, error) {
	if reminder.ReminderDate.IsZero() {
		return nil, ErrReminderDateRequired
	}
	if reminder.Title == "" {
		return nil, fmt.Errorf("reminder title is required")
	}
	reminder.Title = models.TruncateReminderTitle(reminder.Title)
	if err := db.Create(reminder).Error; err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// GetRemindersByObject lists reminders for one subject entity, soonest first
func GetRemindersByObject(db *gorm.DB, contentType, objectID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := db.Where("content_type = ? AND object_id = ?", contentType, objectID).
		Order("reminder_date ASC").
		Find(&reminders).Error
	return reminders, err
}
