package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"visa_flow_app_go/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Note errors
var (
	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyContent = errors.New("note content cannot be empty")
)

// noteSanitizer strips all HTML from note content before it is persisted
var noteSanitizer = bluemonday.StrictPolicy()

// SanitizeNoteContent trims and strips markup from user-supplied content
func SanitizeNoteContent(content string) string {
	return strings.TrimSpace(noteSanitizer.Sanitize(content))
}

// CreateNote persists a note and its NOTE_ADDED activity in one
// transaction. reminderDate/reminderTime, when set, are carried into the
// activity metadata so the timeline can show the scheduled follow-up.
func CreateNote(db *gorm.DB, entityType, entityID, content, actorID string, reminderDate, reminderTime string) (*models.Note, error) {
	content = SanitizeNoteContent(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	note := &models.Note{
		EntityType: entityType,
		EntityID:   entityID,
		Content:    content,
		AuthorID:   actorID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(note).Error; err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		activity := &models.Activity{
			EntityType:    entityType,
			EntityID:      entityID,
			ActivityType:  models.ActivityNoteAdded,
			Description:   noteSummary("Note added", content),
			PerformedByID: actorID,
		}
		meta := models.NoteMeta{NoteID: note.ID, ReminderDate: reminderDate, ReminderTime: reminderTime}
		if err := activity.SetMeta(meta); err != nil {
			return fmt.Errorf("failed to encode note metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// UpdateNote edits a note's content and appends a NOTE_EDITED activity.
// Past activities referencing the note are left untouched.
func UpdateNote(db *gorm.DB, noteID, content, actorID string) (*models.Note, error) {
	content = SanitizeNoteContent(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var note models.Note
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&note, "id = ?", noteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoteNotFound
			}
			return fmt.Errorf("failed to fetch note: %w", err)
		}

		now := time.Now().UTC()
		if err := tx.Model(&note).Updates(map[string]interface{}{
			"content":    content,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		note.Content = content
		note.UpdatedAt = now

		activity := &models.Activity{
			EntityType:    note.EntityType,
			EntityID:      note.EntityID,
			ActivityType:  models.ActivityNoteEdited,
			Description:   noteSummary("Note edited", content),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.NoteMeta{NoteID: note.ID}); err != nil {
			return fmt.Errorf("failed to encode note metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &note, nil
}

// DeleteNote soft-deletes a note and appends a NOTE_DELETED activity.
// The note's earlier NOTE_ADDED/NOTE_EDITED entries remain in the log.
func DeleteNote(db *gorm.DB, noteID, actorID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var note models.Note
		if err := tx.First(&note, "id = ?", noteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoteNotFound
			}
			return fmt.Errorf("failed to fetch note: %w", err)
		}

		if err := tx.Delete(&note).Error; err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}

		activity := &models.Activity{
			EntityType:    note.EntityType,
			EntityID:      note.EntityID,
			ActivityType:  models.ActivityNoteDeleted,
			Description:   noteSummary("Note deleted", note.Content),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.NoteMeta{NoteID: note.ID}); err != nil {
			return fmt.Errorf("failed to encode note metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
}

// GetNotesByEntity lists the live notes for an entity, newest first
func GetNotesByEntity(db *gorm.DB, entityType, entityID string) ([]models.Note, error) {
	var notes []models.Note
	err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Preload("Author").
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

// noteSummary builds a short activity description from note content
func noteSummary(prefix, content string) string {
	const maxLen = 80
	runes := []rune(content)
	if len(runes) > maxLen {
		content = string(runes[:maxLen]) + "..."
	}
	return fmt.Sprintf("%s: %s", prefix, content)
}
