package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderTitleMaxLength is the maximum length of a reminder title.
// Titles derived from note content are truncated to this length.
const ReminderTitleMaxLength = 255

// Reminder is a scheduled follow-up, optionally created alongside a note.
// It references its subject polymorphically through ContentType+ObjectID.
type Reminder struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title        string    `gorm:"size:255;not null" json:"title"`
	ReminderDate time.Time `gorm:"not null;index" json:"reminder_date"`
	ReminderTime *string   `gorm:"size:10" json:"reminder_time,omitempty"` // HH:MM, optional

	// Polymorphic subject reference
	ContentType string `gorm:"size:50;not null;index:idx_reminder_object" json:"content_type"`
	ObjectID    string `gorm:"type:uuid;not null;index:idx_reminder_object" json:"object_id"`

	// MetaInfo holds free-form JSON; carries the originating note content
	// under "note_content" when created through the comment flow.
	MetaInfo string `gorm:"type:text" json:"meta_info,omitempty"`

	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	CreatedByID string `gorm:"type:uuid;not null" json:"created_by_id"`

	// SentAt is set by the reminder email job once a notification went out
	SentAt *time.Time `gorm:"index" json:"sent_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Reminder model
func (Reminder) TableName() string {
	return "reminders"
}

// TruncateReminderTitle shortens note content to a valid reminder title.
// Counts runes so multi-byte content is never split mid-character.
func TruncateReminderTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= ReminderTitleMaxLength {
		return content
	}
	return string(runes[:ReminderTitleMaxLength])
}
