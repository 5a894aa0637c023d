package models

import (
	"encoding/json"
	"time"
)

// Entity type constants for activity subjects
const (
	EntityTypeClient = "client"
)

// Activity type constants
const (
	ActivityNoteAdded                 = "NOTE_ADDED"
	ActivityNoteEdited                = "NOTE_EDITED"
	ActivityNoteDeleted               = "NOTE_DELETED"
	ActivityStageChanged              = "STAGE_CHANGED"
	ActivityAssigned                  = "ASSIGNED"
	ActivityProfilePictureUploaded    = "PROFILE_PICTURE_UPLOADED"
	ActivityPassportUpdated           = "PASSPORT_UPDATED"
	ActivityProficiencyAdded          = "PROFICIENCY_ADDED"
	ActivityQualificationAdded        = "QUALIFICATION_ADDED"
	ActivityVisaApplicationCreated    = "VISA_APPLICATION_CREATED"
	ActivityCollegeApplicationCreated = "COLLEGE_APPLICATION_CREATED"
	ActivityTaskCreated               = "TASK_CREATED"
	ActivityTaskCompleted             = "TASK_COMPLETED"
)

// Activity is an immutable audit-log entry describing one action taken on
// an entity. Activities are only ever appended; a NOTE_DELETED activity is
// itself a new record, not a removal of the original.
type Activity struct {
	// Auto-increment primary key so ids are monotonically increasing.
	// Pagination relies on (created_at, id) as a strictly descending key.
	ID        uint64    `gorm:"primarykey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;index:idx_activity_entity_time,priority:3" json:"created_at"`

	EntityType string `gorm:"size:50;not null;index:idx_activity_entity_time,priority:1" json:"entity_type"`
	EntityID   string `gorm:"type:uuid;not null;index:idx_activity_entity_time,priority:2" json:"entity_id"`

	ActivityType string `gorm:"size:50;not null;index" json:"activity_type"`
	Description  string `gorm:"type:text" json:"description"`

	PerformedByID string `gorm:"type:uuid;index" json:"performed_by_id"`
	PerformedBy   *User  `gorm:"foreignKey:PerformedByID" json:"performed_by,omitempty"`

	// Metadata holds the JSON-encoded payload for the activity type.
	// Use SetMeta/DecodeMeta rather than touching this field directly.
	Metadata string `gorm:"type:text" json:"-"`
}

// TableName specifies the table name for Activity model
func (Activity) TableName() string {
	return "activities"
}

// Typed metadata payloads, one shape per activity type. Unknown activity
// types degrade to GenericMeta.

// StageChangedMeta is the payload for STAGE_CHANGED activities
type StageChangedMeta struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NoteMeta is the payload for NOTE_ADDED / NOTE_EDITED / NOTE_DELETED
// activities. ReminderDate and ReminderTime are set only when a reminder
// was created alongside the note.
type NoteMeta struct {
	NoteID       string `json:"note_id"`
	ReminderDate string `json:"reminder_date,omitempty"`
	ReminderTime string `json:"reminder_time,omitempty"`
}

// AssignedMeta is the payload for ASSIGNED activities
type AssignedMeta struct {
	AssignedToID   string `json:"assigned_to_id"`
	AssignedToName string `json:"assigned_to_name,omitempty"`
}

// TaskMeta is the payload for TASK_CREATED / TASK_COMPLETED activities
type TaskMeta struct {
	TaskID string `json:"task_id"`
}

// ApplicationMeta is the payload for VISA_APPLICATION_CREATED /
// COLLEGE_APPLICATION_CREATED activities
type ApplicationMeta struct {
	VisaApplicationID string `json:"visa_application_id,omitempty"`
	ApplicationID     string `json:"application_id,omitempty"`
}

// DocumentMeta is the payload for PROFILE_PICTURE_UPLOADED activities
type DocumentMeta struct {
	StorageKey string `json:"storage_key,omitempty"`
	FileName   string `json:"file_name,omitempty"`
}

// PassportMeta is the payload for PASSPORT_UPDATED activities
type PassportMeta struct {
	Country string `json:"country,omitempty"`
}

// RecordMeta is the payload for PROFICIENCY_ADDED / QUALIFICATION_ADDED
type RecordMeta struct {
	RecordID string `json:"record_id"`
	Summary  string `json:"summary,omitempty"`
}

// GenericMeta is the fallback payload for unknown activity types
type GenericMeta map[string]interface{}

// SetMeta serializes a payload into the activity's metadata column
func (a *Activity) SetMeta(payload interface{}) error {
	if payload == nil {
		a.Metadata = ""
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	a.Metadata = string(raw)
	return nil
}

// DecodeMeta decodes the metadata column into the typed payload for the
// activity's type. Unknown types decode into GenericMeta.
func (a *Activity) DecodeMeta() (interface{}, error) {
	if a.Metadata == "" {
		return nil, nil
	}

	var target interface{}
	switch a.ActivityType {
	case ActivityStageChanged:
		target = &StageChangedMeta{}
	case ActivityNoteAdded, ActivityNoteEdited, ActivityNoteDeleted:
		target = &NoteMeta{}
	case ActivityAssigned:
		target = &AssignedMeta{}
	case ActivityTaskCreated, ActivityTaskCompleted:
		target = &TaskMeta{}
	case ActivityVisaApplicationCreated, ActivityCollegeApplicationCreated:
		target = &ApplicationMeta{}
	case ActivityProfilePictureUploaded:
		target = &DocumentMeta{}
	case ActivityPassportUpdated:
		target = &PassportMeta{}
	case ActivityProficiencyAdded, ActivityQualificationAdded:
		target = &RecordMeta{}
	default:
		target = &GenericMeta{}
	}

	if err := json.Unmarshal([]byte(a.Metadata), target); err != nil {
		return nil, err
	}
	return target, nil
}

// ActivityDescriptor holds the display attributes for one activity type
type ActivityDescriptor struct {
	Label string
	Icon  string
	Color string
}

// activityDescriptors is the exhaustive display lookup table. New activity
// types must be registered here.
var activityDescriptors = map[string]ActivityDescriptor{
	ActivityNoteAdded:                 {Label: "Note added", Icon: "note", Color: "blue"},
	ActivityNoteEdited:                {Label: "Note edited", Icon: "note", Color: "blue"},
	ActivityNoteDeleted:               {Label: "Note deleted", Icon: "note", Color: "red"},
	ActivityStageChanged:              {Label: "Stage changed", Icon: "flag", Color: "purple"},
	ActivityAssigned:                  {Label: "Assigned", Icon: "user", Color: "teal"},
	ActivityProfilePictureUploaded:    {Label: "Profile picture uploaded", Icon: "image", Color: "gray"},
	ActivityPassportUpdated:           {Label: "Passport updated", Icon: "passport", Color: "indigo"},
	ActivityProficiencyAdded:          {Label: "Proficiency added", Icon: "language", Color: "green"},
	ActivityQualificationAdded:        {Label: "Qualification added", Icon: "school", Color: "green"},
	ActivityVisaApplicationCreated:    {Label: "Visa application created", Icon: "plane", Color: "orange"},
	ActivityCollegeApplicationCreated: {Label: "College application created", Icon: "school", Color: "orange"},
	ActivityTaskCreated:               {Label: "Task created", Icon: "check-empty", Color: "yellow"},
	ActivityTaskCompleted:             {Label: "Task completed", Icon: "check", Color: "green"},
}

// DescriptorFor returns the display descriptor for an activity type.
// Unknown types get a generic descriptor so forward-compatible records
// still render.
func DescriptorFor(activityType string) ActivityDescriptor {
	if d, ok := activityDescriptors[activityType]; ok {
		return d
	}
	return ActivityDescriptor{Label: "Activity", Icon: "dot", Color: "gray"}
}

// IsValidActivityType checks if the activity type is one of the known types
func IsValidActivityType(activityType string) bool {
	_, ok := activityDescriptors[activityType]
	return ok
}
