package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client lifecycle stage constants
const (
	StageLead     = "LEAD"
	StageFollowUp = "FOLLOW_UP"
	StageClient   = "CLIENT"
	StageClose    = "CLOSE"
)

// stageOrder is the single forward edge per non-terminal stage.
// CLOSE has no forward edge; reopening from CLOSE is handled by the
// transition service.
var stageOrder = map[string]string{
	StageLead:     StageFollowUp,
	StageFollowUp: StageClient,
	StageClient:   StageClose,
}

// stageLabels provides display labels per stage
var stageLabels = map[string]string{
	StageLead:     "Lead",
	StageFollowUp: "Follow-Up",
	StageClient:   "Client",
	StageClose:    "Close",
}

// stageColors provides UI color tags per stage
var stageColors = map[string]string{
	StageLead:     "blue",
	StageFollowUp: "orange",
	StageClient:   "green",
	StageClose:    "gray",
}

// legacyStageCodes maps the two-letter encoding used by older imports
// to the canonical stage identifiers
var legacyStageCodes = map[string]string{
	"LE": StageLead,
	"FU": StageFollowUp,
	"CT": StageClient,
	"CL": StageClose,
}

// Client represents a prospect or customer moving through the sales pipeline
type Client struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name  string  `gorm:"not null" json:"name"`
	Email string  `gorm:"index" json:"email"`
	Phone *string `json:"phone,omitempty"`

	// Lifecycle
	Stage          string     `gorm:"not null;default:LEAD;index" json:"stage"`
	StageChangedAt *time.Time `json:"stage_changed_at,omitempty"`
	StageChangedBy *string    `gorm:"type:uuid" json:"stage_changed_by,omitempty"`

	// Assignment (weak reference - lookup only)
	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	// Profile
	ProfilePictureKey *string `json:"profile_picture_key,omitempty"`

	// Passport details
	PassportNumber  *string    `gorm:"size:50" json:"passport_number,omitempty"`
	PassportCountry *string    `gorm:"size:100" json:"passport_country,omitempty"`
	PassportExpiry  *time.Time `json:"passport_expiry,omitempty"`
}

// BeforeCreate hook to generate UUID and set default stage
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Stage == "" {
		c.Stage = StageLead
	}
	return nil
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}

// NextStage returns the single legal forward stage for the given stage.
// The second return value is false for CLOSE (no forward edge) and for
// unknown stages.
func NextStage(stage string) (string, bool) {
	next, ok := stageOrder[stage]
	return next, ok
}

// IsValidStage checks if the stage identifier is one of the four stages
func IsValidStage(stage string) bool {
	switch stage {
	case StageLead, StageFollowUp, StageClient, StageClose:
		return true
	}
	return false
}

// ParseStage normalizes a stage value to the canonical encoding.
// It accepts both the canonical identifiers and the legacy two-letter
// codes (LE/FU/CT/CL). Returns false for anything else.
func ParseStage(value string) (string, bool) {
	if IsValidStage(value) {
		return value, true
	}
	if canonical, ok := legacyStageCodes[value]; ok {
		return canonical, true
	}
	return "", false
}

// StageLabel returns the human-readable label for a stage
func StageLabel(stage string) string {
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	return stage
}

// StageColor returns the UI color tag for a stage
func StageColor(stage string) string {
	if color, ok := stageColors[stage]; ok {
		return color
	}
	return "gray"
}

// AllStages returns the four stages in pipeline order
func AllStages() []string {
	return []string{StageLead, StageFollowUp, StageClient, StageClose}
}

// IsClosed checks if the client is at the terminal stage
func (c *Client) IsClosed() bool {
	return c.Stage == StageClose
}
