package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"visa_flow_app_go/models"

	"gorm.io/gorm"
)

// DefaultActivityPageSize is used when a caller passes a non-positive page size
const DefaultActivityPageSize = 20

// ErrBadCursor is returned when a pagination token cannot be decoded
var ErrBadCursor = errors.New("invalid pagination cursor")

// activityCursor anchors a page to the last row of the previous page.
// Keyset pagination on (created_at, id) keeps issued cursors stable when
// newer activities are appended concurrently. The view fingerprint binds
// the anchor to the filter it was issued under so a cursor can never
// resume a scroll through a different filter.
type activityCursor struct {
	T  int64  `json:"t"`  // created_at, unix nanoseconds
	ID uint64 `json:"id"` // activity id, descending tiebreak
	V  string `json:"v"`  // view fingerprint
}

// activityView fingerprints the (entity, filter) view a cursor belongs to
func activityView(entityType, entityID, activityType string) string {
	return entityType + "/" + entityID + "/" + activityType
}

// EncodeCursor serializes an anchor into an opaque token bound to its view
func EncodeCursor(createdAt time.Time, id uint64, view string) string {
	raw, _ := json.Marshal(activityCursor{T: createdAt.UnixNano(), ID: id, V: view})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque token back into its anchor and view
func DecodeCursor(token string) (time.Time, uint64, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, "", ErrBadCursor
	}
	var cur activityCursor
	if err := json.Unmarshal(raw, &cur); err != nil {
		return time.Time{}, 0, "", ErrBadCursor
	}
	return time.Unix(0, cur.T), cur.ID, cur.V, nil
}

// RecordActivity appends an activity to the log. The id is assigned by the
// database; CreatedAt is filled if unset. Content is not validated here -
// attributing and describing the action is the caller's job.
func RecordActivity(db *gorm.DB, activity *models.Activity) (*models.Activity, error) {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	if err := db.Create(activity).Error; err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return activity, nil
}

// QueryActivities returns one page of activities for an entity in
// descending created_at order (ties broken by descending id).
// activityType restricts to a single type when non-empty. cursor resumes
// from a previously returned token; an empty cursor starts at the head.
// The returned next cursor is empty when no further page exists.
func QueryActivities(db *gorm.DB, entityType, entityID, activityType, cursor string, pageSize int) ([]models.Activity, string, error) {
	if pageSize <= 0 {
		pageSize = DefaultActivityPageSize
	}

	view := activityView(entityType, entityID, activityType)

	query := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	if activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}

	if cursor != "" {
		anchorAt, anchorID, cursorView, err := DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		// A cursor issued under a different filter cannot resume this
		// scroll; pagination restarts from the head instead.
		if cursorView == view {
			// Strictly after the anchor in descending (created_at, id) order
			query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", anchorAt, anchorAt, anchorID)
		}
	}

	// Fetch one extra row to detect whether another page exists
	var activities []models.Activity
	err := query.Preload("PerformedBy").
		Order("created_at DESC, id DESC").
		Limit(pageSize + 1).
		Find(&activities).Error
	if err != nil {
		return nil, "", fmt.Errorf("failed to query activities: %w", err)
	}

	nextCursor := ""
	if len(activities) > pageSize {
		activities = activities[:pageSize]
		last := activities[len(activities)-1]
		nextCursor = EncodeCursor(last.CreatedAt, last.ID, view)
	}

	return activities, nextCursor, nil
}

// CountActivities returns the total number of activities for an entity,
// optionally restricted to one type
func CountActivities(db *gorm.DB, entityType, entityID, activityType string) (int64, error) {
	var count int64
	query := db.Model(&models.Activity{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	if activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}
	err := query.Count(&count).Error
	return count, err
}
