package services

import (
	"context"
	"errors"
	"sync"
	"visa_flow_app_go/models"

	"gorm.io/gorm"
)

// Timeline fetch errors. Neither is user-visible: handlers drop stale and
// aborted fetches silently.
var (
	ErrStaleRequest = errors.New("timeline fetch superseded by a newer request")
	ErrFetchAborted = errors.New("timeline fetch aborted")
)

// TimelineRequest describes one page fetch for an entity's timeline
type TimelineRequest struct {
	EntityType   string
	EntityID     string
	ActivityType string // empty means all types
	Cursor       string // empty means first page
	PageSize     int
}

// TimelinePage is one ordered page of activities plus pagination state
type TimelinePage struct {
	Activities []models.Activity `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_page,omitempty"`
}

// TimelineEngine orchestrates timeline reads. It tracks the most recently
// issued request per (entity, filter) view so that a slow in-flight fetch
// can never clobber the result of a newer one: callers receive
// ErrStaleRequest for superseded fetches regardless of arrival order.
type TimelineEngine struct {
	mu      sync.Mutex
	tokens  map[string]uint64
	nextSeq uint64
}

// NewTimelineEngine creates a timeline engine
func NewTimelineEngine() *TimelineEngine {
	return &TimelineEngine{tokens: make(map[string]uint64)}
}

// viewKey identifies one (entity, filter) view. Switching the filter
// produces a different key, which resets request tracking and pagination.
// It shares the cursor view fingerprint so issued cursors are bound to
// the same identity.
func viewKey(req TimelineRequest) string {
	return activityView(req.EntityType, req.EntityID, req.ActivityType)
}

// issue stamps a new request token for the view and returns it
func (e *TimelineEngine) issue(key string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextSeq++
	e.tokens[key] = e.nextSeq
	return e.nextSeq
}

// isCurrent reports whether the token is still the latest for its view
func (e *TimelineEngine) isCurrent(key string, token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tokens[key] == token
}

// Forget drops request tracking for an entity, e.g. when the owning view
// unmounts. Subsequent fetches start a fresh token sequence.
func (e *TimelineEngine) Forget(entityType, entityID string) {
	prefix := entityType + "/" + entityID + "/"
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.tokens {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(e.tokens, key)
		}
	}
}

// FetchPage returns one page of the entity's timeline. The returned
// HasMore flag is true iff a next cursor exists. A fetch whose context is
// canceled returns ErrFetchAborted; a fetch that was superseded by a newer
// request for the same view returns ErrStaleRequest. In both cases the
// caller must discard the result and mutate nothing.
func (e *TimelineEngine) FetchPage(ctx context.Context, db *gorm.DB, req TimelineRequest) (*TimelinePage, error) {
	key := viewKey(req)
	token := e.issue(key)

	if err := ctx.Err(); err != nil {
		return nil, ErrFetchAborted
	}

	activities, nextCursor, err := QueryActivities(
		db.WithContext(ctx),
		req.EntityType, req.EntityID, req.ActivityType,
		req.Cursor, req.PageSize,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrFetchAborted
		}
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, ErrFetchAborted
	}
	if !e.isCurrent(key, token) {
		return nil, ErrStaleRequest
	}

	return &TimelinePage{
		Activities: activities,
		HasMore:    nextCursor != "",
		NextCursor: nextCursor,
	}, nil
}
