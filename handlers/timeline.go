package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"visa_flow_app_go/db"
	"visa_flow_app_go/models"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// timelineEngine serializes concurrent page fetches per (entity, filter)
// view so a stale response can never overwrite a newer one
var timelineEngine = services.NewTimelineEngine()

// activityJSON is the wire form of one timeline entry
type activityJSON struct {
	ID           uint64       `json:"id"`
	EntityType   string       `json:"entity_type"`
	EntityID     string       `json:"entity_id"`
	ActivityType string       `json:"activity_type"`
	Description  string       `json:"description"`
	PerformedBy  *models.User `json:"performed_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	RelativeTime string       `json:"relative_time"`
	Label        string       `json:"label"`
	Icon         string       `json:"icon"`
	Color        string       `json:"color"`
	Metadata     interface{}  `json:"metadata,omitempty"`
}

func activityToJSON(activity models.Activity, now time.Time) activityJSON {
	descriptor := models.DescriptorFor(activity.ActivityType)
	meta, _ := activity.DecodeMeta()
	return activityJSON{
		ID:           activity.ID,
		EntityType:   activity.EntityType,
		EntityID:     activity.EntityID,
		ActivityType: activity.ActivityType,
		Description:  activity.Description,
		PerformedBy:  activity.PerformedBy,
		CreatedAt:    activity.CreatedAt,
		RelativeTime: services.FormatRelativeTime(activity.CreatedAt, now),
		Label:        descriptor.Label,
		Icon:         descriptor.Icon,
		Color:        descriptor.Color,
		Metadata:     meta,
	}
}

// timelineRequestFromQuery builds the engine request from query params.
// The page param carries the opaque cursor from a previous response.
func timelineRequestFromQuery(c echo.Context) (services.TimelineRequest, error) {
	entityType := c.QueryParam("entity_type")
	if entityType == "" {
		entityType = models.EntityTypeClient
	}
	entityID := c.QueryParam("entity_id")
	if entityID == "" {
		return services.TimelineRequest{}, errors.New("entity_id is required")
	}

	activityType := c.QueryParam("activity_type")
	if activityType != "" && !models.IsValidActivityType(activityType) {
		return services.TimelineRequest{}, errors.New("unknown activity_type")
	}

	pageSize := 0
	if raw := c.QueryParam("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageSize = n
		}
	}

	return services.TimelineRequest{
		EntityType:   entityType,
		EntityID:     entityID,
		ActivityType: activityType,
		Cursor:       c.QueryParam("page"),
		PageSize:     pageSize,
	}, nil
}

// GetTimelineHandler returns one page of an entity's activity timeline in
// descending time order
func GetTimelineHandler(c echo.Context) error {
	req, err := timelineRequestFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	page, err := timelineEngine.FetchPage(c.Request().Context(), db.DB, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadCursor):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid page token"})
		case errors.Is(err, services.ErrStaleRequest), errors.Is(err, services.ErrFetchAborted):
			// Superseded or canceled fetches are dropped, never surfaced
			return c.NoContent(http.StatusNoContent)
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch timeline"})
		}
	}

	now := time.Now()
	results := make([]activityJSON, 0, len(page.Activities))
	for _, activity := range page.Activities {
		results = append(results, activityToJSON(activity, now))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"results":   results,
		"has_more":  page.HasMore,
		"next_page": page.NextCursor,
	})
}

// GetGroupedTimelineHandler returns one page of the timeline bucketed into
// smart date groups (Today / Yesterday / This Week / ... / prior years)
func GetGroupedTimelineHandler(c echo.Context) error {
	req, err := timelineRequestFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	page, err := timelineEngine.FetchPage(c.Request().Context(), db.DB, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadCursor):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid page token"})
		case errors.Is(err, services.ErrStaleRequest), errors.Is(err, services.ErrFetchAborted):
			return c.NoContent(http.StatusNoContent)
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch timeline"})
		}
	}

	now := time.Now()
	groups := services.GroupBySmartDate(page.Activities, now)

	type groupJSON struct {
		Key        string         `json:"key"`
		Label      string         `json:"label"`
		Date       time.Time      `json:"date"`
		Activities []activityJSON `json:"activities"`
	}
	out := make([]groupJSON, 0, len(groups))
	for _, group := range groups {
		g := groupJSON{Key: group.Key, Label: group.Label, Date: group.Date}
		for _, activity := range group.Activities {
			g.Activities = append(g.Activities, activityToJSON(activity, now))
		}
		out = append(out, g)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"groups":    out,
		"has_more":  page.HasMore,
		"next_page": page.NextCursor,
	})
}
