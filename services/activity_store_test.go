package services

import (
	"fmt"
	"testing"
	"time"
	"visa_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupActivityTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.User{}, &models.Activity{})
	return db
}

// seedActivities inserts n activities for the entity, one second apart,
// oldest first. Returns them in insertion order.
func seedActivities(db *gorm.DB, entityID string, n int, base time.Time) []models.Activity {
	out := make([]models.Activity, 0, n)
	for i := 0; i < n; i++ {
		activity := models.Activity{
			EntityType:   models.EntityTypeClient,
			EntityID:     entityID,
			ActivityType: models.ActivityNoteAdded,
			Description:  fmt.Sprintf("note %d", i),
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		}
		db.Create(&activity)
		out = append(out, activity)
	}
	return out
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793, time.UTC)
	view := activityView(models.EntityTypeClient, "client-1", "")
	token := EncodeCursor(at, 42, view)

	gotAt, gotID, gotView, err := DecodeCursor(token)
	assert.NoError(t, err)
	assert.Equal(t, at.UnixNano(), gotAt.UnixNano())
	assert.Equal(t, uint64(42), gotID)
	assert.Equal(t, view, gotView)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, _, _, err := DecodeCursor("not a cursor!!!")
	assert.ErrorIs(t, err, ErrBadCursor)

	// Valid base64 but not the expected JSON
	_, _, _, err = DecodeCursor("aGVsbG8")
	assert.ErrorIs(t, err, ErrBadCursor)
}

func TestQueryActivities_DescendingOrder(t *testing.T) {
	db := setupActivityTestDB()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedActivities(db, "client-1", 5, base)

	activities, next, err := QueryActivities(db, models.EntityTypeClient, "client-1", "", "", 10)
	assert.NoError(t, err)
	assert.Len(t, activities, 5)
	assert.Empty(t, next)

	for i := 1; i < len(activities); i++ {
		prev, cur := activities[i-1], activities[i]
		assert.True(t, prev.CreatedAt.After(cur.CreatedAt) ||
			(prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID > cur.ID))
	}
}

func TestQueryActivities_PaginationWalk(t *testing.T) {
	db := setupActivityTestDB()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedActivities(db, "client-1", 7, base)

	seen := map[uint64]bool{}
	cursor := ""
	pages := 0
	for {
		activities, next, err := QueryActivities(db, models.EntityTypeClient, "client-1", "", cursor, 3)
		assert.NoError(t, err)
		for _, a := range activities {
			assert.False(t, seen[a.ID], "activity %d returned twice", a.ID)
			seen[a.ID] = true
		}
		pages++
		if next == "" {
			break
		}
		cursor = next
	}

	assert.Equal(t, 3, pages) // 3 + 3 + 1
	assert.Len(t, seen, 7)
}

func TestQueryActivities_CursorStableUnderAppend(t *testing.T) {
	db := setupActivityTestDB()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedActivities(db, "client-1", 6, base)

	first, cursor, err := QueryActivities(db, models.EntityTypeClient, "client-1", "", "", 3)
	assert.NoError(t, err)
	assert.Len(t, first, 3)
	assert.NotEmpty(t, cursor)

	// Newer activities arrive while the reader holds the cursor
	seedActivities(db, "client-1", 4, base.Add(time.Hour))

	second, _, err := QueryActivities(db, models.EntityTypeClient, "client-1", "", cursor, 3)
	assert.NoError(t, err)
	assert.Len(t, second, 3)

	// The second page is exactly the rows older than the anchor, no
	// duplicates and no shifted entries
	for _, a := range second {
		anchor := first[len(first)-1]
		assert.True(t, a.CreatedAt.Before(anchor.CreatedAt) ||
			(a.CreatedAt.Equal(anchor.CreatedAt) && a.ID < anchor.ID))
	}
}

func TestQueryActivities_TieBreakOnID(t *testing.T) {
	db := setupActivityTestDB()
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Three rows with identical timestamps
	for i := 0; i < 3; i++ {
		db.Create(&models.Activity{
			EntityType:   models.EntityTypeClient,
			EntityID:     "client-1",
			ActivityType: models.ActivityNoteAdded,
			CreatedAt:    at,
		})
	}

	page1, cursor, err := QueryActivities(db, models.EntityTypeClient, "client-1", "", "", 2)
	assert.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.Greater(t, page1[0].ID, page1[1].ID)

	page2, next, err := QueryActivities(db, models.EntityTypeClient, "client-1", "", cursor, 2)
	assert.NoError(t, err)
	assert.Len(t, page2, 1)
	assert.Empty(t, next)
	assert.Less(t, page2[0].ID, page1[1].ID)
}

func TestQueryActivities_TypeFilter(t *testing.T) {
	db := setupActivityTestDB()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedActivities(db, "client-1", 3, base)
	db.Create(&models.Activity{
		EntityType:   models.EntityTypeClient,
		EntityID:     "client-1",
		ActivityType: models.ActivityStageChanged,
		CreatedAt:    base.Add(time.Minute),
	})

	activities, _, err := QueryActivities(db, models.EntityTypeClient, "client-1", models.ActivityStageChanged, "", 10)
	assert.NoError(t, err)
	assert.Len(t, activities, 1)
	assert.Equal(t, models.ActivityStageChanged, activities[0].ActivityType)
}

func TestQueryActivities_FilterChangeResetsCursor(t *testing.T) {
	db := setupActivityTestDB()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedActivities(db, "client-1", 6, base)
	for i := 0; i < 3; i++ {
		db.Create(&models.Activity{
			EntityType:   models.EntityTypeClient,
			EntityID:     "client-1",
			ActivityType: models.ActivityStageChanged,
			CreatedAt:    base.Add(time.Duration(10+i) * time.Second),
		})
	}

	// Scroll the unfiltered view past all three stage changes
	firstPage, cursor, err := QueryActivities(db, models.EntityTypeClient, "client-1", "", "", 4)
	assert.NoError(t, err)
	assert.Len(t, firstPage, 4)
	assert.NotEmpty(t, cursor)

	// The cursor belongs to the unfiltered view; switching the type filter
	// restarts from the head instead of resuming mid-scroll, so every
	// stage change is returned even though the anchor sits below them
	activities, _, err := QueryActivities(db, models.EntityTypeClient, "client-1", models.ActivityStageChanged, cursor, 10)
	assert.NoError(t, err)
	assert.Len(t, activities, 3)
	for _, activity := range activities {
		assert.Equal(t, models.ActivityStageChanged, activity.ActivityType)
	}
}

func TestQueryActivities_IsolatesEntities(t *testing.T) {
	db := setupActivityTestDB()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedActivities(db, "client-1", 2, base)
	seedActivities(db, "client-2", 3, base)

	activities, _, err := QueryActivities(db, models.EntityTypeClient, "client-2", "", "", 10)
	assert.NoError(t, err)
	assert.Len(t, activities, 3)
}

func TestRecordActivity_FillsCreatedAt(t *testing.T) {
	db := setupActivityTestDB()

	activity, err := RecordActivity(db, &models.Activity{
		EntityType:   models.EntityTypeClient,
		EntityID:     "client-1",
		ActivityType: models.ActivityNoteAdded,
	})
	assert.NoError(t, err)
	assert.False(t, activity.CreatedAt.IsZero())
	assert.NotZero(t, activity.ID)
}

func TestCountActivities(t *testing.T) {
	db := setupActivityTestDB()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedActivities(db, "client-1", 4, base)

	count, err := CountActivities(db, models.EntityTypeClient, "client-1", "")
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)

	count, err = CountActivities(db, models.EntityTypeClient, "client-1", models.ActivityStageChanged)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
