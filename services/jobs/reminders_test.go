package jobs

import (
	"testing"
	"time"
	"visa_flow_app_go/config"
	"visa_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupJobTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.User{}, &models.Client{}, &models.Reminder{})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		EmailTestMode: true,
		EmailFrom:     "noreply@test",
		EmailFromName: "Test",
		AppURL:        "http://localhost:8080",
	}
}

func createReminderFixture(db *gorm.DB, date time.Time, assignedTo *string) *models.Reminder {
	reminder := &models.Reminder{
		Title:        "Follow up",
		ReminderDate: date,
		ContentType:  models.EntityTypeClient,
		ObjectID:     "client-1",
		CreatedByID:  "creator",
		AssignedToID: assignedTo,
	}
	db.Create(reminder)
	return reminder
}

func TestSendDueReminders_MarksSent(t *testing.T) {
	db := setupJobTestDB()
	user := &models.User{Name: "Counselor", Email: "c@test.com", Password: "x", IsActive: true}
	db.Create(user)
	db.Create(&models.Client{ID: "client-1", Name: "Test Client"})

	due := createReminderFixture(db, time.Now().UTC().Add(-24*time.Hour), &user.ID)
	future := createReminderFixture(db, time.Now().UTC().Add(72*time.Hour), &user.ID)

	SendDueReminders(db, testConfig())

	var reloaded models.Reminder
	db.First(&reloaded, "id = ?", due.ID)
	assert.NotNil(t, reloaded.SentAt)

	var reloadedFuture models.Reminder
	db.First(&reloadedFuture, "id = ?", future.ID)
	assert.Nil(t, reloadedFuture.SentAt)
}

func TestSendDueReminders_SkipsAlreadySent(t *testing.T) {
	db := setupJobTestDB()
	user := &models.User{Name: "Counselor", Email: "c@test.com", Password: "x", IsActive: true}
	db.Create(user)

	reminder := createReminderFixture(db, time.Now().UTC().Add(-time.Hour), &user.ID)
	alreadySent := time.Now().UTC().Add(-30 * time.Minute)
	db.Model(reminder).Update("sent_at", alreadySent)

	SendDueReminders(db, testConfig())

	var reloaded models.Reminder
	db.First(&reloaded, "id = ?", reminder.ID)
	assert.WithinDuration(t, alreadySent, *reloaded.SentAt, time.Second)
}

func TestSendDueReminders_SkipsUnassigned(t *testing.T) {
	db := setupJobTestDB()
	reminder := createReminderFixture(db, time.Now().UTC().Add(-time.Hour), nil)

	SendDueReminders(db, testConfig())

	var reloaded models.Reminder
	db.First(&reloaded, "id = ?", reminder.ID)
	assert.Nil(t, reloaded.SentAt)
}
