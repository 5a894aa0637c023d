package jobs

import (
	"encoding/json"
	"log"
	"time"
	"visa_flow_app_go/config"
	"visa_flow_app_go/models"
	"visa_flow_app_go/services"

	"gorm.io/gorm"
)

// SendDueReminders finds reminders due today or earlier that have not been
// notified yet and emails the assigned user
func SendDueReminders(database *gorm.DB, cfg *config.Config) {
	log.Println("Starting due-reminder job...")

	// Everything due up to the end of today
	now := time.Now().UTC()
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)

	var reminders []models.Reminder
	err := database.Preload("AssignedTo").
		Where("reminder_date <= ?", endOfToday).
		Where("sent_at IS NULL").
		Find(&reminders).Error
	if err != nil {
		log.Printf("Error fetching due reminders: %v", err)
		return
	}

	log.Printf("Found %d due reminders", len(reminders))

	for _, reminder := range reminders {
		if reminder.AssignedTo == nil {
			continue
		}

		data := services.ReminderEmailData{
			RecipientName: reminder.AssignedTo.Name,
			Title:         reminder.Title,
			Date:          reminder.ReminderDate.Format("Monday, January 2, 2006"),
		}
		if reminder.ReminderTime != nil {
			data.Time = *reminder.ReminderTime
		}

		// Pull the originating note content out of meta_info when present
		if reminder.MetaInfo != "" {
			var meta map[string]string
			if err := json.Unmarshal([]byte(reminder.MetaInfo), &meta); err == nil {
				data.NoteContent = meta["note_content"]
			}
		}

		if reminder.ContentType == models.EntityTypeClient {
			var client models.Client
			if err := database.First(&client, "id = ?", reminder.ObjectID).Error; err == nil {
				data.ClientName = client.Name
				data.ClientLink = cfg.AppURL + "/clients/" + client.ID
			}
		}

		email := services.BuildReminderEmail(reminder.AssignedTo.Email, data)
		if err := services.SendEmail(cfg, email); err != nil {
			log.Printf("Failed to send reminder %s: %v", reminder.ID, err)
			continue
		}

		sentAt := time.Now().UTC()
		database.Model(&reminder).Update("sent_at", sentAt)
		log.Printf("Sent reminder %s", reminder.ID)
	}

	log.Println("Due-reminder job completed")
}
