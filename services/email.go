package services

import (
	"fmt"
	"log"
	"strings"
	"visa_flow_app_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// ReminderEmailData holds the fields rendered into a reminder email
type ReminderEmailData struct {
	RecipientName string
	Title         string
	ClientName    string
	Date          string
	Time          string
	NoteContent   string
	ClientLink    string
}

// BuildReminderEmail builds the due-reminder notification email
func BuildReminderEmail(toEmail string, data ReminderEmailData) *Email {
	when := data.Date
	if data.Time != "" {
		when = fmt.Sprintf("%s at %s", data.Date, data.Time)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", data.RecipientName)
	fmt.Fprintf(&text, "Reminder: %s\n", data.Title)
	if data.ClientName != "" {
		fmt.Fprintf(&text, "Client: %s\n", data.ClientName)
	}
	fmt.Fprintf(&text, "Due: %s\n", when)
	if data.NoteContent != "" {
		fmt.Fprintf(&text, "\nOriginal note:\n%s\n", data.NoteContent)
	}
	if data.ClientLink != "" {
		fmt.Fprintf(&text, "\nOpen the client record: %s\n", data.ClientLink)
	}

	return &Email{
		To:       []string{toEmail},
		Subject:  fmt.Sprintf("Reminder: %s", data.Title),
		TextBody: text.String(),
	}
}

// SendEmail sends an email via Resend, or logs it in test mode
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
	}
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

func logEmailToConsole(email *Email) {
	log.Printf("---- EMAIL (test mode, not sent) ----")
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("%s", email.TextBody)
	log.Printf("-------------------------------------")
}
