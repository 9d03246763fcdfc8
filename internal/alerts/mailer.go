package alerts

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// sendEmail delivers through the HTTP relay when one is configured and
// falls back to plain SMTP. With neither configured the mail is logged and
// dropped, which is what you want on a dev machine.
func sendEmail(to, subject, body string) error {
	if os.Getenv("EMAIL_RELAY_URL") != "" {
		return sendViaRelay(to, subject, body)
	}
	return sendViaSMTP(to, subject, body)
}

func sendViaSMTP(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Printf("smtp not configured, dropping email to %s (%s)", to, subject)
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@campusmarket.local"
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}
	return smtp.SendMail(host+":"+port, auth, from, []string{to}, msg)
}
