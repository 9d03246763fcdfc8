package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

var relayHTTP = &http.Client{Timeout: 10 * time.Second}

type relayRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// sendViaRelay posts the mail to a transactional email provider. The
// provider just needs a bearer-authenticated JSON endpoint.
func sendViaRelay(to, subject, body string) error {
	payload, err := json.Marshal(relayRequest{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, os.Getenv("EMAIL_RELAY_URL"), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("EMAIL_RELAY_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := relayHTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("email relay returned %s", resp.Status)
	}
	return nil
}
