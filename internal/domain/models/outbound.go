package models

// Notification is a plain-text message posted to the configured webhook.
type Notification struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}
