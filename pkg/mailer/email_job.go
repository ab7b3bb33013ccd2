package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject with Text/HTML is set. From falls back
// to the worker's configured sender when empty.
type EmailJob struct {
	From     string         `json:"from,omitempty"`
	To       []string       `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "universal" or a named template
	Data     map[string]any `json:"data,omitempty"`
}

// Recipient returns the first addressee, or "" when none is set.
func (j EmailJob) Recipient() string {
	if len(j.To) == 0 {
		return ""
	}
	return j.To[0]
}
