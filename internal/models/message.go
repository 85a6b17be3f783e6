package models

// MessageSummary is a display-ready projection of one upstream message.
// Identity is (mailbox id, message id); summaries are recomputed on every
// sync tick and are safe to discard.
type MessageSummary struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Intro   string `json:"intro"`
	Date    string `json:"date"`
	Unread  bool   `json:"unread"`
}

// MessageDetail extends a summary with bodies and attachment references.
// Attachment bytes are fetched separately.
type MessageDetail struct {
	MessageSummary
	HTML        string       `json:"html,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}
