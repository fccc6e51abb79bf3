package model

import (
	"html/template"
	"time"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one transcript entry. It is never persisted.
type ChatMessage struct {
	ID     string `json:"id"`
	Sender Sender `json:"sender"`
	Text   string `json:"text"`

	// HTML is the rendered body: escaped text, or sanitized markdown output
	// when Markdown is true.
	HTML     template.HTML `json:"-"`
	Markdown bool          `json:"markdown"`
	Error    bool          `json:"error,omitempty"`
	Time     time.Time     `json:"time"`
}

// Clock formats the display time (HH:MM).
func (m ChatMessage) Clock() string {
	if m.Time.IsZero() {
		return ""
	}
	return m.Time.Format("15:04")
}
