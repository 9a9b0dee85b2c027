// internal/domain/mail/message.go
package mail

import "context"

const (
	PlaceholderSubject = "No Title Provided"
	PlaceholderBody    = "No Description Provided"
)

// Message is a single plain-text email. It is built per delivery attempt.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// NewMessage builds a Message, substituting placeholders for empty fields.
func NewMessage(recipient, subject, body string) Message {
	if subject == "" {
		subject = PlaceholderSubject
	}
	if body == "" {
		body = PlaceholderBody
	}
	return Message{Recipient: recipient, Subject: subject, Body: body}
}

// Sender delivers a message over some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Result is reported once per submitted message.
type Result struct {
	Message  Message
	Attempts int
	Err      error
}

// Submitter accepts messages for asynchronous delivery.
type Submitter interface {
	Submit(msg Message, done func(Result)) error
}
