package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMessage_Placeholders(t *testing.T) {
	msg := NewMessage("a@b.com", "", "")
	assert.Equal(t, "a@b.com", msg.Recipient)
	assert.Equal(t, PlaceholderSubject, msg.Subject)
	assert.Equal(t, PlaceholderBody, msg.Body)

	msg = NewMessage("a@b.com", "Reminder: Pay rent", "Due today")
	assert.Equal(t, Message{Recipient: "a@b.com", Subject: "Reminder: Pay rent", Body: "Due today"}, msg)
}
