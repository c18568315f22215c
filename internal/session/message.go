package session

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one committed conversation entry.
type Message struct {
	ID        string
	Role      Role
	Text      string
	IsPlan    bool
	Timestamp time.Time
}

func newMessage(role Role, text string, isPlan bool, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		IsPlan:    isPlan,
		Timestamp: now,
	}
}
