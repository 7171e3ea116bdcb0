package model

import "time"

// Message roles on the wire to every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a chat message in the conversation.
type Message struct {
	Role      string
	Content   string // Display content (command segments stripped)
	Raw       string // Raw content as returned by the provider
	Timestamp time.Time
}
