package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"loqui/command"
	"loqui/storage"
)

// defaultPreface is used when no prompt-preface override is stored.
const defaultPreface = "You are a helpful voice assistant. Keep replies short and conversational; they may be read aloud."

// formatInstructionsDelimiter teaches the model the primary wire format.
// The command vocabulary here is a contract with command.KindOf.
const formatInstructionsDelimiter = `Reply with your message first. To perform actions, append command segments after your message, each introduced by ## and with arguments separated by ,, like this:

Your message here##command name,,arg1,,arg2##another command,,arg

Available commands:
- add to long term memory,,<text>
- overwrite long term memory,,<text>
- clear long term memory
- add to note,,<text>
- create list,,<title>
- load list,,<list id>
- modify list item,,<list id>,,<path indices...>,,<new content>
- add to list,,<list id>,,<path indices...>,,<item>[,,<item>...]
- switch view,,<list|chat>

Paths are child indices from the list root, one index per argument. Use no ## or ,, sequences inside ordinary prose.`

// formatInstructionsJSON teaches the model the secondary wire format.
const formatInstructionsJSON = `Reply with a single JSON object and nothing else, shaped like:

{"content": "your message here", "commands": [{"command": "create list", "variables": ["Groceries"]}], "points": 5}

"commands" and "points" are optional. Valid command names: "add to long term memory", "overwrite long term memory", "clear long term memory", "add to note", "create list", "load list", "modify list item", "add to list", "switch view". Path arguments are child indices from the list root, one per variable.`

// reinforcement is the trailing reminder appended after the user message.
const reinforcement = "Remember the response format and command vocabulary exactly as specified."

// BuildContext assembles the full message sequence for one model request:
// one synthesized system context message, the last N chat messages (N from
// settings), the new user message, and a trailing format reinforcement.
func (m *Model) BuildContext(userMessage string) []Message {
	settings := m.Memory.Settings()

	messages := []Message{{Role: RoleSystem, Content: m.systemContext(settings)}}

	history := m.Messages
	if n := settings.HistoryWindow; len(history) > n {
		history = history[len(history)-n:]
	}
	for _, msg := range history {
		messages = append(messages, Message{Role: msg.Role, Content: msg.Content})
	}

	messages = append(messages,
		Message{Role: RoleUser, Content: userMessage},
		Message{Role: RoleSystem, Content: reinforcement},
	)
	return messages
}

// systemContext builds the single system message: preface, list index,
// working list, memory, note and the format instructions for the active
// parsing strategy.
func (m *Model) systemContext(settings storage.Settings) string {
	var b strings.Builder

	preface := m.Memory.Preface()
	if preface == "" {
		preface = defaultPreface
	}
	b.WriteString(preface)
	b.WriteString("\n\nCurrent date: ")
	b.WriteString(time.Now().Format("2006-01-02"))

	if index, err := m.Lists.Index(); err == nil && len(index) > 0 {
		b.WriteString("\n\nThe user's lists (id: title):\n")
		for _, entry := range index {
			fmt.Fprintf(&b, "- %s: %s\n", entry.ID, entry.Content)
		}
	}

	if m.WorkingDoc != nil {
		if data, err := json.Marshal(m.WorkingDoc); err == nil {
			b.WriteString("\nThe currently loaded list:\n")
			b.Write(data)
			b.WriteString("\n")
		}
	}

	if memory := m.Memory.Memory(); memory != "" {
		b.WriteString("\nLong-term memory:\n")
		b.WriteString(memory)
		b.WriteString("\n")
	}

	if note := m.Memory.Note(); note != "" {
		b.WriteString("\nThe user's note:\n")
		b.WriteString(note)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if settings.ResponseFormat == command.FormatJSON {
		b.WriteString(formatInstructionsJSON)
	} else {
		b.WriteString(formatInstructionsDelimiter)
	}
	return b.String()
}
