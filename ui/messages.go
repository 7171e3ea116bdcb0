package ui

import "time"

// markdownRenderedMsg delivers an async markdown render result for one
// message index.
type markdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

// statusExpiredMsg clears a transient status line notice.
type statusExpiredMsg struct {
	Seq int
}

// statusTTL is how long a transient notice stays on the status line.
const statusTTL = 4 * time.Second
