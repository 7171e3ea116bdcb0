package model

import "loqui/storage"

// ResponseMsg carries one completed (or failed) model request back into the
// update loop. Generation is the session generation the request was started
// under; completions for an older generation are dropped.
type ResponseMsg struct {
	Generation int
	Raw        string
	Err        error
}

// IdleMsg fires when the inactivity timer elapses. Seq ties the message to
// the arming that scheduled it so a rearm implicitly cancels older timers.
type IdleMsg struct {
	Generation int
	Seq        int
}

// ChatsListMsg delivers the chat index for the selector.
type ChatsListMsg struct {
	Index []storage.ChatIndexEntry
	Err   error
}

// ListsListMsg delivers the list index for the selector.
type ListsListMsg struct {
	Index []storage.ListIndexEntry
	Err   error
}

// ModelsListMsg delivers available model names from the provider.
type ModelsListMsg struct {
	Models []string
	Err    error
}
