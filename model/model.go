// Package model holds the application state and business logic: the active
// chat, the working list, the send/receive flow against the provider, and
// assembly of the model context. UI packages render this state; they do not
// own any of it.
package model

import (
	"time"

	"github.com/google/uuid"

	"loqui/command"
	"loqui/config"
	"loqui/list"
	"loqui/speech"
	"loqui/storage"
)

// Model is the core application state. There is exactly one instance; the
// session context (working list, active view) lives here and nowhere else.
type Model struct {
	Config   *config.Config
	Provider Provider

	Lists  *storage.ListStore
	Chats  *storage.ChatStore
	Memory *storage.MemoryStore

	Engine     *list.Engine
	Dispatcher *command.Dispatcher
	Speech     *speech.Player

	// Session is the single source of truth for the working list id and
	// the active view, shared with the dispatcher.
	Session command.Session

	// Current chat and its messages. Messages mirror CurrentChat.Messages
	// plus any optimistically appended entries not yet persisted.
	CurrentChat *Chat
	Messages    []Message

	// WorkingDoc is the loaded working-list document, nil when none.
	WorkingDoc *list.Node

	// Loading is true while at least one model request is outstanding.
	Loading  bool
	inFlight int

	// generation increments on every chat switch so a completion from an
	// abandoned chat can never append into a newer one.
	generation int

	// Inactivity nudge bookkeeping, per session.
	idleSeq   int
	idleFires int

	titleSaver *Debouncer
}

// Chat pairs a persisted chat record with its id-independent runtime state.
type Chat struct {
	ID    string
	Title string
}

// New wires a model from its dependencies.
func New(cfg *config.Config, prov Provider, lists *storage.ListStore, chats *storage.ChatStore, memory *storage.MemoryStore, engine *list.Engine, dispatcher *command.Dispatcher, player *speech.Player) *Model {
	return &Model{
		Config:     cfg,
		Provider:   prov,
		Lists:      lists,
		Chats:      chats,
		Memory:     memory,
		Engine:     engine,
		Dispatcher: dispatcher,
		Speech:     player,
		Session:    command.Session{View: command.ViewChat},
		titleSaver: NewDebouncer(500 * time.Millisecond),
	}
}

// Generation returns the current session generation. Completions carry the
// generation they were started under; stale ones are dropped.
func (m *Model) Generation() int { return m.generation }

// NewChat starts a fresh chat session. Any in-flight completion from the
// previous chat becomes stale.
func (m *Model) NewChat() {
	m.generation++
	m.idleFires = 0
	m.idleSeq++
	m.inFlight = 0
	m.Loading = false
	m.CurrentChat = &Chat{ID: uuid.New().String()}
	m.Messages = nil
}

// SwitchChat loads an existing chat by id and makes it current.
func (m *Model) SwitchChat(id string) error {
	chat, err := m.Chats.Load(id)
	if err != nil {
		return err
	}

	m.generation++
	m.idleFires = 0
	m.idleSeq++
	m.inFlight = 0
	m.Loading = false
	m.CurrentChat = &Chat{ID: chat.ID, Title: chat.Title}

	m.Messages = nil
	for _, msg := range chat.Messages {
		m.Messages = append(m.Messages, Message{
			Role:      msg.Role,
			Content:   displayContent(msg),
			Raw:       rawContent(msg),
			Timestamp: time.UnixMilli(msg.Timestamp),
		})
	}
	return nil
}

// DeleteChat removes a chat; if it is the current one, a fresh chat is
// started.
func (m *Model) DeleteChat(id string) error {
	if err := m.Chats.Delete(id); err != nil {
		return err
	}
	if m.CurrentChat != nil && m.CurrentChat.ID == id {
		m.NewChat()
	}
	return nil
}

// SetWorkingList points the session at a list and loads its document.
func (m *Model) SetWorkingList(id string) error {
	doc, err := m.Lists.LoadDocument(id)
	if err != nil {
		return err
	}
	m.Session.WorkingListID = id
	m.WorkingDoc = doc
	return nil
}

// RefreshWorkingDoc reloads the working-list document from the store, e.g.
// after dispatched commands mutated it.
func (m *Model) RefreshWorkingDoc() {
	if m.Session.WorkingListID == "" {
		m.WorkingDoc = nil
		return
	}
	doc, err := m.Lists.LoadDocument(m.Session.WorkingListID)
	if err != nil {
		// The working list disappeared underneath us; drop the reference.
		m.Session.WorkingListID = ""
		m.WorkingDoc = nil
		return
	}
	m.WorkingDoc = doc
}

// SetListTitle updates the working document's title in memory and persists
// it on the trailing edge of a 500ms debounce, so rapid keystrokes coalesce
// into one write.
func (m *Model) SetListTitle(title string) {
	if m.WorkingDoc == nil {
		return
	}
	m.WorkingDoc.Content = title
	doc := m.WorkingDoc
	lists := m.Lists
	m.titleSaver.Trigger(func() {
		_ = lists.SaveDocument(doc.Clone())
	})
}

// FlushPendingSaves forces any debounced write to happen now, e.g. on
// shutdown or before switching documents.
func (m *Model) FlushPendingSaves() { m.titleSaver.Flush() }

func displayContent(msg storage.ChatMessage) string {
	if msg.ProcessedContent != "" {
		return msg.ProcessedContent
	}
	return msg.Content
}

func rawContent(msg storage.ChatMessage) string {
	if msg.RawContent != "" {
		return msg.RawContent
	}
	return msg.Content
}
