package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"loqui/command"
	"loqui/storage"
)

// idleDelay is how long after a completed exchange the inactivity nudge
// fires. It fires at most maxIdleNudges times per chat session.
const (
	idleDelay     = 5 * time.Minute
	maxIdleNudges = 2
)

// idleNudge is what the assistant offers after a silent stretch.
const idleNudge = "Still there? I'm around if you need anything else."

// SendMessage appends the user message optimistically, persists the chat
// and fires the model request. The returned command resolves to a
// ResponseMsg tagged with the current session generation.
//
// There is no cancellation: if a second message is sent before the first
// resolves, both complete and both results append in completion order.
// That inconsistency window is accepted, documented behavior.
func (m *Model) SendMessage(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if m.CurrentChat == nil {
		m.NewChat()
	}

	m.Messages = append(m.Messages, Message{
		Role:      RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	if m.CurrentChat.Title == "" {
		m.CurrentChat.Title = storage.DeriveTitle(text)
	}
	m.persistChat()

	m.Loading = true
	m.inFlight++
	m.idleSeq++ // a new message cancels any armed inactivity timer

	gen := m.generation
	prov := m.Provider
	messages := m.BuildContext(text)

	return func() tea.Msg {
		var full strings.Builder
		err := prov.Chat(context.Background(), messages, func(chunk string) error {
			full.WriteString(chunk)
			return nil
		})
		return ResponseMsg{Generation: gen, Raw: full.String(), Err: err}
	}
}

// HandleResponse folds one completed model request into the session: parse,
// dispatch commands, apply points, append the assistant message, persist,
// speak, and rearm the inactivity timer. Stale completions (older
// generation) are dropped without effect.
func (m *Model) HandleResponse(msg ResponseMsg) tea.Cmd {
	if msg.Generation != m.generation {
		return nil
	}

	m.inFlight--
	if m.inFlight <= 0 {
		m.inFlight = 0
		m.Loading = false
	}

	if msg.Err != nil {
		m.Messages = append(m.Messages, Message{
			Role:      RoleAssistant,
			Content:   "Sorry, I couldn't reach the model: " + msg.Err.Error(),
			Timestamp: time.Now(),
		})
		m.persistChat()
		return nil
	}

	settings := m.Memory.Settings()
	resp := command.ParserFor(settings.ResponseFormat).Parse(msg.Raw)

	m.Dispatcher.ApplyAll(&m.Session, resp.Commands)
	m.RefreshWorkingDoc()

	if resp.HasPoints {
		_ = m.Memory.AddPoints(time.Now().Format("2006-01-02"), resp.Points)
	}

	m.Messages = append(m.Messages, Message{
		Role:      RoleAssistant,
		Content:   resp.Content,
		Raw:       msg.Raw,
		Timestamp: time.Now(),
	})
	m.persistChat()

	if settings.SpeechEnabled && m.Speech != nil {
		// Dropped, not queued, if something is already being spoken.
		_ = m.Speech.Speak(resp.Content)
	}

	return m.armIdleTimer()
}

// ReplayConversation speaks the assistant side of the current chat in
// order. Only Cancel interrupts the sequence.
func (m *Model) ReplayConversation() {
	if m.Speech == nil {
		return
	}
	var texts []string
	for _, msg := range m.Messages {
		if msg.Role == RoleAssistant {
			texts = append(texts, msg.Content)
		}
	}
	if len(texts) > 0 {
		_ = m.Speech.Replay(texts)
	}
}

// armIdleTimer schedules the inactivity nudge. Each arming invalidates the
// previous one via idleSeq; the per-session fire cap disarms it for good.
func (m *Model) armIdleTimer() tea.Cmd {
	if m.idleFires >= maxIdleNudges {
		return nil
	}
	m.idleSeq++
	gen, seq := m.generation, m.idleSeq
	return tea.Tick(idleDelay, func(time.Time) tea.Msg {
		return IdleMsg{Generation: gen, Seq: seq}
	})
}

// HandleIdle appends the inactivity nudge if the timer is still current,
// then rearms until the per-session cap is reached.
func (m *Model) HandleIdle(msg IdleMsg) tea.Cmd {
	if msg.Generation != m.generation || msg.Seq != m.idleSeq {
		return nil
	}

	m.idleFires++
	m.Messages = append(m.Messages, Message{
		Role:      RoleAssistant,
		Content:   idleNudge,
		Timestamp: time.Now(),
	})
	m.persistChat()

	if m.Memory.Settings().SpeechEnabled && m.Speech != nil {
		_ = m.Speech.Speak(idleNudge)
	}
	return m.armIdleTimer()
}

// persistChat writes the current messages through the chat store. Messages
// are persisted with display and raw content so either format can be
// reconstructed.
func (m *Model) persistChat() {
	if m.CurrentChat == nil {
		return
	}

	stored := make([]storage.ChatMessage, 0, len(m.Messages))
	for _, msg := range m.Messages {
		sm := storage.ChatMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp.UnixMilli(),
		}
		if msg.Raw != "" && msg.Raw != msg.Content {
			sm.RawContent = msg.Raw
			sm.ProcessedContent = msg.Content
		}
		stored = append(stored, sm)
	}

	_ = m.Chats.Save(&storage.Chat{
		ID:       m.CurrentChat.ID,
		Title:    m.CurrentChat.Title,
		Messages: stored,
	})
}

// FetchChats lists the chat index asynchronously.
func (m *Model) FetchChats() tea.Cmd {
	chats := m.Chats
	return func() tea.Msg {
		index, err := chats.Index()
		return ChatsListMsg{Index: index, Err: err}
	}
}

// FetchLists lists the list index asynchronously.
func (m *Model) FetchLists() tea.Cmd {
	lists := m.Lists
	return func() tea.Msg {
		index, err := lists.Index()
		return ListsListMsg{Index: index, Err: err}
	}
}

// FetchModels lists available provider models asynchronously.
func (m *Model) FetchModels() tea.Cmd {
	prov := m.Provider
	return func() tea.Msg {
		models, err := prov.ListModels(context.Background())
		return ModelsListMsg{Models: models, Err: err}
	}
}
