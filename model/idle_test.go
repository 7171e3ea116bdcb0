package model

import (
	"context"
	"testing"

	"loqui/command"
	"loqui/list"
	"loqui/storage"
)

// stubProvider is the minimal Provider for tests inside this package.
// provider/testutil cannot be used here without an import cycle.
type stubProvider struct{}

func (stubProvider) Chat(ctx context.Context, messages []Message, callback StreamCallback) error {
	return callback("ok")
}
func (stubProvider) ListModels(ctx context.Context) ([]string, error) { return nil, nil }
func (stubProvider) GetModel() string                                 { return "stub" }
func (stubProvider) GetDisplayName() string                           { return "stub" }
func (stubProvider) SetModel(string)                                  {}
func (stubProvider) Ping(ctx context.Context) error                   { return nil }

func newIdleModel(t *testing.T) *Model {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	memory := storage.NewMemoryStore(store, nil)
	lists := storage.NewListStore(store, nil)
	chats := storage.NewChatStore(store, nil)
	engine := list.NewEngine(lists)
	dispatcher := command.NewDispatcher(memory, lists, engine, nil, nil)
	return New(nil, stubProvider{}, lists, chats, memory, engine, dispatcher, nil)
}

func TestIdleNudgeFiresWhenCurrent(t *testing.T) {
	m := newIdleModel(t)
	m.NewChat()

	if cmd := m.armIdleTimer(); cmd == nil {
		t.Fatal("armIdleTimer() returned nil before the cap")
	}

	m.HandleIdle(IdleMsg{Generation: m.generation, Seq: m.idleSeq})
	if len(m.Messages) != 1 || m.Messages[0].Content != idleNudge {
		t.Fatalf("Messages = %+v, want one nudge", m.Messages)
	}
	if m.idleFires != 1 {
		t.Errorf("idleFires = %d, want 1", m.idleFires)
	}
}

func TestIdleNudgeStaleSeqDropped(t *testing.T) {
	m := newIdleModel(t)
	m.NewChat()
	m.armIdleTimer()

	// A rearm bumps the sequence, invalidating the earlier timer.
	stale := IdleMsg{Generation: m.generation, Seq: m.idleSeq}
	m.armIdleTimer()

	m.HandleIdle(stale)
	if len(m.Messages) != 0 {
		t.Errorf("Messages = %+v, want stale nudge dropped", m.Messages)
	}
}

func TestIdleNudgeStaleGenerationDropped(t *testing.T) {
	m := newIdleModel(t)
	m.NewChat()
	m.armIdleTimer()
	msg := IdleMsg{Generation: m.generation, Seq: m.idleSeq}

	m.NewChat()
	m.HandleIdle(msg)
	if len(m.Messages) != 0 {
		t.Errorf("Messages = %+v, want nudge from old chat dropped", m.Messages)
	}
}

func TestIdleNudgeCapsPerSession(t *testing.T) {
	m := newIdleModel(t)
	m.NewChat()

	for i := 0; i < maxIdleNudges; i++ {
		if cmd := m.armIdleTimer(); cmd == nil {
			t.Fatalf("armIdleTimer() returned nil at fire %d", i)
		}
		m.HandleIdle(IdleMsg{Generation: m.generation, Seq: m.idleSeq})
	}
	if len(m.Messages) != maxIdleNudges {
		t.Fatalf("Messages has %d entries, want %d", len(m.Messages), maxIdleNudges)
	}

	if cmd := m.armIdleTimer(); cmd != nil {
		t.Error("armIdleTimer() should return nil once the cap is reached")
	}

	// A new chat resets the cap.
	m.NewChat()
	if cmd := m.armIdleTimer(); cmd == nil {
		t.Error("armIdleTimer() should rearm after NewChat()")
	}
}

func TestSendMessageInvalidatesIdleTimer(t *testing.T) {
	m := newIdleModel(t)
	m.NewChat()
	m.armIdleTimer()
	armed := IdleMsg{Generation: m.generation, Seq: m.idleSeq}

	cmd := m.SendMessage("still here")
	if cmd == nil {
		t.Fatal("SendMessage() returned nil command")
	}

	m.HandleIdle(armed)
	for _, msg := range m.Messages {
		if msg.Content == idleNudge {
			t.Error("nudge fired even though the user sent a message")
		}
	}
}
