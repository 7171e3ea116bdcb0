package model_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"loqui/command"
	"loqui/list"
	"loqui/model"
	"loqui/provider/testutil"
	"loqui/storage"
)

type fixture struct {
	model  *model.Model
	prov   *testutil.MockProvider
	memory *storage.MemoryStore
	chats  *storage.ChatStore
	lists  *storage.ListStore
}

func newFixture(t *testing.T, response string) *fixture {
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

	prov := testutil.NewScriptedProvider("test-model", response)
	m := model.New(nil, prov, lists, chats, memory, engine, dispatcher, nil)
	return &fixture{model: m, prov: prov, memory: memory, chats: chats, lists: lists}
}

// exchange runs one full send/receive cycle against the scripted provider.
func (f *fixture) exchange(t *testing.T, text string) {
	t.Helper()
	cmd := f.model.SendMessage(text)
	if cmd == nil {
		t.Fatalf("SendMessage(%q) returned nil command", text)
	}
	resp, ok := cmd().(model.ResponseMsg)
	if !ok {
		t.Fatal("send command did not resolve to a ResponseMsg")
	}
	f.model.HandleResponse(resp)
}

func TestSendMessageEmptyIsNoOp(t *testing.T) {
	f := newFixture(t, "unused")
	if cmd := f.model.SendMessage("   "); cmd != nil {
		t.Error("SendMessage(blank) should return nil")
	}
	if len(f.model.Messages) != 0 {
		t.Errorf("Messages = %v, want none", f.model.Messages)
	}
}

func TestExchangeAppendsAndPersists(t *testing.T) {
	f := newFixture(t, "Sure thing.##add to long term memory,,likes tea")

	f.exchange(t, "remember that I like tea")

	if len(f.model.Messages) != 2 {
		t.Fatalf("Messages has %d entries, want 2", len(f.model.Messages))
	}
	user, assistant := f.model.Messages[0], f.model.Messages[1]
	if user.Role != model.RoleUser || user.Content != "remember that I like tea" {
		t.Errorf("user message = %+v", user)
	}
	if assistant.Role != model.RoleAssistant || assistant.Content != "Sure thing." {
		t.Errorf("assistant message = %+v", assistant)
	}
	if !strings.Contains(assistant.Raw, "##add to long term memory") {
		t.Errorf("assistant Raw = %q, want full wire response", assistant.Raw)
	}
	if f.model.Loading {
		t.Error("Loading still true after HandleResponse")
	}

	// The command in the response was dispatched.
	if got := f.memory.Memory(); got != "likes tea" {
		t.Errorf("Memory() = %q, want command applied", got)
	}

	// The chat was persisted with both content forms.
	chat, err := f.chats.Load(f.model.CurrentChat.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if chat.Title != "remember that I like tea" {
		t.Errorf("chat title = %q, want derived from first message", chat.Title)
	}
	stored := chat.Messages[1]
	if stored.ProcessedContent != "Sure thing." || !strings.Contains(stored.RawContent, "##") {
		t.Errorf("stored assistant message = %+v", stored)
	}
}

func TestStaleResponseDropped(t *testing.T) {
	f := newFixture(t, "late reply")

	cmd := f.model.SendMessage("hello")
	resp := cmd().(model.ResponseMsg)

	// Switching to a new chat makes the in-flight completion stale.
	f.model.NewChat()
	f.model.HandleResponse(resp)

	if len(f.model.Messages) != 0 {
		t.Errorf("Messages = %v, want stale response dropped", f.model.Messages)
	}
}

func TestHandleResponseError(t *testing.T) {
	f := newFixture(t, "")

	resp := model.ResponseMsg{
		Generation: f.model.Generation(),
		Err:        errors.New("connection refused"),
	}
	f.model.HandleResponse(resp)

	if len(f.model.Messages) != 1 {
		t.Fatalf("Messages has %d entries, want 1", len(f.model.Messages))
	}
	got := f.model.Messages[0]
	if got.Role != model.RoleAssistant || !strings.Contains(got.Content, "connection refused") {
		t.Errorf("error message = %+v", got)
	}
}

func TestJSONResponseAddsPoints(t *testing.T) {
	f := newFixture(t, `{"content": "Nice work!", "points": 5}`)

	settings := f.memory.Settings()
	settings.ResponseFormat = command.FormatJSON
	if err := f.memory.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	f.exchange(t, "I finished my run")

	if got := f.model.Messages[1].Content; got != "Nice work!" {
		t.Errorf("assistant content = %q", got)
	}
	today := time.Now().Format("2006-01-02")
	if got := f.memory.Points()[today]; got != 5 {
		t.Errorf("Points()[%s] = %d, want 5", today, got)
	}
}

func TestSwitchChatRestoresMessages(t *testing.T) {
	f := newFixture(t, "First answer.##add to note,,a note")

	f.exchange(t, "first question")
	firstID := f.model.CurrentChat.ID

	f.model.NewChat()
	if len(f.model.Messages) != 0 {
		t.Fatal("NewChat() should clear messages")
	}

	if err := f.model.SwitchChat(firstID); err != nil {
		t.Fatalf("SwitchChat() error = %v", err)
	}
	if len(f.model.Messages) != 2 {
		t.Fatalf("Messages has %d entries after switch, want 2", len(f.model.Messages))
	}
	assistant := f.model.Messages[1]
	if assistant.Content != "First answer." {
		t.Errorf("assistant Content = %q, want display form", assistant.Content)
	}
	if !strings.Contains(assistant.Raw, "##add to note") {
		t.Errorf("assistant Raw = %q, want wire form", assistant.Raw)
	}
}

func TestDeleteCurrentChatStartsFresh(t *testing.T) {
	f := newFixture(t, "answer")

	f.exchange(t, "question")
	id := f.model.CurrentChat.ID

	if err := f.model.DeleteChat(id); err != nil {
		t.Fatalf("DeleteChat() error = %v", err)
	}
	if f.model.CurrentChat.ID == id {
		t.Error("current chat should be replaced after deleting it")
	}
	if len(f.model.Messages) != 0 {
		t.Errorf("Messages = %v, want empty", f.model.Messages)
	}
	if _, err := f.chats.Load(id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestBuildContextAssemblesSystemMessage(t *testing.T) {
	f := newFixture(t, "unused")

	if err := f.memory.AppendMemory("likes tea"); err != nil {
		t.Fatalf("AppendMemory() error = %v", err)
	}
	if err := f.memory.AppendNote("dentist on Friday"); err != nil {
		t.Fatalf("AppendNote() error = %v", err)
	}

	doc := list.NewNode("Groceries")
	doc.Nested = append(doc.Nested, list.NewNode("Apples"))
	if err := f.lists.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if err := f.model.SetWorkingList(doc.ID); err != nil {
		t.Fatalf("SetWorkingList() error = %v", err)
	}

	messages := f.model.BuildContext("what should I buy?")
	if len(messages) != 3 {
		t.Fatalf("BuildContext() has %d messages, want system + user + reinforcement", len(messages))
	}

	system := messages[0]
	if system.Role != model.RoleSystem {
		t.Fatalf("messages[0].Role = %q", system.Role)
	}
	for _, want := range []string{
		"likes tea",
		"dentist on Friday",
		"Groceries",
		"Apples",
		doc.ID,
		"##", // delimiter format instructions by default
	} {
		if !strings.Contains(system.Content, want) {
			t.Errorf("system context missing %q", want)
		}
	}

	if messages[1].Role != model.RoleUser || messages[1].Content != "what should I buy?" {
		t.Errorf("messages[1] = %+v", messages[1])
	}
	if messages[2].Role != model.RoleSystem {
		t.Errorf("messages[2].Role = %q, want trailing system reinforcement", messages[2].Role)
	}
}

func TestBuildContextHistoryWindow(t *testing.T) {
	f := newFixture(t, "unused")

	settings := f.memory.Settings()
	settings.HistoryWindow = 4
	if err := f.memory.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		f.model.Messages = append(f.model.Messages, model.Message{
			Role:    model.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
	}

	messages := f.model.BuildContext("latest")
	// system + 4 history + user + reinforcement
	if len(messages) != 7 {
		t.Fatalf("BuildContext() has %d messages, want 7", len(messages))
	}
	if messages[1].Content != "message 6" {
		t.Errorf("oldest included history = %q, want window to keep the last 4", messages[1].Content)
	}
}

func TestBuildContextJSONFormatInstructions(t *testing.T) {
	f := newFixture(t, "unused")

	settings := f.memory.Settings()
	settings.ResponseFormat = command.FormatJSON
	if err := f.memory.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	messages := f.model.BuildContext("hello")
	if !strings.Contains(messages[0].Content, `"commands"`) {
		t.Error("system context should carry the JSON format instructions")
	}
}

func TestProviderReceivesBuiltContext(t *testing.T) {
	f := newFixture(t, "ok")

	f.exchange(t, "hello there")

	if len(f.prov.LastMessages) < 3 {
		t.Fatalf("provider got %d messages", len(f.prov.LastMessages))
	}
	first := f.prov.LastMessages[0]
	last := f.prov.LastMessages[len(f.prov.LastMessages)-1]
	if first.Role != model.RoleSystem || last.Role != model.RoleSystem {
		t.Errorf("context not bracketed by system messages: first %q last %q", first.Role, last.Role)
	}
}
