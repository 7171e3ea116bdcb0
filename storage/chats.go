package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// ChatMessage is one message in a chat. Messages are append-only: they are
// never edited or removed individually, only whole chats are deleted.
type ChatMessage struct {
	Role             string `json:"role"` // "user" or "assistant"
	Content          string `json:"content"`
	Timestamp        int64  `json:"timestamp"`
	ProcessedContent string `json:"processedContent,omitempty"`
	RawContent       string `json:"rawContent,omitempty"`
}

// Chat is one persisted conversation. The id lives in the store key and the
// chat index, not in the record itself.
type Chat struct {
	ID       string        `json:"-"`
	Messages []ChatMessage `json:"messages"`
	Title    string        `json:"title,omitempty"`
}

// ChatIndexEntry mirrors {id, title, timestamp} for each chat, kept sorted
// by timestamp descending for fast listing.
type ChatIndexEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

// ChatMatch is a search hit inside a chat's history.
type ChatMatch struct {
	ChatID       string
	ChatTitle    string
	MessageIndex int
	Role         string
	Preview      string
	Timestamp    int64
}

// ChatStore persists chats and keeps the chat index in sync.
type ChatStore struct {
	store Store
	log   *log.Logger
	now   func() time.Time
}

// NewChatStore creates a chat store over the given KV store. logger may be
// nil to disable logging.
func NewChatStore(store Store, logger *log.Logger) *ChatStore {
	return &ChatStore{store: store, log: logger, now: time.Now}
}

func (s *ChatStore) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

// Save persists the chat and upserts its index entry with a fresh timestamp.
func (s *ChatStore) Save(chat *Chat) error {
	if chat == nil || chat.ID == "" {
		return fmt.Errorf("cannot save chat without id")
	}
	if chat.Messages == nil {
		chat.Messages = []ChatMessage{}
	}

	data, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("failed to marshal chat %s: %w", chat.ID, err)
	}
	if err := s.store.Set(ChatKey(chat.ID), string(data)); err != nil {
		return err
	}

	return s.upsertIndex(ChatIndexEntry{
		ID:        chat.ID,
		Title:     chat.Title,
		Timestamp: s.now().UnixMilli(),
	})
}

// Load loads a chat by id. Corrupt records are treated as absent.
func (s *ChatStore) Load(id string) (*Chat, error) {
	raw, err := s.store.Get(ChatKey(id))
	if err != nil {
		return nil, err
	}

	var chat Chat
	if err := json.Unmarshal([]byte(raw), &chat); err != nil {
		s.logf("[ChatStore] corrupt chat %s: %v", id, err)
		return nil, ErrNotFound
	}
	chat.ID = id
	if chat.Messages == nil {
		chat.Messages = []ChatMessage{}
	}
	return &chat, nil
}

// Delete removes the chat record and its index entry.
func (s *ChatStore) Delete(id string) error {
	if err := s.store.Delete(ChatKey(id)); err != nil {
		return err
	}

	index, err := s.Index()
	if err != nil {
		return err
	}
	filtered := index[:0]
	for _, entry := range index {
		if entry.ID != id {
			filtered = append(filtered, entry)
		}
	}
	return s.writeIndex(filtered)
}

// Index returns all chat index entries sorted by timestamp descending.
// A missing or corrupt index yields an empty index.
func (s *ChatStore) Index() ([]ChatIndexEntry, error) {
	raw, err := s.store.Get(KeyChatIndex)
	if err == ErrNotFound {
		return []ChatIndexEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var index []ChatIndexEntry
	if err := json.Unmarshal([]byte(raw), &index); err != nil {
		s.logf("[ChatStore] corrupt chat index: %v", err)
		return []ChatIndexEntry{}, nil
	}
	return index, nil
}

func (s *ChatStore) upsertIndex(entry ChatIndexEntry) error {
	index, err := s.Index()
	if err != nil {
		return err
	}

	filtered := make([]ChatIndexEntry, 0, len(index)+1)
	for _, e := range index {
		if e.ID != entry.ID {
			filtered = append(filtered, e)
		}
	}
	filtered = append(filtered, entry)
	return s.writeIndex(filtered)
}

func (s *ChatStore) writeIndex(index []ChatIndexEntry) error {
	sort.SliceStable(index, func(i, j int) bool {
		return index[i].Timestamp > index[j].Timestamp
	})

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal chat index: %w", err)
	}
	return s.store.Set(KeyChatIndex, string(data))
}

// Search scans every chat's messages for a case-insensitive substring match.
// Chats that fail to load are skipped.
func (s *ChatStore) Search(query string) ([]ChatMatch, error) {
	if query == "" {
		return []ChatMatch{}, nil
	}

	index, err := s.Index()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []ChatMatch

	for _, entry := range index {
		chat, err := s.Load(entry.ID)
		if err != nil {
			continue
		}
		for i, msg := range chat.Messages {
			if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
				continue
			}
			preview := msg.Content
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}
			matches = append(matches, ChatMatch{
				ChatID:       chat.ID,
				ChatTitle:    chat.Title,
				MessageIndex: i,
				Role:         msg.Role,
				Preview:      preview,
				Timestamp:    msg.Timestamp,
			})
		}
	}
	return matches, nil
}

// DeriveTitle generates a chat title from the first user message, in the
// absence of an explicit one.
func DeriveTitle(firstMessage string) string {
	name := strings.ReplaceAll(firstMessage, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Chat %s", time.Now().Format("Jan 2, 3:04 PM"))
	}
	if len(name) > 30 {
		name = name[:30] + "..."
	}
	return name
}
