// Package storage is the persistence layer: a small key-value store
// abstraction plus typed stores for lists, chats, memory and settings
// layered on top of it.
//
// The key layout is a wire contract shared with other clients of the same
// data and must not change:
//
//	note-lists                 JSON array of list index entries
//	note-list-<id>             JSON list document
//	chats                      JSON array of chat index entries
//	chat-<id>                  JSON chat record
//	chat-app-settings          JSON settings object
//	chat-app-long-term-memory  plain string
//	chat-app-note              plain string
//	chat-app-points            JSON map of ISO date -> integer
//	chat-app-prompt-preface    plain string
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Well-known store keys.
const (
	KeyListIndex = "note-lists"
	KeyChatIndex = "chats"
	KeySettings  = "chat-app-settings"
	KeyMemory    = "chat-app-long-term-memory"
	KeyNote      = "chat-app-note"
	KeyPoints    = "chat-app-points"
	KeyPreface   = "chat-app-prompt-preface"
)

// ListKey returns the store key for a list document.
func ListKey(id string) string { return "note-list-" + id }

// ChatKey returns the store key for a chat record.
func ChatKey(id string) string { return "chat-" + id }

// ErrNotFound is returned when a key has no value in the store.
var ErrNotFound = errors.New("not found")

// Store is the durability boundary. Implementations are expected to be
// fast and synchronous; callers treat every operation as fallible and
// catch errors per operation.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set writes the value for key, overwriting any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns all keys present in the store.
	Keys() ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// FileStore persists each key as one file under a directory
// (0700 directory, 0600 files - the data includes conversation history).
type FileStore struct {
	dir string
}

// Verify FileStore satisfies Store at compile time.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".val")
}

func (s *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), nil
}

func (s *FileStore) Set(key, value string) error {
	if err := os.WriteFile(s.path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".val") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), ".val"))
	}
	return keys, nil
}

func (s *FileStore) Close() error { return nil }
