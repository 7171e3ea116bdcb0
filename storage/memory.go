package storage

import (
	"encoding/json"
	"fmt"
	"log"
)

// Settings is the persisted application settings object (flat key/value,
// stored as JSON under chat-app-settings).
type Settings struct {
	// HistoryWindow is how many recent messages are sent to the model.
	HistoryWindow int `json:"historyWindow"`

	// ResponseFormat selects the response parsing strategy:
	// "delimiter" or "json".
	ResponseFormat string `json:"responseFormat"`

	// SpeechEnabled controls whether assistant replies are spoken.
	SpeechEnabled bool `json:"speechEnabled"`

	// TTSCommand is the external text-to-speech command; the text to speak
	// is passed as the final argument.
	TTSCommand string `json:"ttsCommand,omitempty"`
}

// DefaultSettings returns the settings used when none are persisted.
func DefaultSettings() Settings {
	return Settings{
		HistoryWindow:  10,
		ResponseFormat: "delimiter",
		SpeechEnabled:  false,
	}
}

// MemoryStore holds the scalar blobs: long-term memory, the note pad, the
// prompt preface, daily points and the settings object. All operations are
// tolerant of missing or corrupt records.
type MemoryStore struct {
	store Store
	log   *log.Logger
}

// NewMemoryStore creates a memory store over the given KV store. logger may
// be nil to disable logging.
func NewMemoryStore(store Store, logger *log.Logger) *MemoryStore {
	return &MemoryStore{store: store, log: logger}
}

func (s *MemoryStore) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func (s *MemoryStore) getString(key string) string {
	value, err := s.store.Get(key)
	if err != nil {
		return ""
	}
	return value
}

// Memory returns the long-term memory blob.
func (s *MemoryStore) Memory() string { return s.getString(KeyMemory) }

// AppendMemory appends text to the memory blob, newline-separated.
// Empty text is a no-op.
func (s *MemoryStore) AppendMemory(text string) error {
	if text == "" {
		return nil
	}
	current := s.Memory()
	if current != "" {
		current += "\n"
	}
	return s.store.Set(KeyMemory, current+text)
}

// OverwriteMemory replaces the memory blob entirely.
func (s *MemoryStore) OverwriteMemory(text string) error {
	return s.store.Set(KeyMemory, text)
}

// ClearMemory sets the memory blob to the empty string.
func (s *MemoryStore) ClearMemory() error {
	return s.store.Set(KeyMemory, "")
}

// Note returns the note blob.
func (s *MemoryStore) Note() string { return s.getString(KeyNote) }

// AppendNote appends text to the note blob, blank-line separated.
// Empty text is a no-op.
func (s *MemoryStore) AppendNote(text string) error {
	if text == "" {
		return nil
	}
	current := s.Note()
	if current != "" {
		current += "\n\n"
	}
	return s.store.Set(KeyNote, current+text)
}

// Preface returns the prompt preface override, empty if unset.
func (s *MemoryStore) Preface() string { return s.getString(KeyPreface) }

// SetPreface stores the prompt preface override.
func (s *MemoryStore) SetPreface(text string) error {
	return s.store.Set(KeyPreface, text)
}

// Points returns the per-day point totals keyed by ISO date string.
// Missing or corrupt data yields an empty map.
func (s *MemoryStore) Points() map[string]int {
	raw, err := s.store.Get(KeyPoints)
	if err != nil {
		return map[string]int{}
	}
	var points map[string]int
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		s.logf("[MemoryStore] corrupt points record: %v", err)
		return map[string]int{}
	}
	return points
}

// AddPoints adds n to the total for the given ISO date (YYYY-MM-DD).
func (s *MemoryStore) AddPoints(date string, n int) error {
	points := s.Points()
	points[date] += n

	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to marshal points: %w", err)
	}
	return s.store.Set(KeyPoints, string(data))
}

// Settings returns the persisted settings, falling back to defaults for a
// missing or corrupt record. Zero-value fields from older records are
// filled in from the defaults.
func (s *MemoryStore) Settings() Settings {
	defaults := DefaultSettings()

	raw, err := s.store.Get(KeySettings)
	if err != nil {
		return defaults
	}

	settings := defaults
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.logf("[MemoryStore] corrupt settings record: %v", err)
		return defaults
	}
	if settings.HistoryWindow <= 0 {
		settings.HistoryWindow = defaults.HistoryWindow
	}
	if settings.ResponseFormat == "" {
		settings.ResponseFormat = defaults.ResponseFormat
	}
	return settings
}

// SaveSettings persists the settings object.
func (s *MemoryStore) SaveSettings(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return s.store.Set(KeySettings, string(data))
}
