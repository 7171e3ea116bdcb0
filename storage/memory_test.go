package storage_test

import (
	"testing"

	"loqui/storage"
)

func newTestMemoryStore(t *testing.T) (*storage.MemoryStore, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return storage.NewMemoryStore(store, nil), store
}

func TestMemoryAppendOverwriteClear(t *testing.T) {
	memory, _ := newTestMemoryStore(t)

	if got := memory.Memory(); got != "" {
		t.Errorf("Memory() on empty store = %q", got)
	}

	if err := memory.AppendMemory("likes hiking"); err != nil {
		t.Fatalf("AppendMemory() error = %v", err)
	}
	if err := memory.AppendMemory("allergic to cats"); err != nil {
		t.Fatalf("AppendMemory() error = %v", err)
	}
	if got, want := memory.Memory(), "likes hiking\nallergic to cats"; got != want {
		t.Errorf("Memory() = %q, want %q", got, want)
	}

	// Empty append must not add a separator.
	if err := memory.AppendMemory(""); err != nil {
		t.Fatalf("AppendMemory(\"\") error = %v", err)
	}
	if got := memory.Memory(); got != "likes hiking\nallergic to cats" {
		t.Errorf("Memory() after empty append = %q", got)
	}

	if err := memory.OverwriteMemory("fresh start"); err != nil {
		t.Fatalf("OverwriteMemory() error = %v", err)
	}
	if got := memory.Memory(); got != "fresh start" {
		t.Errorf("Memory() after overwrite = %q", got)
	}

	if err := memory.ClearMemory(); err != nil {
		t.Fatalf("ClearMemory() error = %v", err)
	}
	if got := memory.Memory(); got != "" {
		t.Errorf("Memory() after clear = %q", got)
	}
}

func TestNoteAppendUsesBlankLineSeparator(t *testing.T) {
	memory, _ := newTestMemoryStore(t)

	if err := memory.AppendNote("first entry"); err != nil {
		t.Fatalf("AppendNote() error = %v", err)
	}
	if err := memory.AppendNote("second entry"); err != nil {
		t.Fatalf("AppendNote() error = %v", err)
	}
	if got, want := memory.Note(), "first entry\n\nsecond entry"; got != want {
		t.Errorf("Note() = %q, want %q", got, want)
	}
}

func TestPrefaceRoundTrip(t *testing.T) {
	memory, _ := newTestMemoryStore(t)

	if got := memory.Preface(); got != "" {
		t.Errorf("Preface() on empty store = %q", got)
	}
	if err := memory.SetPreface("You are terse."); err != nil {
		t.Fatalf("SetPreface() error = %v", err)
	}
	if got := memory.Preface(); got != "You are terse." {
		t.Errorf("Preface() = %q", got)
	}
}

func TestPointsAccumulate(t *testing.T) {
	memory, store := newTestMemoryStore(t)

	if err := memory.AddPoints("2026-08-29", 3); err != nil {
		t.Fatalf("AddPoints() error = %v", err)
	}
	if err := memory.AddPoints("2026-08-29", 2); err != nil {
		t.Fatalf("AddPoints() error = %v", err)
	}
	if err := memory.AddPoints("2026-08-30", 1); err != nil {
		t.Fatalf("AddPoints() error = %v", err)
	}

	points := memory.Points()
	if points["2026-08-29"] != 5 || points["2026-08-30"] != 1 {
		t.Errorf("Points() = %v", points)
	}

	// Corrupt record degrades to an empty map instead of failing.
	if err := store.Set(storage.KeyPoints, "oops"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := memory.Points(); len(got) != 0 {
		t.Errorf("Points() over corrupt record = %v, want empty", got)
	}
}

func TestSettingsDefaultsAndFillIn(t *testing.T) {
	memory, store := newTestMemoryStore(t)

	got := memory.Settings()
	want := storage.DefaultSettings()
	if got != want {
		t.Errorf("Settings() on empty store = %+v, want %+v", got, want)
	}

	saved := storage.Settings{
		HistoryWindow:  25,
		ResponseFormat: "json",
		SpeechEnabled:  true,
		TTSCommand:     "say",
	}
	if err := memory.SaveSettings(saved); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if got := memory.Settings(); got != saved {
		t.Errorf("Settings() = %+v, want %+v", got, saved)
	}

	// Records missing fields fall back to defaults for those fields.
	if err := store.Set(storage.KeySettings, `{"speechEnabled":true}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got = memory.Settings()
	if got.HistoryWindow != want.HistoryWindow || got.ResponseFormat != want.ResponseFormat {
		t.Errorf("Settings() partial record = %+v, want defaults filled in", got)
	}
	if !got.SpeechEnabled {
		t.Error("Settings() partial record lost speechEnabled")
	}

	// Corrupt records yield full defaults.
	if err := store.Set(storage.KeySettings, "][ nope"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := memory.Settings(); got != want {
		t.Errorf("Settings() over corrupt record = %+v, want defaults", got)
	}
}
