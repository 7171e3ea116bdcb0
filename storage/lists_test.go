package storage

import (
	"errors"
	"testing"
	"time"

	"loqui/list"
)

func newTestListStore(t *testing.T) (*ListStore, *FileStore) {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewListStore(store, nil), store
}

// fakeClock returns a clock that advances one second per call.
func fakeClock() func() time.Time {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestListStoreSaveLoadRoundTrip(t *testing.T) {
	lists, store := newTestListStore(t)

	doc := list.NewNode("Groceries")
	doc.Nested = append(doc.Nested, list.NewNode("Fruit"))

	if err := lists.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	// Stored under the contractual key
	if _, err := store.Get("note-list-" + doc.ID); err != nil {
		t.Fatalf("document not stored under note-list-<id>: %v", err)
	}

	loaded, err := lists.LoadDocument(doc.ID)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if !list.Equal(loaded, doc) {
		t.Error("loaded document differs from saved document")
	}
}

func TestListStoreIndexUpsertAndOrder(t *testing.T) {
	lists, _ := newTestListStore(t)
	lists.now = fakeClock()

	a := list.NewNode("Alpha")
	b := list.NewNode("Beta")

	if err := lists.SaveDocument(a); err != nil {
		t.Fatalf("SaveDocument(a) error = %v", err)
	}
	if err := lists.SaveDocument(b); err != nil {
		t.Fatalf("SaveDocument(b) error = %v", err)
	}

	index, err := lists.Index()
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("Index() has %d entries, want 2", len(index))
	}
	if index[0].ID != b.ID || index[1].ID != a.ID {
		t.Errorf("Index() order = [%s %s], want most recent first", index[0].Content, index[1].Content)
	}

	// Re-saving A must not duplicate its entry, and moves it to the front.
	a.Content = "Alpha renamed"
	if err := lists.SaveDocument(a); err != nil {
		t.Fatalf("SaveDocument(a again) error = %v", err)
	}
	index, _ = lists.Index()
	if len(index) != 2 {
		t.Fatalf("Index() has %d entries after resave, want 2", len(index))
	}
	if index[0].ID != a.ID || index[0].Content != "Alpha renamed" {
		t.Errorf("Index()[0] = %+v, want renamed Alpha first", index[0])
	}
}

func TestListStoreMissingIndexIsEmpty(t *testing.T) {
	lists, _ := newTestListStore(t)

	index, err := lists.Index()
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(index) != 0 {
		t.Errorf("Index() = %v, want empty", index)
	}
}

func TestListStoreCorruptIndexIsEmpty(t *testing.T) {
	lists, store := newTestListStore(t)

	if err := store.Set(KeyListIndex, "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	index, err := lists.Index()
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(index) != 0 {
		t.Errorf("Index() = %v, want empty for corrupt index", index)
	}
}

func TestListStoreCorruptDocumentIsNotFound(t *testing.T) {
	lists, store := newTestListStore(t)

	if err := store.Set(ListKey("bad"), "{{{{"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := lists.LoadDocument("bad"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadDocument(corrupt) error = %v, want ErrNotFound", err)
	}
}

func TestListStoreDeleteRemovesIndexEntry(t *testing.T) {
	lists, _ := newTestListStore(t)

	doc := list.NewNode("Doomed")
	if err := lists.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if err := lists.DeleteDocument(doc.ID); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}

	if _, err := lists.LoadDocument(doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadDocument(deleted) error = %v, want ErrNotFound", err)
	}
	index, _ := lists.Index()
	if len(index) != 0 {
		t.Errorf("Index() = %v, want empty after delete", index)
	}
}

func TestListStoreSaveWithoutIDFails(t *testing.T) {
	lists, _ := newTestListStore(t)

	doc := &list.Node{Content: "anonymous"}
	if err := lists.SaveDocument(doc); err == nil {
		t.Error("SaveDocument() without id should fail")
	}
}
