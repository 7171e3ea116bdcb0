package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"loqui/list"
)

// ListIndexEntry is the lightweight metadata kept for each list document so
// lists can be enumerated without loading full documents.
type ListIndexEntry struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ListStore persists list documents and keeps the list index in sync.
// For every document in the store there is exactly one index entry with the
// same id, its Content mirroring the document's root content as of the last
// save and its Timestamp the last mutation time (milliseconds since epoch).
type ListStore struct {
	store Store
	log   *log.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewListStore creates a list store over the given KV store. logger may be
// nil to disable logging.
func NewListStore(store Store, logger *log.Logger) *ListStore {
	return &ListStore{store: store, log: logger, now: time.Now}
}

func (s *ListStore) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

// SaveDocument persists doc under its id and upserts the matching index
// entry with a fresh timestamp. The index is never edited in place: the old
// entry is filtered out, the new one appended, and the index re-sorted by
// timestamp descending.
func (s *ListStore) SaveDocument(doc *list.Node) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("cannot save document without id")
	}
	doc.Normalize()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal list %s: %w", doc.ID, err)
	}
	if err := s.store.Set(ListKey(doc.ID), string(data)); err != nil {
		return err
	}

	return s.upsertIndex(ListIndexEntry{
		ID:        doc.ID,
		Content:   doc.Content,
		Timestamp: s.now().UnixMilli(),
	})
}

// LoadDocument loads a list document by id. A corrupt record is treated as
// absent: logged, and reported as ErrNotFound so callers degrade to a no-op.
func (s *ListStore) LoadDocument(id string) (*list.Node, error) {
	raw, err := s.store.Get(ListKey(id))
	if err != nil {
		return nil, err
	}

	var doc list.Node
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.logf("[ListStore] corrupt document %s: %v", id, err)
		return nil, ErrNotFound
	}
	if doc.ID == "" {
		doc.ID = id
	}
	doc.Normalize()
	return &doc, nil
}

// DeleteDocument removes the document and its index entry.
func (s *ListStore) DeleteDocument(id string) error {
	if err := s.store.Delete(ListKey(id)); err != nil {
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

// Index returns all index entries sorted by timestamp descending. A missing
// or corrupt index yields an empty index rather than an error.
func (s *ListStore) Index() ([]ListIndexEntry, error) {
	raw, err := s.store.Get(KeyListIndex)
	if err == ErrNotFound {
		return []ListIndexEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var index []ListIndexEntry
	if err := json.Unmarshal([]byte(raw), &index); err != nil {
		s.logf("[ListStore] corrupt list index: %v", err)
		return []ListIndexEntry{}, nil
	}
	return index, nil
}

func (s *ListStore) upsertIndex(entry ListIndexEntry) error {
	index, err := s.Index()
	if err != nil {
		return err
	}

	filtered := make([]ListIndexEntry, 0, len(index)+1)
	for _, e := range index {
		if e.ID != entry.ID {
			filtered = append(filtered, e)
		}
	}
	filtered = append(filtered, entry)
	return s.writeIndex(filtered)
}

func (s *ListStore) writeIndex(index []ListIndexEntry) error {
	sort.SliceStable(index, func(i, j int) bool {
		return index[i].Timestamp > index[j].Timestamp
	})

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal list index: %w", err)
	}
	return s.store.Set(KeyListIndex, string(data))
}
