package command_test

import (
	"strings"
	"testing"
	"time"

	"loqui/command"
	"loqui/list"
	"loqui/storage"
)

type fixture struct {
	memory     *storage.MemoryStore
	lists      *storage.ListStore
	engine     *list.Engine
	dispatcher *command.Dispatcher
	notices    *[]string
	sess       *command.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	memory := storage.NewMemoryStore(store, nil)
	lists := storage.NewListStore(store, nil)
	engine := list.NewEngine(lists)

	var notices []string
	notify := command.NotifierFunc(func(message string) {
		notices = append(notices, message)
	})

	return &fixture{
		memory:     memory,
		lists:      lists,
		engine:     engine,
		dispatcher: command.NewDispatcher(memory, lists, engine, notify, nil),
		notices:    &notices,
		sess:       &command.Session{View: command.ViewChat},
	}
}

func (f *fixture) apply(t *testing.T, raw string) {
	t.Helper()
	resp := command.DelimiterParser{}.Parse(raw)
	f.dispatcher.ApplyAll(f.sess, resp.Commands)
}

func TestDispatcherMemoryCommands(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "Ok##add to long term memory,,likes coffee")
	f.apply(t, "Ok##add to long term memory,,dislikes mornings")
	if got, want := f.memory.Memory(), "likes coffee\ndislikes mornings"; got != want {
		t.Errorf("Memory() = %q, want %q", got, want)
	}

	f.apply(t, "Ok##overwrite long term memory,,fresh start")
	if got := f.memory.Memory(); got != "fresh start" {
		t.Errorf("Memory() after overwrite = %q, want %q", got, "fresh start")
	}

	f.apply(t, "Ok##clear long term memory")
	if got := f.memory.Memory(); got != "" {
		t.Errorf("Memory() after clear = %q, want empty", got)
	}
}

func TestDispatcherNoteCommand(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "Ok##add to note,,first paragraph")
	f.apply(t, "Ok##add to note,,second paragraph")
	if got, want := f.memory.Note(), "first paragraph\n\nsecond paragraph"; got != want {
		t.Errorf("Note() = %q, want %q", got, want)
	}
}

func TestDispatcherCreateList(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "Here you go##create list,,Groceries")
	if f.sess.WorkingListID == "" {
		t.Fatal("create list did not set the working list id")
	}
	first := f.sess.WorkingListID

	time.Sleep(2 * time.Millisecond) // distinct index timestamps
	f.apply(t, "Another##create list,,Chores")

	index, err := f.lists.Index()
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("Index() has %d entries, want 2", len(index))
	}
	// Most recently created first
	if index[0].Content != "Chores" {
		t.Errorf("Index()[0].Content = %q, want %q", index[0].Content, "Chores")
	}
	if f.sess.WorkingListID == first {
		t.Error("second create list did not move the working list id")
	}
}

func TestDispatcherModifyListItem(t *testing.T) {
	f := newFixture(t)

	doc, err := f.engine.CreateDocument("Groceries")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	doc, err = f.engine.AppendChildren(doc, list.Path{}, "Fruit", "Bread")
	if err != nil {
		t.Fatalf("AppendChildren() error = %v", err)
	}
	if _, err = f.engine.AppendChildren(doc, list.Path{0}, "Apple", "Pear"); err != nil {
		t.Fatalf("AppendChildren() error = %v", err)
	}

	f.apply(t, "Ok##modify list item,,"+doc.ID+",,0,,1,,Banana")

	reloaded, err := f.lists.LoadDocument(doc.ID)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if got := reloaded.Nested[0].Nested[1].Content; got != "Banana" {
		t.Errorf("item content = %q, want %q", got, "Banana")
	}
	// Siblings untouched
	if got := reloaded.Nested[0].Nested[0].Content; got != "Apple" {
		t.Errorf("sibling content = %q, want %q", got, "Apple")
	}
}

func TestDispatcherAddToList(t *testing.T) {
	f := newFixture(t)

	doc, err := f.engine.CreateDocument("Groceries")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if _, err := f.engine.AppendChildren(doc, list.Path{}, "Fruit"); err != nil {
		t.Fatalf("AppendChildren() error = %v", err)
	}

	t.Run("TopLevel", func(t *testing.T) {
		f.apply(t, "Ok##add to list,,"+doc.ID+",,Milk,,Eggs")

		reloaded, err := f.lists.LoadDocument(doc.ID)
		if err != nil {
			t.Fatalf("LoadDocument() error = %v", err)
		}
		if len(reloaded.Nested) != 3 {
			t.Fatalf("root has %d children, want 3", len(reloaded.Nested))
		}
		if reloaded.Nested[1].Content != "Milk" || reloaded.Nested[2].Content != "Eggs" {
			t.Errorf("appended items = %q, %q", reloaded.Nested[1].Content, reloaded.Nested[2].Content)
		}
	})

	t.Run("NestedPath", func(t *testing.T) {
		f.apply(t, "Ok##add to list,,"+doc.ID+",,0,,Apple,,Pear")

		reloaded, err := f.lists.LoadDocument(doc.ID)
		if err != nil {
			t.Fatalf("LoadDocument() error = %v", err)
		}
		fruit := reloaded.Nested[0]
		if len(fruit.Nested) != 2 {
			t.Fatalf("Fruit has %d children, want 2", len(fruit.Nested))
		}
		if fruit.Nested[0].Content != "Apple" || fruit.Nested[1].Content != "Pear" {
			t.Errorf("nested items = %q, %q", fruit.Nested[0].Content, fruit.Nested[1].Content)
		}
		if !fruit.Open {
			t.Error("target node should be forced open after insertion")
		}
	})

	t.Run("NumericLastItemIsKeptAsItem", func(t *testing.T) {
		// The trailing run never consumes the final argument, so a purely
		// numeric single item still lands as an item.
		f.apply(t, "Ok##add to list,,"+doc.ID+",,42")

		reloaded, err := f.lists.LoadDocument(doc.ID)
		if err != nil {
			t.Fatalf("LoadDocument() error = %v", err)
		}
		last := reloaded.Nested[len(reloaded.Nested)-1]
		if last.Content != "42" {
			t.Errorf("last item = %q, want %q", last.Content, "42")
		}
	})
}

func TestDispatcherLoadList(t *testing.T) {
	f := newFixture(t)

	doc, err := f.engine.CreateDocument("Errands")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	f.apply(t, "Ok##load list,,"+doc.ID)
	if f.sess.WorkingListID != doc.ID {
		t.Errorf("WorkingListID = %q, want %q", f.sess.WorkingListID, doc.ID)
	}

	f.apply(t, "Ok##load list,,no-such-id")
	if f.sess.WorkingListID != doc.ID {
		t.Error("loading a missing list must not clobber the working list")
	}
	if len(*f.notices) == 0 {
		t.Error("loading a missing list should notify")
	}
}

func TestDispatcherSwitchView(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "Ok##switch view")
	if f.sess.View != command.ViewList {
		t.Errorf("View = %q, want %q", f.sess.View, command.ViewList)
	}

	f.apply(t, "Ok##switch view")
	if f.sess.View != command.ViewChat {
		t.Errorf("View = %q, want %q", f.sess.View, command.ViewChat)
	}

	f.apply(t, "Ok##switch view,,list")
	f.apply(t, "Ok##switch view,,list")
	if f.sess.View != command.ViewList {
		t.Errorf("explicit View = %q, want %q", f.sess.View, command.ViewList)
	}
}

func TestDispatcherUnknownCommandNotifies(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "Ok##make me a sandwich,,now")

	if len(*f.notices) != 1 {
		t.Fatalf("got %d notices, want 1", len(*f.notices))
	}
	if !strings.Contains((*f.notices)[0], "make me a sandwich") {
		t.Errorf("notice %q does not name the unknown command", (*f.notices)[0])
	}
}

func TestDispatcherContinuesAfterFailure(t *testing.T) {
	f := newFixture(t)

	// First command targets a missing list, second must still run.
	f.apply(t, "Ok##modify list item,,nope,,0,,x##add to note,,still here")

	if got := f.memory.Note(); got != "still here" {
		t.Errorf("Note() = %q, want %q", got, "still here")
	}
	if len(*f.notices) == 0 {
		t.Error("failed command should notify")
	}
}
