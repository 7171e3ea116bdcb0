package command

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"loqui/list"
	"loqui/storage"
)

// View modes targeted by the switch view command.
const (
	ViewChat = "chat"
	ViewList = "list"
)

// Session is the mutable session context the dispatcher acts on: the
// working list reference included in model context and the active view.
// It is the single source of truth, passed explicitly to Apply rather than
// duplicated across stores.
type Session struct {
	WorkingListID string
	View          string
}

// ToggleView switches between the two views, or to an explicit one when the
// argument is exactly "list" or "chat".
func (s *Session) ToggleView(arg string) {
	switch arg {
	case ViewList, ViewChat:
		s.View = arg
	default:
		if s.View == ViewList {
			s.View = ViewChat
		} else {
			s.View = ViewList
		}
	}
}

// Notifier is the dispatcher's side channel for non-fatal feedback
// (unrecognized commands, swallowed errors). Typically spoken or logged.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Dispatcher applies parsed commands to persisted state. It never mutates
// storage directly: memory and note operations go through the memory store,
// list operations through the list engine.
//
// No command failure is fatal; every handler catches its own errors and
// reports through the notifier so one malformed command cannot abort the
// rest of the batch.
type Dispatcher struct {
	memory *storage.MemoryStore
	lists  *storage.ListStore
	engine *list.Engine
	notify Notifier
	log    *log.Logger
}

// NewDispatcher wires a dispatcher. notify may be nil to drop feedback;
// logger may be nil to disable logging.
func NewDispatcher(memory *storage.MemoryStore, lists *storage.ListStore, engine *list.Engine, notify Notifier, logger *log.Logger) *Dispatcher {
	return &Dispatcher{memory: memory, lists: lists, engine: engine, notify: notify, log: logger}
}

func (d *Dispatcher) notifyf(format string, args ...interface{}) {
	if d.notify != nil {
		d.notify.Notify(fmt.Sprintf(format, args...))
	}
	if d.log != nil {
		d.log.Printf("[Dispatcher] "+format, args...)
	}
}

// ApplyAll applies each command in order against the session. Failures are
// reported through the notifier and do not stop later commands.
func (d *Dispatcher) ApplyAll(sess *Session, cmds []Command) {
	for _, cmd := range cmds {
		d.Apply(sess, cmd)
	}
}

// Apply applies exactly one command's side effect.
func (d *Dispatcher) Apply(sess *Session, cmd Command) {
	switch cmd.Kind() {
	case KindAddMemory:
		if len(cmd.Args) == 0 {
			return
		}
		if err := d.memory.AppendMemory(strings.Join(cmd.Args, "\n")); err != nil {
			d.notifyf("could not update memory: %v", err)
		}

	case KindOverwriteMemory:
		text := ""
		if len(cmd.Args) > 0 {
			text = strings.Join(cmd.Args, "\n")
		}
		if err := d.memory.OverwriteMemory(text); err != nil {
			d.notifyf("could not overwrite memory: %v", err)
		}

	case KindClearMemory:
		if err := d.memory.ClearMemory(); err != nil {
			d.notifyf("could not clear memory: %v", err)
		}

	case KindAddNote:
		if len(cmd.Args) == 0 {
			return
		}
		if err := d.memory.AppendNote(strings.Join(cmd.Args, "\n\n")); err != nil {
			d.notifyf("could not update note: %v", err)
		}

	case KindCreateList:
		title := ""
		if len(cmd.Args) > 0 {
			title = cmd.Args[0]
		}
		doc, err := d.engine.CreateDocument(title)
		if err != nil {
			d.notifyf("could not create list: %v", err)
			return
		}
		sess.WorkingListID = doc.ID

	case KindLoadList:
		if len(cmd.Args) == 0 {
			return
		}
		id := cmd.Args[0]
		if _, err := d.lists.LoadDocument(id); err != nil {
			d.notifyf("list %s not found", id)
			return
		}
		sess.WorkingListID = id

	case KindModifyListItem:
		d.modifyListItem(cmd.Args)

	case KindAddToList:
		d.addToList(cmd.Args)

	case KindSwitchView:
		arg := ""
		if len(cmd.Args) > 0 {
			arg = cmd.Args[0]
		}
		sess.ToggleView(arg)

	case KindUnknown:
		d.notifyf("unrecognized command: %q", cmd.Name)
	}
}

// modifyListItem handles args of the shape [listId, pathSegment..., newContent]:
// the first argument is the list id, the last is the new content, everything
// between is the node path.
func (d *Dispatcher) modifyListItem(args []string) {
	if len(args) < 2 {
		return
	}
	id := args[0]
	content := args[len(args)-1]

	path, err := list.ParsePath(args[1 : len(args)-1])
	if err != nil {
		d.notifyf("invalid list path")
		return
	}

	doc, err := d.lists.LoadDocument(id)
	if err != nil {
		d.notifyf("list %s not found", id)
		return
	}
	if _, err := d.engine.SetContent(doc, path, content); err != nil {
		d.notifyf("could not modify list item: %v", err)
	}
}

// addToList handles args of the shape [listId, pathSegment..., item...]:
// after the list id, the longest run of numeric arguments is the target
// path and the remaining arguments become new child items. An item that is
// itself purely numeric cannot be distinguished from a path segment; that
// is a limitation of the wire format, not of this parser.
func (d *Dispatcher) addToList(args []string) {
	if len(args) < 2 {
		return
	}
	id := args[0]
	rest := args[1:]

	split := 0
	for split < len(rest)-1 {
		if _, err := strconv.Atoi(strings.TrimSpace(rest[split])); err != nil {
			break
		}
		split++
	}
	path, err := list.ParsePath(rest[:split])
	if err != nil {
		d.notifyf("invalid list path")
		return
	}
	items := rest[split:]
	if len(items) == 0 {
		return
	}

	doc, err := d.lists.LoadDocument(id)
	if err != nil {
		d.notifyf("list %s not found", id)
		return
	}
	if _, err := d.engine.AppendChildren(doc, path, items...); err != nil {
		d.notifyf("could not add to list: %v", err)
	}
}
