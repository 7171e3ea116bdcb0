// Package command implements the response-command protocol: parsing raw
// model output into a user-facing message plus structured commands, and
// dispatching those commands against memory, note, list and view state.
package command

// Wire names of the command vocabulary. These are a contract between the
// prompt and the dispatcher; renaming one or reordering its arguments is a
// breaking change to the prompt, not just to this code.
const (
	NameAddMemory       = "add to long term memory"
	NameOverwriteMemory = "overwrite long term memory"
	NameClearMemory     = "clear long term memory"
	NameAddNote         = "add to note"
	NameCreateList      = "create list"
	NameLoadList        = "load list"
	NameModifyListItem  = "modify list item"
	NameAddToList       = "add to list"
	NameSwitchView      = "switch view"
)

// Kind is the closed set of command kinds. Dispatching switches exhaustively
// over Kind so adding a command is a compile-checked extension rather than a
// silently ignored string.
type Kind int

const (
	KindUnknown Kind = iota
	KindAddMemory
	KindOverwriteMemory
	KindClearMemory
	KindAddNote
	KindCreateList
	KindLoadList
	KindModifyListItem
	KindAddToList
	KindSwitchView
)

// KindOf maps a wire name to its Kind. Matching is exact and case-sensitive;
// anything else is KindUnknown and gets ignored by the dispatcher.
func KindOf(name string) Kind {
	switch name {
	case NameAddMemory:
		return KindAddMemory
	case NameOverwriteMemory:
		return KindOverwriteMemory
	case NameClearMemory:
		return KindClearMemory
	case NameAddNote:
		return KindAddNote
	case NameCreateList:
		return KindCreateList
	case NameLoadList:
		return KindLoadList
	case NameModifyListItem:
		return KindModifyListItem
	case NameAddToList:
		return KindAddToList
	case NameSwitchView:
		return KindSwitchView
	default:
		return KindUnknown
	}
}

// Command is one parsed command: the wire name and its arguments in order.
// Commands are transient, one batch per model response.
type Command struct {
	Name string
	Args []string
}

// Kind returns the command's resolved kind.
func (c Command) Kind() Kind { return KindOf(c.Name) }
