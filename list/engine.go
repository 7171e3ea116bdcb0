package list

import "errors"

// DocumentStore is the persistence boundary the engine writes through.
// It is satisfied by storage.ListStore; the interface lives here so the
// engine does not depend on the storage package.
type DocumentStore interface {
	SaveDocument(doc *Node) error
	LoadDocument(id string) (*Node, error)
}

var (
	// ErrRootOperation is returned by operations that cannot target the
	// document root (delete, duplicate, move, cut).
	ErrRootOperation = errors.New("cannot operate on root")

	// ErrIntoOwnSubtree is returned when a move or cut-paste would place a
	// subtree inside itself.
	ErrIntoOwnSubtree = errors.New("cannot move a subtree into itself")
)

// deleteConfirmThreshold is the content length above which Delete should be
// confirmed externally first.
const deleteConfirmThreshold = 30

// NeedsDeleteConfirmation reports whether deleting the node at p should be
// gated behind a confirmation prompt: the node has children or non-trivial
// content. The engine itself deletes unconditionally once invoked.
func NeedsDeleteConfirmation(doc *Node, p Path) bool {
	node, err := Resolve(doc, p)
	if err != nil {
		return false
	}
	return len(node.Nested) > 0 || len(node.Content) > deleteConfirmThreshold
}

// Engine applies path-addressed structural operations to list documents.
// Every mutating operation works on a full deep copy of the input document
// (callers may hold references to the previous tree), persists the result
// keyed by its id, and returns the new document state.
//
// The engine also owns the clipboard (pending copy/cut) and the view-only
// "current root" pointer used to scope rendering to a subtree.
type Engine struct {
	store     DocumentStore
	clipboard Clipboard
	viewRoot  Path
}

// NewEngine creates an engine persisting through store.
func NewEngine(store DocumentStore) *Engine {
	return &Engine{store: store}
}

// CreateDocument creates and persists a new list document with the given
// title and an empty root.
func (e *Engine) CreateDocument(title string) (*Node, error) {
	doc := NewNode(title)
	if err := e.store.SaveDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load fetches a document by id from the underlying store.
func (e *Engine) Load(id string) (*Node, error) {
	return e.store.LoadDocument(id)
}

// InsertAfter inserts a new node with the given content immediately after
// the node at p, as its sibling. p must not be the root.
func (e *Engine) InsertAfter(doc *Node, p Path, content string) (*Node, error) {
	if p.IsRoot() {
		return nil, ErrRootOperation
	}
	next := doc.Clone()
	parent, err := Resolve(next, p.Parent())
	if err != nil {
		return nil, err
	}
	idx := p.Last()
	if idx < 0 || idx >= len(parent.Nested) {
		return nil, ErrInvalidPath
	}
	parent.Nested = insertAt(parent.Nested, idx+1, NewNode(content))
	return next, e.store.SaveDocument(next)
}

// InsertInto appends a new child with the given content to the node at p
// (which may be the root) and forces the target open so the insertion is
// visible.
func (e *Engine) InsertInto(doc *Node, p Path, content string) (*Node, error) {
	next := doc.Clone()
	target, err := Resolve(next, p)
	if err != nil {
		return nil, err
	}
	target.Nested = append(target.Nested, NewNode(content))
	target.Open = true
	return next, e.store.SaveDocument(next)
}

// AppendChildren appends one or more new child nodes to the node at p,
// one per content string, forcing the target open.
func (e *Engine) AppendChildren(doc *Node, p Path, contents ...string) (*Node, error) {
	next := doc.Clone()
	target, err := Resolve(next, p)
	if err != nil {
		return nil, err
	}
	for _, content := range contents {
		target.Nested = append(target.Nested, NewNode(content))
	}
	target.Open = true
	return next, e.store.SaveDocument(next)
}

// SetContent replaces the content of the node at p.
func (e *Engine) SetContent(doc *Node, p Path, content string) (*Node, error) {
	next := doc.Clone()
	target, err := Resolve(next, p)
	if err != nil {
		return nil, err
	}
	target.Content = content
	return next, e.store.SaveDocument(next)
}

// Delete removes the node at p from its parent. p must not be the root.
// Deletion is unconditional; see NeedsDeleteConfirmation for the gate.
func (e *Engine) Delete(doc *Node, p Path) (*Node, error) {
	if p.IsRoot() {
		return nil, ErrRootOperation
	}
	next := doc.Clone()
	parent, err := Resolve(next, p.Parent())
	if err != nil {
		return nil, err
	}
	idx := p.Last()
	if idx < 0 || idx >= len(parent.Nested) {
		return nil, ErrInvalidPath
	}
	parent.Nested = removeAt(parent.Nested, idx)
	return next, e.store.SaveDocument(next)
}

// Duplicate deep-copies the node at p, assigning fresh ids to the copy and
// all its descendants, and inserts the copy immediately after the original.
func (e *Engine) Duplicate(doc *Node, p Path) (*Node, error) {
	if p.IsRoot() {
		return nil, ErrRootOperation
	}
	next := doc.Clone()
	parent, err := Resolve(next, p.Parent())
	if err != nil {
		return nil, err
	}
	idx := p.Last()
	if idx < 0 || idx >= len(parent.Nested) {
		return nil, ErrInvalidPath
	}
	dup := parent.Nested[idx].CloneFreshIDs()
	parent.Nested = insertAt(parent.Nested, idx+1, dup)
	return next, e.store.SaveDocument(next)
}

// Direction selects a sibling swap for Move.
type Direction int

const (
	Up Direction = iota
	Down
)

// Move swaps the node at p with its immediate sibling in the given
// direction. At the boundary (first child moving up, last child moving
// down) the document is returned unchanged and nothing is persisted.
func (e *Engine) Move(doc *Node, p Path, dir Direction) (*Node, error) {
	if p.IsRoot() {
		return nil, ErrRootOperation
	}
	next := doc.Clone()
	parent, err := Resolve(next, p.Parent())
	if err != nil {
		return nil, err
	}
	idx := p.Last()
	if idx < 0 || idx >= len(parent.Nested) {
		return nil, ErrInvalidPath
	}

	other := idx - 1
	if dir == Down {
		other = idx + 1
	}
	if other < 0 || other >= len(parent.Nested) {
		return doc, nil // boundary no-op
	}

	parent.Nested[idx], parent.Nested[other] = parent.Nested[other], parent.Nested[idx]
	return next, e.store.SaveDocument(next)
}

// MoveTo relocates the node at source to the position target within the
// document. The root cannot be moved, and a subtree cannot be moved into
// itself. Within one parent the node is removed and reinserted at the raw
// target index; across parents the insertion index is likewise the raw
// target index, not adjusted for the removal.
func (e *Engine) MoveTo(doc *Node, source, target Path) (*Node, error) {
	if source.IsRoot() {
		return nil, ErrRootOperation
	}
	if target.IsDescendantOf(source) {
		return nil, ErrIntoOwnSubtree
	}

	next := doc.Clone()

	// Resolve both parents by pointer before splicing so index shifts in
	// one slice cannot invalidate the other lookup.
	sourceParent, err := Resolve(next, source.Parent())
	if err != nil {
		return nil, err
	}
	targetParent, err := Resolve(next, target.Parent())
	if err != nil {
		return nil, err
	}

	srcIdx := source.Last()
	if srcIdx < 0 || srcIdx >= len(sourceParent.Nested) {
		return nil, ErrInvalidPath
	}
	tgtIdx := 0
	if !target.IsRoot() {
		tgtIdx = target.Last()
	}

	node := sourceParent.Nested[srcIdx]
	sourceParent.Nested = removeAt(sourceParent.Nested, srcIdx)

	if tgtIdx > len(targetParent.Nested) {
		tgtIdx = len(targetParent.Nested)
	}
	targetParent.Nested = insertAt(targetParent.Nested, tgtIdx, node)
	return next, e.store.SaveDocument(next)
}

// Copy records p as the pending copy source (clearing any pending cut).
func (e *Engine) Copy(p Path) { e.clipboard.SetCopy(p) }

// Cut records p as the pending cut source (clearing any pending copy).
func (e *Engine) Cut(p Path) { e.clipboard.SetCut(p) }

// ClipboardPending exposes the pending clipboard state for rendering.
func (e *Engine) ClipboardPending() (Path, bool, bool) {
	return e.clipboard.Pending()
}

// PasteAfter inserts the pending copy or cut source as a sibling
// immediately after the node at target. Requires a non-empty target path
// and a pending clipboard entry. For a cut, pasting into the source's own
// subtree is rejected and the clipboard is left untouched. A completed cut
// clears the clipboard; a copy stays pending for repeated pastes.
func (e *Engine) PasteAfter(doc *Node, target Path) (*Node, error) {
	source, isCut, ok := e.clipboard.Pending()
	if !ok {
		return nil, ErrClipboardEmpty
	}
	if target.IsRoot() {
		return nil, ErrRootOperation
	}
	if isCut && (target.Equal(source) || target.IsDescendantOf(source)) {
		return nil, ErrIntoOwnSubtree
	}

	next := doc.Clone()
	sourceNode, err := Resolve(next, source)
	if err != nil {
		return nil, err
	}
	targetParent, err := Resolve(next, target.Parent())
	if err != nil {
		return nil, err
	}
	tgtIdx := target.Last()
	if tgtIdx < 0 || tgtIdx >= len(targetParent.Nested) {
		return nil, ErrInvalidPath
	}

	insertIdx := tgtIdx + 1
	if isCut {
		sourceParent, err := Resolve(next, source.Parent())
		if err != nil {
			return nil, err
		}
		srcIdx := source.Last()
		if srcIdx < 0 || srcIdx >= len(sourceParent.Nested) {
			return nil, ErrInvalidPath
		}
		sourceParent.Nested = removeAt(sourceParent.Nested, srcIdx)

		// Removal from the same parent before the target shifts the
		// insertion point left by one.
		if sourceParent == targetParent && srcIdx < tgtIdx {
			insertIdx--
		}
		targetParent.Nested = insertAt(targetParent.Nested, insertIdx, sourceNode)
		e.clipboard.Clear()
	} else {
		targetParent.Nested = insertAt(targetParent.Nested, insertIdx, sourceNode.CloneFreshIDs())
	}

	return next, e.store.SaveDocument(next)
}

// PasteInto inserts the pending copy or cut source as the last child of the
// node at target, forcing the target open. For a cut, the target must not
// equal or descend from the source.
func (e *Engine) PasteInto(doc *Node, target Path) (*Node, error) {
	source, isCut, ok := e.clipboard.Pending()
	if !ok {
		return nil, ErrClipboardEmpty
	}
	if isCut && (target.Equal(source) || target.IsDescendantOf(source)) {
		return nil, ErrIntoOwnSubtree
	}

	next := doc.Clone()
	sourceNode, err := Resolve(next, source)
	if err != nil {
		return nil, err
	}
	targetNode, err := Resolve(next, target)
	if err != nil {
		return nil, err
	}

	if isCut {
		sourceParent, err := Resolve(next, source.Parent())
		if err != nil {
			return nil, err
		}
		srcIdx := source.Last()
		if srcIdx < 0 || srcIdx >= len(sourceParent.Nested) {
			return nil, ErrInvalidPath
		}
		sourceParent.Nested = removeAt(sourceParent.Nested, srcIdx)
		targetNode.Nested = append(targetNode.Nested, sourceNode)
		e.clipboard.Clear()
	} else {
		targetNode.Nested = append(targetNode.Nested, sourceNode.CloneFreshIDs())
	}
	targetNode.Open = true

	return next, e.store.SaveDocument(next)
}

// ToggleOpen flips the expanded state of the node at p. UI state, but still
// persisted with the document.
func (e *Engine) ToggleOpen(doc *Node, p Path) (*Node, error) {
	next := doc.Clone()
	target, err := Resolve(next, p)
	if err != nil {
		return nil, err
	}
	target.Open = !target.Open
	return next, e.store.SaveDocument(next)
}

// SetViewRoot establishes the view-only current-root pointer used to scope
// rendering to a subtree. It does not touch the document.
func (e *Engine) SetViewRoot(p Path) { e.viewRoot = p.Clone() }

// ViewRoot returns the current view root path (empty = document root).
func (e *Engine) ViewRoot() Path { return e.viewRoot.Clone() }

func insertAt(nodes []*Node, idx int, node *Node) []*Node {
	nodes = append(nodes, nil)
	copy(nodes[idx+1:], nodes[idx:])
	nodes[idx] = node
	return nodes
}

func removeAt(nodes []*Node, idx int) []*Node {
	return append(nodes[:idx], nodes[idx+1:]...)
}
