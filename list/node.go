// Package list implements the nested-list engine: a tree of nodes addressed
// by integer-index paths, with structural operations (insert, move, duplicate,
// cut/copy/paste) that always produce a fresh document state before persisting.
package list

import (
	"github.com/google/uuid"
)

// Node is one entry in a nested list. A list document is simply the root
// Node; its Content acts as the list title. Nested order is significant:
// it defines both display order and path addressing.
//
// Open is not purely cosmetic - insert operations force it true on the
// target so inserted children become visible.
type Node struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Open    bool    `json:"isOpen"`
	Nested  []*Node `json:"nested"`
}

// NewNode creates a node with a fresh id and no children. New nodes start
// open so that anything inserted under them is visible.
func NewNode(content string) *Node {
	return &Node{
		ID:      uuid.New().String(),
		Content: content,
		Open:    true,
		Nested:  []*Node{},
	}
}

// Clone deep-copies the subtree rooted at n. The copy shares no structure
// with the original.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:      n.ID,
		Content: n.Content,
		Open:    n.Open,
		Nested:  make([]*Node, 0, len(n.Nested)),
	}
	for _, child := range n.Nested {
		c.Nested = append(c.Nested, child.Clone())
	}
	return c
}

// CloneFreshIDs deep-copies the subtree rooted at n, assigning a new id to
// the copy and every descendant. Used by duplicate and copy-paste so the
// result never shares ids with the original.
func (n *Node) CloneFreshIDs() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:      uuid.New().String(),
		Content: n.Content,
		Open:    n.Open,
		Nested:  make([]*Node, 0, len(n.Nested)),
	}
	for _, child := range n.Nested {
		c.Nested = append(c.Nested, child.CloneFreshIDs())
	}
	return c
}

// Normalize ensures every Nested slice in the subtree is non-nil so the
// document marshals with "nested": [] rather than null. Documents written
// by other clients may omit the field entirely.
func (n *Node) Normalize() {
	if n == nil {
		return
	}
	if n.Nested == nil {
		n.Nested = []*Node{}
	}
	for _, child := range n.Nested {
		child.Normalize()
	}
}

// Walk visits n and every descendant in depth-first order. It stops early
// if fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Nested {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two subtrees, ignoring ids.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Content != b.Content || a.Open != b.Open || len(a.Nested) != len(b.Nested) {
		return false
	}
	for i := range a.Nested {
		if !Equal(a.Nested[i], b.Nested[i]) {
			return false
		}
	}
	return true
}
