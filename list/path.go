package list

import (
	"errors"
	"strconv"
	"strings"
)

// Path addresses a node as the sequence of child indices from the document
// root. The empty path is the root itself. Paths are unstable across
// structural mutation: any insert, delete or move before a node in traversal
// order invalidates previously computed paths, so callers must re-resolve
// rather than hold a Path across mutations.
type Path []int

// ErrInvalidPath is returned when a path cannot be resolved against a
// document (index out of range at any level).
var ErrInvalidPath = errors.New("invalid path")

// IsRoot reports whether p addresses the document root.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Parent returns the path of the addressed node's parent. Calling Parent on
// the root path returns the root path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return append(Path{}, p[:len(p)-1]...)
}

// Last returns the final index of the path, the node's position within its
// parent. Undefined for the root path; callers check IsRoot first.
func (p Path) Last() int {
	return p[len(p)-1]
}

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	return append(Path{}, p...)
}

// Equal reports whether p and q address the same position.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// IsDescendantOf reports whether p addresses a node strictly inside the
// subtree rooted at q.
func (p Path) IsDescendantOf(q Path) bool {
	if len(p) <= len(q) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// String renders the path as dot-separated indices ("" for the root).
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// ParsePath parses a sequence of decimal index strings into a Path.
// Negative indices and non-numeric segments are rejected.
func ParsePath(segments []string) (Path, error) {
	p := make(Path, 0, len(segments))
	for _, seg := range segments {
		idx, err := strconv.Atoi(strings.TrimSpace(seg))
		if err != nil || idx < 0 {
			return nil, ErrInvalidPath
		}
		p = append(p, idx)
	}
	return p, nil
}

// Resolve walks from root along p and returns the addressed node.
// It is a pure lookup shared by every path-addressed operation: it fails the
// moment an index is out of bounds and never mutates the tree.
func Resolve(root *Node, p Path) (*Node, error) {
	if root == nil {
		return nil, ErrInvalidPath
	}
	current := root
	for _, idx := range p {
		if idx < 0 || idx >= len(current.Nested) {
			return nil, ErrInvalidPath
		}
		current = current.Nested[idx]
	}
	return current, nil
}
