package list

import "errors"

// ErrClipboardEmpty is returned by paste operations when neither a copy nor
// a cut is pending.
var ErrClipboardEmpty = errors.New("clipboard empty")

// Clipboard holds the engine's pending copy-or-cut source path. At most one
// of the two may be set at a time: recording one clears the other.
type Clipboard struct {
	copyPath Path
	cutPath  Path
}

// SetCopy records p as the pending copy source, clearing any pending cut.
func (c *Clipboard) SetCopy(p Path) {
	c.copyPath = p.Clone()
	c.cutPath = nil
}

// SetCut records p as the pending cut source, clearing any pending copy.
func (c *Clipboard) SetCut(p Path) {
	c.cutPath = p.Clone()
	c.copyPath = nil
}

// Clear drops any pending copy or cut.
func (c *Clipboard) Clear() {
	c.copyPath = nil
	c.cutPath = nil
}

// Pending returns the pending source path and whether it is a cut.
// ok is false when the clipboard is empty.
func (c *Clipboard) Pending() (p Path, isCut, ok bool) {
	if c.cutPath != nil {
		return c.cutPath.Clone(), true, true
	}
	if c.copyPath != nil {
		return c.copyPath.Clone(), false, true
	}
	return nil, false, false
}
