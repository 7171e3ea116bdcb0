package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"loqui/list"
)

type outlineEditMode int

const (
	editNone outlineEditMode = iota
	editInsertAfter
	editInsertInto
	editContent
	editTitle
	editNewList
)

// outlineState is the list-view editor state: cursor position over the
// flattened visible rows, the inline edit input, and the pending delete
// confirmation.
type outlineState struct {
	cursor        int
	editMode      outlineEditMode
	editInput     textinput.Model
	confirmDelete bool
}

// outlineRow is one visible line of the outline: a node, its absolute path
// from the document root, and its indent depth relative to the view root.
type outlineRow struct {
	node  *list.Node
	path  list.Path
	depth int
}

// visibleRows flattens the subtree under the view root in render order,
// descending only into open nodes.
func (a *App) visibleRows() []outlineRow {
	doc := a.dataModel.WorkingDoc
	if doc == nil {
		return nil
	}

	viewRoot := a.dataModel.Engine.ViewRoot()
	base, err := list.Resolve(doc, viewRoot)
	if err != nil {
		// View root no longer resolves (e.g. after an external edit);
		// fall back to the document root.
		a.dataModel.Engine.SetViewRoot(list.Path{})
		viewRoot = list.Path{}
		base = doc
	}

	var rows []outlineRow
	var walk func(node *list.Node, path list.Path, depth int)
	walk = func(node *list.Node, path list.Path, depth int) {
		for i, child := range node.Nested {
			childPath := append(path.Clone(), i)
			rows = append(rows, outlineRow{node: child, path: childPath, depth: depth})
			if child.Open {
				walk(child, childPath, depth+1)
			}
		}
	}
	walk(base, viewRoot, 0)
	return rows
}

func (a *App) clampCursor(rows []outlineRow) {
	if a.outline.cursor >= len(rows) {
		a.outline.cursor = len(rows) - 1
	}
	if a.outline.cursor < 0 {
		a.outline.cursor = 0
	}
}

func (a App) updateOutline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.outline.editMode != editNone {
		return a.updateOutlineEdit(msg)
	}

	rows := a.visibleRows()
	a.clampCursor(rows)

	if a.outline.confirmDelete {
		switch msg.String() {
		case "y", "d":
			a.outline.confirmDelete = false
			return a.deleteAtCursor(rows)
		default:
			a.outline.confirmDelete = false
			return a, nil
		}
	}

	switch msg.String() {
	case "tab", "esc":
		a.dataModel.Session.ToggleView("chat")
		return a, nil

	case "j", "down":
		if a.outline.cursor < len(rows)-1 {
			a.outline.cursor++
		}
		return a, nil

	case "k", "up":
		if a.outline.cursor > 0 {
			a.outline.cursor--
		}
		return a, nil

	case "g":
		a.outline.cursor = 0
		return a, nil

	case "G":
		a.outline.cursor = len(rows) - 1
		return a, nil

	case "n":
		return a.startEdit(editNewList, "")

	case "ctrl+l":
		return a, a.dataModel.FetchLists()

	case "t":
		if a.dataModel.WorkingDoc != nil {
			return a.startEdit(editTitle, a.dataModel.WorkingDoc.Content)
		}
		return a, nil

	case "enter":
		if a.dataModel.WorkingDoc == nil {
			return a, nil
		}
		if len(rows) == 0 {
			// Empty document: first item goes under the view root.
			return a.startEdit(editInsertInto, "")
		}
		return a.startEdit(editInsertAfter, "")

	case "a":
		if len(rows) == 0 {
			return a, nil
		}
		return a.startEdit(editInsertInto, "")

	case "e":
		if a.outline.cursor < len(rows) {
			return a.startEdit(editContent, rows[a.outline.cursor].node.Content)
		}
		return a, nil

	case "d":
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		if list.NeedsDeleteConfirmation(a.dataModel.WorkingDoc, rows[a.outline.cursor].path) {
			a.outline.confirmDelete = true
			return a, nil
		}
		return a.deleteAtCursor(rows)

	case "D":
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		doc, err := a.dataModel.Engine.Duplicate(a.dataModel.WorkingDoc, rows[a.outline.cursor].path)
		return a.applyOutlineResult(doc, err)

	case "y":
		if a.outline.cursor < len(rows) {
			a.dataModel.Engine.Copy(rows[a.outline.cursor].path)
			return a.notify("Copied item")
		}
		return a, nil

	case "x":
		if a.outline.cursor < len(rows) {
			a.dataModel.Engine.Cut(rows[a.outline.cursor].path)
			return a.notify("Cut item")
		}
		return a, nil

	case "p":
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		doc, err := a.dataModel.Engine.PasteAfter(a.dataModel.WorkingDoc, rows[a.outline.cursor].path)
		return a.applyOutlineResult(doc, err)

	case "P":
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		doc, err := a.dataModel.Engine.PasteInto(a.dataModel.WorkingDoc, rows[a.outline.cursor].path)
		return a.applyOutlineResult(doc, err)

	case "K":
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		doc, err := a.dataModel.Engine.Move(a.dataModel.WorkingDoc, rows[a.outline.cursor].path, list.Up)
		next, cmd := a.applyOutlineResult(doc, err)
		if err == nil && a.outline.cursor > 0 {
			app := next.(App)
			app.outline.cursor--
			return app, cmd
		}
		return next, cmd

	case "J":
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		doc, err := a.dataModel.Engine.Move(a.dataModel.WorkingDoc, rows[a.outline.cursor].path, list.Down)
		next, cmd := a.applyOutlineResult(doc, err)
		if err == nil && a.outline.cursor < len(rows)-1 {
			app := next.(App)
			app.outline.cursor++
			return app, cmd
		}
		return next, cmd

	case " ":
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		doc, err := a.dataModel.Engine.ToggleOpen(a.dataModel.WorkingDoc, rows[a.outline.cursor].path)
		return a.applyOutlineResult(doc, err)

	case ">":
		if a.outline.cursor < len(rows) {
			a.dataModel.Engine.SetViewRoot(rows[a.outline.cursor].path)
			a.outline.cursor = 0
		}
		return a, nil

	case "<":
		a.dataModel.Engine.SetViewRoot(list.Path{})
		a.outline.cursor = 0
		return a, nil

	case "ctrl+g":
		a.showHelp = true
		return a, nil
	}

	return a, nil
}

func (a App) startEdit(mode outlineEditMode, initial string) (tea.Model, tea.Cmd) {
	a.outline.editMode = mode
	a.outline.editInput.SetValue(initial)
	a.outline.editInput.CursorEnd()
	a.outline.editInput.Focus()
	return a, textinput.Blink
}

func (a App) updateOutlineEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.outline.editMode = editNone
		a.outline.editInput.Blur()
		return a, nil

	case "enter":
		value := strings.TrimSpace(a.outline.editInput.Value())
		mode := a.outline.editMode
		a.outline.editMode = editNone
		a.outline.editInput.Blur()
		if value == "" {
			return a, nil
		}
		return a.commitEdit(mode, value)
	}

	var cmd tea.Cmd
	a.outline.editInput, cmd = a.outline.editInput.Update(msg)
	return a, cmd
}

func (a App) commitEdit(mode outlineEditMode, value string) (tea.Model, tea.Cmd) {
	engine := a.dataModel.Engine
	doc := a.dataModel.WorkingDoc

	switch mode {
	case editNewList:
		newDoc, err := engine.CreateDocument(value)
		if err != nil {
			return a.notify(fmt.Sprintf("Could not create list: %v", err))
		}
		if err := a.dataModel.SetWorkingList(newDoc.ID); err != nil {
			return a.notify(fmt.Sprintf("Could not open list: %v", err))
		}
		a.outline.cursor = 0
		return a, nil

	case editTitle:
		a.dataModel.SetListTitle(value)
		return a, nil
	}

	rows := a.visibleRows()
	a.clampCursor(rows)

	switch mode {
	case editInsertAfter:
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		next, err := engine.InsertAfter(doc, rows[a.outline.cursor].path, value)
		m, cmd := a.applyOutlineResult(next, err)
		if err == nil {
			app := m.(App)
			app.outline.cursor++
			return app, cmd
		}
		return m, cmd

	case editInsertInto:
		target := engine.ViewRoot()
		if len(rows) > 0 && a.outline.cursor < len(rows) {
			target = rows[a.outline.cursor].path
		}
		next, err := engine.InsertInto(doc, target, value)
		return a.applyOutlineResult(next, err)

	case editContent:
		if a.outline.cursor >= len(rows) {
			return a, nil
		}
		next, err := engine.SetContent(doc, rows[a.outline.cursor].path, value)
		return a.applyOutlineResult(next, err)
	}

	return a, nil
}

func (a App) deleteAtCursor(rows []outlineRow) (tea.Model, tea.Cmd) {
	doc, err := a.dataModel.Engine.Delete(a.dataModel.WorkingDoc, rows[a.outline.cursor].path)
	next, cmd := a.applyOutlineResult(doc, err)
	if err == nil {
		app := next.(App)
		app.clampCursor(app.visibleRows())
		return app, cmd
	}
	return next, cmd
}

// applyOutlineResult folds an engine result back into the app: on success
// the returned document becomes the working doc, on failure the error goes
// to the status line.
func (a App) applyOutlineResult(doc *list.Node, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		return a.notify(err.Error())
	}
	a.dataModel.WorkingDoc = doc
	return a, nil
}

func (a App) renderOutline() string {
	if a.dataModel.WorkingDoc == nil {
		empty := lipgloss.JoinVertical(lipgloss.Left,
			TitleStyle.Render("No working list"),
			"",
			DimStyle.Render("Press n to create a list, Ctrl+L to open one, Tab to go back."),
		)
		body := lipgloss.NewStyle().
			Width(a.width).
			Height(a.height-1).
			Align(lipgloss.Center, lipgloss.Center).
			Render(empty)
		return lipgloss.JoinVertical(lipgloss.Left, body, a.renderOutlineFooter())
	}

	rows := a.visibleRows()

	title := a.dataModel.WorkingDoc.Content
	viewRoot := a.dataModel.Engine.ViewRoot()
	if !viewRoot.IsRoot() {
		if node, err := list.Resolve(a.dataModel.WorkingDoc, viewRoot); err == nil {
			title += " › " + node.Content
		}
	}
	header := TitleStyle.Render(title)

	maxLines := a.height - 4
	if maxLines < 1 {
		maxLines = 1
	}

	start := 0
	if len(rows) > maxLines && a.outline.cursor >= maxLines/2 {
		start = a.outline.cursor - maxLines/2
		if start > len(rows)-maxLines {
			start = len(rows) - maxLines
		}
	}

	var lines []string
	if len(rows) == 0 {
		lines = append(lines, DimStyle.Render("  (empty) press Enter to add the first item"))
	}
	for i := start; i < len(rows) && i < start+maxLines; i++ {
		lines = append(lines, a.renderOutlineRow(rows[i], i == a.outline.cursor))
	}

	var prompt string
	switch a.outline.editMode {
	case editInsertAfter:
		prompt = "New item: " + a.outline.editInput.View()
	case editInsertInto:
		prompt = "New child: " + a.outline.editInput.View()
	case editContent:
		prompt = "Edit: " + a.outline.editInput.View()
	case editTitle:
		prompt = "Title: " + a.outline.editInput.View()
	case editNewList:
		prompt = "New list: " + a.outline.editInput.View()
	}

	if a.outline.confirmDelete {
		prompt = DangerStyle.Render("Delete item and everything under it? (y/n)")
	}

	sections := []string{header, strings.Join(lines, "\n")}
	if prompt != "" {
		sections = append(sections, prompt)
	}
	sections = append(sections, a.renderOutlineFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) renderOutlineRow(row outlineRow, selected bool) string {
	indent := strings.Repeat("  ", row.depth)

	marker := "· "
	if len(row.node.Nested) > 0 {
		if row.node.Open {
			marker = "▼ "
		} else {
			marker = "▶ "
		}
	}

	cursor := "  "
	if selected {
		cursor = "❯ "
	}

	content := row.node.Content
	maxContent := a.width - runewidth.StringWidth(indent) - 6
	if maxContent > 0 {
		content = runewidth.Truncate(content, maxContent, "…")
	}

	line := cursor + indent + marker + content
	if selected {
		return SelectedStyle.Render(line)
	}
	return line
}

func (a App) renderOutlineFooter() string {
	if a.status != "" {
		return StatusStyle.Render(a.status)
	}

	footer := FormatFooter(
		"Enter", "Add",
		"a", "Child",
		"e", "Edit",
		"d", "Delete",
		"y/x/p", "Copy/Cut/Paste",
		"Tab", "Chat",
	)

	if _, isCut, ok := a.dataModel.Engine.ClipboardPending(); ok {
		label := "copy pending"
		if isCut {
			label = "cut pending"
		}
		footer += "  " + HighlightStyle.Render("["+label+"]")
	}
	return StatusStyle.Render(footer)
}
