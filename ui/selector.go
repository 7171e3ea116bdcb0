package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"loqui/command"
	"loqui/storage"
)

type selectorKind int

const (
	selectorChats selectorKind = iota
	selectorLists
	selectorModels
)

type selectorItem struct {
	id     string
	label  string
	detail string
}

// selectorState is the overlay used to pick a chat, a list or a model. One
// shared implementation; only the Enter action differs per kind.
type selectorState struct {
	kind        selectorKind
	title       string
	items       []selectorItem
	filtered    []selectorItem
	filterInput textinput.Model
	filtering   bool
	selected    int
}

func newSelectorState(kind selectorKind, title string, items []selectorItem) *selectorState {
	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 64

	return &selectorState{
		kind:        kind,
		title:       title,
		items:       items,
		filterInput: filterInput,
	}
}

func (s *selectorState) list() []selectorItem {
	if s.filtering && s.filterInput.Value() != "" {
		return s.filtered
	}
	return s.items
}

func (s *selectorState) applyFilter() {
	filterValue := s.filterInput.Value()
	if filterValue == "" {
		s.filtered = nil
		return
	}

	targets := make([]string, len(s.items))
	for i, item := range s.items {
		targets[i] = item.label
	}

	matches := fuzzy.Find(filterValue, targets)
	s.filtered = make([]selectorItem, len(matches))
	for i, match := range matches {
		s.filtered[i] = s.items[match.Index]
	}

	if s.selected >= len(s.filtered) && len(s.filtered) > 0 {
		s.selected = len(s.filtered) - 1
	}
}

func (a *App) openChatSelector(index []storage.ChatIndexEntry) {
	items := make([]selectorItem, len(index))
	for i, entry := range index {
		items[i] = selectorItem{
			id:     entry.ID,
			label:  entry.Title,
			detail: time.UnixMilli(entry.Timestamp).Format("Jan 2 15:04"),
		}
	}
	a.selector = newSelectorState(selectorChats, "Chats", items)
}

func (a *App) openListSelector(index []storage.ListIndexEntry) {
	items := make([]selectorItem, len(index))
	for i, entry := range index {
		items[i] = selectorItem{
			id:     entry.ID,
			label:  entry.Content,
			detail: time.UnixMilli(entry.Timestamp).Format("Jan 2 15:04"),
		}
	}
	a.selector = newSelectorState(selectorLists, "Lists", items)
}

func (a *App) openModelSelector(models []string) {
	items := make([]selectorItem, len(models))
	for i, name := range models {
		items[i] = selectorItem{id: name, label: name}
	}
	a.selector = newSelectorState(selectorModels, "Models", items)
}

func (a App) updateSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := a.selector

	if s.filtering {
		switch msg.String() {
		case "esc":
			s.filtering = false
			s.filterInput.Blur()
			s.filterInput.SetValue("")
			s.filtered = nil
			return a, nil
		case "enter":
			s.filtering = false
			s.filterInput.Blur()
			return a, nil
		case "alt+j", "down":
			if s.selected < len(s.list())-1 {
				s.selected++
			}
			return a, nil
		case "alt+k", "up":
			if s.selected > 0 {
				s.selected--
			}
			return a, nil
		}

		var cmd tea.Cmd
		s.filterInput, cmd = s.filterInput.Update(msg)
		s.applyFilter()
		return a, cmd
	}

	switch msg.String() {
	case "esc", "q":
		a.selector = nil
		return a, nil

	case "/":
		s.filtering = true
		s.filterInput.SetValue("")
		s.filterInput.Focus()
		return a, textinput.Blink

	case "j", "down":
		if s.selected < len(s.list())-1 {
			s.selected++
		}
		return a, nil

	case "k", "up":
		if s.selected > 0 {
			s.selected--
		}
		return a, nil

	case "ctrl+d":
		// Delete the highlighted chat or list
		items := s.list()
		if s.selected >= len(items) {
			return a, nil
		}
		switch s.kind {
		case selectorChats:
			if err := a.dataModel.DeleteChat(items[s.selected].id); err != nil {
				return a.notify(fmt.Sprintf("Could not delete chat: %v", err))
			}
			a.selector = nil
			a.rendered = make(map[int]string)
			a.updateViewportContent(true)
			return a, a.dataModel.FetchChats()
		case selectorLists:
			if err := a.dataModel.Lists.DeleteDocument(items[s.selected].id); err != nil {
				return a.notify(fmt.Sprintf("Could not delete list: %v", err))
			}
			a.dataModel.RefreshWorkingDoc()
			a.selector = nil
			return a, a.dataModel.FetchLists()
		}
		return a, nil

	case "enter":
		items := s.list()
		if s.selected >= len(items) {
			return a, nil
		}
		return a.selectItem(items[s.selected])
	}

	return a, nil
}

func (a App) selectItem(item selectorItem) (tea.Model, tea.Cmd) {
	kind := a.selector.kind
	a.selector = nil

	switch kind {
	case selectorChats:
		a.dataModel.FlushPendingSaves()
		if err := a.dataModel.SwitchChat(item.id); err != nil {
			return a.notify(fmt.Sprintf("Could not open chat: %v", err))
		}
		a.rendered = make(map[int]string)
		cmds := a.rerenderAll()
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case selectorLists:
		if err := a.dataModel.SetWorkingList(item.id); err != nil {
			return a.notify(fmt.Sprintf("Could not open list: %v", err))
		}
		a.dataModel.Session.ToggleView(command.ViewList)
		a.outline.cursor = 0
		return a, nil

	case selectorModels:
		a.dataModel.Provider.SetModel(item.id)
		return a.notify("Model: " + item.id)
	}

	return a, nil
}

func (a App) renderSelector() string {
	s := a.selector

	modalWidth := a.width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	modalHeight := a.height - 6

	// Title section - manually centered using runewidth for accurate width
	titleVisualWidth := runewidth.StringWidth(s.title)
	leftPad := (modalWidth - titleVisualWidth) / 2
	if leftPad < 0 {
		leftPad = 0
	}
	titleSection := TitleStyle.Render(strings.Repeat(" ", leftPad) + s.title)

	var header string
	if s.filtering {
		header = s.filterInput.View()
	} else {
		displayList := s.list()
		if len(s.items) == len(displayList) {
			header = fmt.Sprintf("%d entries", len(s.items))
		} else {
			header = fmt.Sprintf("%d of %d entries", len(displayList), len(s.items))
		}
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	displayList := s.list()

	var lines []string
	maxLines := modalHeight - 8

	if len(displayList) == 0 {
		emptyMsg := "Nothing here yet"
		if s.filtering {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(displayList)

		if len(displayList) > maxLines {
			if s.selected < maxLines/2 {
				endIdx = maxLines
			} else if s.selected >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = s.selected - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			item := displayList[i]

			indicator := "  "
			if i == s.selected {
				indicator = "▶ "
			}

			label := item.label
			maxLabelWidth := modalWidth - len(indicator) - runewidth.StringWidth(item.detail) - 4
			if maxLabelWidth > 0 {
				label = runewidth.Truncate(label, maxLabelWidth, "...")
			}

			spacing := modalWidth - len(indicator) - runewidth.StringWidth(label) - runewidth.StringWidth(item.detail) - 4
			if spacing < 1 {
				spacing = 1
			}

			line := indicator + label + strings.Repeat(" ", spacing) + item.detail

			lineStyle := lipgloss.NewStyle()
			if i == s.selected {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			}

			lines = append(lines, lipgloss.NewStyle().
				Width(modalWidth).
				Render(lineStyle.Render(line)))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	lines = append([]string{emptyLine}, lines...)
	lines = append(lines, emptyLine)

	var footerText string
	if s.filtering {
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Select", "Esc", "Cancel")
	} else if s.kind == selectorModels {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Select", "Esc", "Close")
	} else {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Select", "^D", "Delete", "Esc", "Close")
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := []string{titleSection, headerSection}
	sections = append(sections, lines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
