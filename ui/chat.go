package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodel "loqui/model"
)

func (a App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := a.textarea.Value()
		if strings.TrimSpace(text) == "" {
			return a, nil
		}
		a.textarea.Reset()
		idx := len(a.dataModel.Messages)
		cmd := a.dataModel.SendMessage(text)
		a.updateViewportContent(true)
		return a, tea.Batch(cmd, a.renderMarkdownAsync(idx, strings.TrimSpace(text)))

	case "tab":
		a.dataModel.Session.ToggleView("")
		return a, nil

	case "ctrl+n":
		a.dataModel.FlushPendingSaves()
		a.dataModel.NewChat()
		a.rendered = make(map[int]string)
		a.updateViewportContent(true)
		return a, nil

	case "ctrl+o":
		return a, a.dataModel.FetchChats()

	case "ctrl+l":
		return a, a.dataModel.FetchLists()

	case "alt+m":
		return a, a.dataModel.FetchModels()

	case "alt+y":
		// Copy last assistant message
		for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
			if a.dataModel.Messages[i].Role == appmodel.RoleAssistant {
				clipboard.WriteAll(a.dataModel.Messages[i].Content)
				return a.notify("Copied last reply")
			}
		}
		return a, nil

	case "alt+c":
		// Copy all messages
		var allText strings.Builder
		for _, msg := range a.dataModel.Messages {
			role := "You"
			if msg.Role == appmodel.RoleAssistant {
				role = "Assistant"
			}
			allText.WriteString(fmt.Sprintf("%s: %s\n\n", role, msg.Content))
		}
		clipboard.WriteAll(allText.String())
		return a.notify("Copied conversation")

	case "alt+r":
		a.dataModel.ReplayConversation()
		return a.notify("Replaying conversation")

	case "alt+p":
		if a.dataModel.Speech != nil {
			a.dataModel.Speech.Pause()
		}
		return a, nil

	case "alt+u":
		if a.dataModel.Speech != nil {
			a.dataModel.Speech.Resume()
		}
		return a, nil

	case "alt+s":
		if a.dataModel.Speech != nil {
			a.dataModel.Speech.Cancel()
		}
		return a, nil

	case "alt+j", "alt+down":
		a.viewport.HalfPageDown()
		return a, nil

	case "alt+k", "alt+up":
		a.viewport.HalfPageUp()
		return a, nil

	case "ctrl+g":
		a.showHelp = true
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a *App) updateViewportContent(gotoBottom bool) {
	if len(a.dataModel.Messages) == 0 {
		a.viewport.SetContent("No messages yet. Start chatting!")
		return
	}

	var content strings.Builder

	for i, msg := range a.dataModel.Messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		var roleStyle = DimStyle
		var roleName string
		switch msg.Role {
		case appmodel.RoleUser:
			roleStyle = UserStyle
			roleName = "You"
		case appmodel.RoleAssistant:
			roleStyle = AssistantStyle
			roleName = "Assistant"
		default:
			roleName = "System"
		}

		role := roleStyle.Render(roleName)

		renderedContent := msg.Content
		if r, ok := a.rendered[i]; ok {
			renderedContent = r
		}

		if msg.Role == appmodel.RoleUser {
			content.WriteString(formatUserMessage(timestamp, role, renderedContent))
			continue
		}

		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, renderedContent))
	}

	if a.dataModel.Loading {
		content.WriteString(fmt.Sprintf("%s %s\n\n", a.loadingSpinner.View(), DimStyle.Render("Waiting for response...")))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

func (a App) renderChat() string {
	title := "New Chat"
	if a.dataModel.CurrentChat != nil && a.dataModel.CurrentChat.Title != "" {
		title = a.dataModel.CurrentChat.Title
	}

	header := TitleStyle.Render(title)
	if a.dataModel.Session.WorkingListID != "" && a.dataModel.WorkingDoc != nil {
		header += DimStyle.Render(fmt.Sprintf("  [list: %s]", a.dataModel.WorkingDoc.Content))
	}
	header += "  " + DimStyle.Render(a.dataModel.Provider.GetDisplayName()+" / "+a.dataModel.Provider.GetModel())

	status := a.status
	if status == "" {
		status = FormatFooter(
			"Enter", "Send",
			"Tab", "List view",
			"^N", "New chat",
			"^O", "Chats",
			"^L", "Lists",
			"^G", "Help",
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		a.viewport.View(),
		a.textarea.View(),
		StatusStyle.Render(status),
	)
}

func (a App) renderHelp() string {
	help := `
  Chat view
    Enter         Send message (Alt+Enter for newline)
    Tab           Switch to list view
    Ctrl+N        New chat
    Ctrl+O        Open chat selector
    Ctrl+L        Open list selector
    Alt+M         Select model
    Alt+Y         Copy last reply
    Alt+C         Copy whole conversation
    Alt+R         Replay conversation aloud
    Alt+P/U/S     Pause / resume / stop speech
    Alt+J/K       Scroll history

  List view
    j/k           Move cursor
    Enter         Insert item after cursor
    a             Add child item
    e             Edit item
    t             Edit list title
    d             Delete item
    D             Duplicate item
    y / x         Copy / cut item
    p / P         Paste after / paste into
    J / K         Move item down / up
    Space         Fold or unfold
    > / <         Zoom in / zoom out
    Tab           Back to chat view

  Ctrl+C quits. Press any key to close this help.
`
	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(help)
}
