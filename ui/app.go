package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loqui/command"
	"loqui/config"
	appmodel "loqui/model"
)

// App is the top-level bubbletea model. It renders the two views (chat and
// outline) plus the selector overlay, and routes every message through the
// core data model.
type App struct {
	dataModel *appmodel.Model

	// Chat view components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	loadingSpinner spinner.Model

	// Rendered markdown per message index; invalidated on resize.
	rendered map[int]string

	// Outline editor state
	outline outlineState

	// Selector overlay, nil when closed
	selector *selectorState

	showHelp bool

	// Transient status line notice
	status    string
	statusSeq int
}

func NewApp(cfg *config.Config, dataModel *appmodel.Model) App {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline; plain Enter sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	editInput := textinput.New()
	editInput.Prompt = "> "
	editInput.CharLimit = 0

	return App{
		dataModel:      dataModel,
		viewport:       vp,
		textarea:       ta,
		loadingSpinner: sp,
		rendered:       make(map[int]string),
		outline: outlineState{
			editInput: editInput,
		},
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.loadingSpinner.Tick,
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.textarea.SetWidth(msg.Width - 4)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - a.textarea.Height() - 4
		a.ready = true
		// Cached renders are width-dependent
		a.rendered = make(map[int]string)
		cmds := a.rerenderAll()
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.dataModel.Loading {
			a.updateViewportContent(false)
		}
		return a, cmd

	case appmodel.ResponseMsg:
		before := len(a.dataModel.Messages)
		cmd := a.dataModel.HandleResponse(msg)
		cmds := []tea.Cmd{cmd}
		for i := before; i < len(a.dataModel.Messages); i++ {
			cmds = append(cmds, a.renderMarkdownAsync(i, a.dataModel.Messages[i].Content))
		}
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case appmodel.IdleMsg:
		before := len(a.dataModel.Messages)
		cmd := a.dataModel.HandleIdle(msg)
		cmds := []tea.Cmd{cmd}
		for i := before; i < len(a.dataModel.Messages); i++ {
			cmds = append(cmds, a.renderMarkdownAsync(i, a.dataModel.Messages[i].Content))
		}
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case markdownRenderedMsg:
		a.rendered[msg.MessageIndex] = msg.Rendered
		a.updateViewportContent(true)
		return a, nil

	case appmodel.ChatsListMsg:
		if msg.Err != nil {
			return a.notify(fmt.Sprintf("Could not load chats: %v", msg.Err))
		}
		a.openChatSelector(msg.Index)
		return a, nil

	case appmodel.ListsListMsg:
		if msg.Err != nil {
			return a.notify(fmt.Sprintf("Could not load lists: %v", msg.Err))
		}
		a.openListSelector(msg.Index)
		return a, nil

	case appmodel.ModelsListMsg:
		if msg.Err != nil {
			return a.notify(fmt.Sprintf("Could not list models: %v", msg.Err))
		}
		a.openModelSelector(msg.Models)
		return a, nil

	case statusExpiredMsg:
		if msg.Seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit regardless of view or overlay
	if msg.String() == "ctrl+c" {
		a.dataModel.FlushPendingSaves()
		if a.dataModel.Speech != nil {
			a.dataModel.Speech.Cancel()
		}
		return a, tea.Quit
	}

	if a.selector != nil {
		return a.updateSelector(msg)
	}

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.dataModel.Session.View {
	case command.ViewList:
		return a.updateOutline(msg)
	default:
		return a.updateChat(msg)
	}
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.selector != nil {
		return a.renderSelector()
	}

	if a.showHelp {
		return a.renderHelp()
	}

	switch a.dataModel.Session.View {
	case command.ViewList:
		return a.renderOutline()
	default:
		return a.renderChat()
	}
}

// notify puts a transient message on the status line.
func (a App) notify(text string) (tea.Model, tea.Cmd) {
	a.status = text
	a.statusSeq++
	seq := a.statusSeq
	return a, tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusExpiredMsg{Seq: seq}
	})
}

// rerenderAll queues markdown renders for every assistant message, used
// after a resize invalidates the cache.
func (a *App) rerenderAll() []tea.Cmd {
	var cmds []tea.Cmd
	for i, msg := range a.dataModel.Messages {
		if msg.Role == appmodel.RoleAssistant {
			cmds = append(cmds, a.renderMarkdownAsync(i, msg.Content))
		}
	}
	return cmds
}
