package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/soundbrowse/soundbrowse/internal/api"
	"github.com/soundbrowse/soundbrowse/internal/browser"
	"github.com/soundbrowse/soundbrowse/internal/cache"
	"github.com/soundbrowse/soundbrowse/internal/config"
	"github.com/soundbrowse/soundbrowse/internal/keybinds"
	"github.com/soundbrowse/soundbrowse/internal/session"
	"github.com/soundbrowse/soundbrowse/internal/types"
	"github.com/soundbrowse/soundbrowse/internal/windowset"
)

// resourceClient is the narrow contract the TUI needs from the remote
// resource client; tests substitute a stub.
type resourceClient interface {
	ResolveUser(ctx context.Context, username string) (*types.User, error)
	FetchPage(ctx context.Context, userID int64, category types.Category, cursor string) (*types.Page, error)
}

// Model is the bubbletea model: the event loop's single point of state
// mutation. Exactly one message is processed at a time, which serializes
// every mutation of the machine, browser and window set.
type Model struct {
	machine  *session.Machine
	browser  *browser.Browser
	windows  *windowset.Set
	keymap   *keybinds.Registry
	client   resourceClient
	store    *cache.Store // nil when the cache database is unavailable
	settings config.Settings

	width  int
	height int

	statusMsg string
	errorMsg  string
	loading   bool

	// fatalErr aborts the program from the first resize when the terminal
	// cannot meet the minimum geometry at startup.
	fatalErr  error
	sizeKnown bool

	// Username prompt state
	usernameInput   textinput.Model
	recentUsernames []string
	promptMatches   []string
	promptIndex     int // -1 when typing, otherwise index into promptMatches

	// Modal viewports
	helpView    viewport.Model
	inspectView viewport.Model
}

// Init requests the first frame's state: the username prompt opens and the
// recent-username list loads.
func (m *Model) Init() tea.Cmd {
	for _, id := range []windowset.ID{windowHeader, windowBrowser, windowStatus} {
		if err := m.windows.Show(id); err != nil {
			return fatalCmd(err)
		}
	}
	if err := m.windows.ShowModal(windowPrompt); err != nil {
		return fatalCmd(err)
	}
	return tea.Batch(textinput.Blink, m.loadRecentUsernames())
}

// FatalErr returns the startup error that aborted the session, if any.
func (m *Model) FatalErr() error {
	return m.fatalErr
}

// Cleanup closes database connections.
func (m *Model) Cleanup() {
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing cache database: %v\n", err)
		}
		m.store = nil
	}
}

// Update handles one message and mutates the model. Fetch completions are
// tagged with the browser generation; stale ones are discarded here without
// touching any state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case tea.MouseMsg:
		// Discard mouse events; navigation is keyboard-only.
		return m, nil

	case tea.WindowSizeMsg:
		return m, m.handleResize(msg)

	case fatalMsg:
		m.fatalErr = msg.err
		m.Cleanup()
		return m, tea.Quit

	case userResolvedMsg:
		return m, m.applyEvents(session.LookupSucceeded{User: msg.user})

	case lookupFailedMsg:
		m.loading = false
		return m, m.applyEvents(session.LookupFailed{Message: msg.message})

	case pageFetchedMsg:
		if !m.browser.Apply(msg.req, msg.page) {
			// Stale generation: the user or category changed while the
			// fetch was in flight.
			return m, nil
		}
		m.loading = m.browser.Loading()
		if msg.fromCache {
			m.statusMsg = "Loaded from cache"
		} else {
			m.statusMsg = ""
		}
		return m, m.applyEvents(session.FetchSucceeded{})

	case pageFailedMsg:
		if !m.browser.Fail(msg.req) {
			return m, nil
		}
		m.loading = m.browser.Loading()
		return m, m.applyEvents(session.FetchFailed{Message: msg.message})

	case recentUsernamesMsg:
		m.recentUsernames = msg.usernames
		m.refreshPromptMatches()
		return m, nil

	case statusMsg:
		m.statusMsg = string(msg)
		return m, nil
	}

	return m, nil
}

// handleResize recomputes the window layout. The first reported size below
// the configured minimum is a fatal startup error; later shrinks merely
// degrade the session until the terminal is enlarged.
func (m *Model) handleResize(msg tea.WindowSizeMsg) tea.Cmd {
	m.width = msg.Width
	m.height = msg.Height

	err := m.windows.ResizeAll(msg.Height, msg.Width)
	m.resizeViewports()

	if err != nil {
		if !m.sizeKnown {
			return fatalCmd(fmt.Errorf("terminal %dx%d is below the minimum %dx%d",
				msg.Width, msg.Height, m.settings.MinCols, m.settings.MinRows))
		}
		return m.applyEvents(session.ResizeReported{TooSmall: true, Message: err.Error()})
	}

	m.sizeKnown = true
	return m.applyEvents(session.ResizeReported{})
}

func (m *Model) resizeViewports() {
	if rect, ok := m.windows.Get(windowHelp); ok {
		m.helpView.Width = rect.Rect.Width - 4
		m.helpView.Height = rect.Rect.Height - 4
	}
	if rect, ok := m.windows.Get(windowInspect); ok {
		m.inspectView.Width = rect.Rect.Width - 4
		m.inspectView.Height = rect.Rect.Height - 4
	}
}

// applyEvents feeds events through the state machine and executes the
// resulting commands.
func (m *Model) applyEvents(events ...session.Event) tea.Cmd {
	var cmds []tea.Cmd
	for _, event := range events {
		for _, command := range m.machine.Apply(event) {
			if cmd := m.execute(command); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	if m.machine.Degraded() == "" {
		m.errorMsg = ""
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// execute performs one state machine command.
func (m *Model) execute(command session.Command) tea.Cmd {
	switch cmd := command.(type) {
	case session.CmdLookupUser:
		m.loading = true
		return m.lookupUser(cmd.Username)

	case session.CmdBeginBrowsing:
		req := m.browser.SetUser(cmd.User)
		m.loading = true
		return m.fetchPage(req)

	case session.CmdOpenPrompt:
		return m.openPrompt()

	case session.CmdOpenHelp:
		return m.openHelp()

	case session.CmdOpenInspect:
		return m.openInspect()

	case session.CmdCloseModal:
		if err := m.windows.CloseModal(); err != nil {
			// Nothing was open; submitting from the initial prompt
			// arrives here after the prompt already closed.
			return nil
		}
		return nil

	case session.CmdSelectNext:
		return m.browserOp(m.browser.SelectNext)

	case session.CmdSelectPrevious:
		return m.browserOp(m.browser.SelectPrevious)

	case session.CmdPageForward:
		return m.browserOp(m.browser.PageForward)

	case session.CmdPageBackward:
		return m.browserOp(m.browser.PageBackward)

	case session.CmdCycleCategory:
		return m.browserOp(m.browser.CycleCategory)

	case session.CmdYank:
		return m.yankSelection()

	case session.CmdSetStatus:
		m.statusMsg = cmd.Text
		return nil

	case session.CmdSetError:
		m.errorMsg = cmd.Text
		return nil

	case session.CmdQuit:
		m.persistSession()
		m.Cleanup()
		return tea.Quit
	}
	return nil
}

// browserOp runs one browser operation and starts the fetch it requests,
// if any.
func (m *Model) browserOp(op func() *browser.FetchRequest) tea.Cmd {
	req := op()
	if req == nil {
		return nil
	}
	m.loading = true
	m.statusMsg = "Loading..."
	return m.fetchPage(req)
}

// persistSession remembers the active username for the next run.
func (m *Model) persistSession() {
	user := m.browser.User()
	if user == nil {
		return
	}
	if err := config.SaveSession(config.SessionState{LastUsername: user.Username}); err != nil {
		fmt.Fprintf(os.Stderr, "error saving session: %v\n", err)
	}
}

// Message types delivered back into the event loop by asynchronous work.

type fatalMsg struct{ err error }

type userResolvedMsg struct {
	username string
	user     *types.User
}

type lookupFailedMsg struct {
	username string
	message  string
}

type pageFetchedMsg struct {
	req       browser.FetchRequest
	page      *types.Page
	fromCache bool
}

type pageFailedMsg struct {
	req     browser.FetchRequest
	message string
}

type recentUsernamesMsg struct{ usernames []string }

type statusMsg string

func fatalCmd(err error) tea.Cmd {
	return func() tea.Msg { return fatalMsg{err: err} }
}

// formatRemoteError renders a classified API error as footer text.
func formatRemoteError(username string, err error) string {
	kind, ok := api.KindOf(err)
	if !ok {
		return err.Error()
	}
	switch kind {
	case api.KindUnresolvedUsername:
		return fmt.Sprintf("no such user: %s", username)
	case api.KindRateLimited:
		return "rate limited by the service, try again shortly"
	case api.KindInvalidCursor:
		return "the service rejected the page cursor"
	default:
		return fmt.Sprintf("network error: %v", err)
	}
}
