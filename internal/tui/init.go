package tui

import (
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
)

// New creates the TUI model from its wired dependencies. store may be nil
// when the cache database could not be opened; the session then runs
// network-only.
func New(settings config.Settings, client resourceClient, store *cache.Store) (*Model, error) {
	windows, err := newWindowSet(settings.MinRows, settings.MinCols)
	if err != nil {
		return nil, err
	}

	input := textinput.New()
	input.Placeholder = "username or permalink"
	input.CharLimit = 100
	input.Width = 40

	m := &Model{
		machine:       session.NewMachine(),
		browser:       browser.New(),
		windows:       windows,
		keymap:        keybinds.NewDefaultRegistry(),
		client:        client,
		store:         store,
		settings:      settings,
		usernameInput: input,
		promptIndex:   -1,
		helpView:      viewport.New(80, 20),
		inspectView:   viewport.New(80, 20),
	}

	// A saved session pre-fills the prompt with the last browsed username.
	if last := config.LoadSession().LastUsername; last != "" {
		m.usernameInput.SetValue(last)
	}

	return m, nil
}

// Run starts the interactive session: config, cache and client wiring, then
// the terminal program.
func Run() error {
	if err := config.Initialize(); err != nil {
		return err
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}

	store, err := cache.NewStore(config.CachePath)
	if err != nil {
		// The cache is an optimization; run without it rather than refuse
		// to start.
		fmt.Fprintf(os.Stderr, "warning: page cache unavailable: %v\n", err)
		store = nil
	}

	client := api.NewClient(settings)

	m, err := New(settings, client, store)
	if err != nil {
		return err
	}

	// Mouse support stays off; navigation is keyboard-only.
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	if m.FatalErr() != nil {
		return m.FatalErr()
	}

	return nil
}
