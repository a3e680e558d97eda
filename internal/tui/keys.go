package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/soundbrowse/soundbrowse/internal/keybinds"
	"github.com/soundbrowse/soundbrowse/internal/session"
	"github.com/soundbrowse/soundbrowse/internal/windowset"
)

// handleKeyPress resolves a key press against the keymap for the active
// context and feeds the mapped action into the state machine. Keys the
// prompt does not bind fall through to the text input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	modal, hasModal := m.activeModal()

	context := keybinds.ContextBrowsing
	if hasModal {
		if modal == windowPrompt {
			context = keybinds.ContextPrompt
		} else {
			context = keybinds.ContextModal
		}
	}

	action, bound := m.keymap.Match(context, key)
	if !bound {
		if context == keybinds.ContextPrompt {
			return m.updatePromptInput(msg)
		}
		return nil
	}

	switch context {
	case keybinds.ContextPrompt:
		return m.applyPromptAction(action)
	case keybinds.ContextModal:
		return m.applyModalAction(action, modal)
	default:
		return m.applyBrowsingAction(action)
	}
}

func (m *Model) applyBrowsingAction(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit:
		return m.applyEvents(session.KeyQuit{})
	case keybinds.ActionEnterUsername:
		return m.applyEvents(session.KeyEnterUsername{})
	case keybinds.ActionHelp:
		return m.applyEvents(session.KeyHelp{})
	case keybinds.ActionInspect:
		return m.applyEvents(session.KeyInspect{})
	case keybinds.ActionYank:
		return m.applyEvents(session.KeyYank{})
	case keybinds.ActionSelectNext:
		return m.applyEvents(session.KeySelectNext{})
	case keybinds.ActionSelectPrev:
		return m.applyEvents(session.KeySelectPrevious{})
	case keybinds.ActionPageForward:
		return m.applyEvents(session.KeyPageForward{})
	case keybinds.ActionPageBackward:
		return m.applyEvents(session.KeyPageBackward{})
	case keybinds.ActionCycleCategory:
		return m.applyEvents(session.KeyCycleCategory{})
	}
	return nil
}

// applyModalAction handles keys inside the help and inspect overlays.
// Scrolling stays local to the viewport; close and quit go through the
// machine.
func (m *Model) applyModalAction(action keybinds.Action, modal windowset.ID) tea.Cmd {
	view := &m.helpView
	if modal == windowInspect {
		view = &m.inspectView
	}

	switch action {
	case keybinds.ActionQuit:
		return m.applyEvents(session.KeyQuit{})
	case keybinds.ActionClose:
		return m.applyEvents(session.KeyClose{})
	case keybinds.ActionSelectNext:
		view.ScrollDown(1)
	case keybinds.ActionSelectPrev:
		view.ScrollUp(1)
	}
	return nil
}

// applyPromptAction handles the username prompt's control keys. Enter
// submits the typed text or the highlighted suggestion; up/down move the
// suggestion highlight.
func (m *Model) applyPromptAction(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit:
		return m.applyEvents(session.KeyQuit{})

	case keybinds.ActionClose:
		// The initial prompt cannot be dismissed; there is nothing to go
		// back to before a user is resolved.
		if !m.machine.HasUser() {
			return nil
		}
		return m.applyEvents(session.KeyClose{})

	case keybinds.ActionSubmit:
		return m.applyEvents(session.UsernameSubmitted{Username: m.promptValue()})

	case keybinds.ActionSelectNext:
		if len(m.promptMatches) > 0 && m.promptIndex < len(m.promptMatches)-1 {
			m.promptIndex++
		}
		return nil

	case keybinds.ActionSelectPrev:
		if m.promptIndex >= 0 {
			m.promptIndex--
		}
		return nil
	}
	return nil
}

// updatePromptInput forwards an unbound key to the text input and
// re-filters the suggestion list. Typing leaves suggestion-highlight mode.
func (m *Model) updatePromptInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.usernameInput, cmd = m.usernameInput.Update(msg)
	m.promptIndex = -1
	m.refreshPromptMatches()
	return cmd
}
