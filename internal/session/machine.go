// Package session implements the finite-state controller that drives the
// interactive terminal session. Transitions are pure: Apply consumes one
// event and returns the commands the caller should execute, so every
// transition is testable without a terminal or a network.
package session

import (
	"github.com/soundbrowse/soundbrowse/internal/types"
)

// State is the top-level session state.
type State int

const (
	// StateAwaitingUsername is the initial state; the username prompt
	// modal is visible and no user is resolved yet.
	StateAwaitingUsername State = iota
	// StateLoadingUser means a username lookup is in flight.
	StateLoadingUser
	// StateBrowsing is normal operation over a resolved user's
	// subresources.
	StateBrowsing
	// StateModal means a modal (username re-entry, help, inspect) is open
	// over the browsing windows.
	StateModal
	// StateQuit is terminal.
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateAwaitingUsername:
		return "awaiting-username"
	case StateLoadingUser:
		return "loading-user"
	case StateBrowsing:
		return "browsing"
	case StateModal:
		return "modal"
	case StateQuit:
		return "quit"
	}
	return "unknown"
}

// Event is anything the event loop feeds into the machine: a mapped key
// action, a lookup completion, a fetch completion or a resize report.
type Event interface{ isEvent() }

// UsernameSubmitted carries the text entered in the username prompt.
type UsernameSubmitted struct{ Username string }

// LookupSucceeded reports a resolved user identity.
type LookupSucceeded struct{ User *types.User }

// LookupFailed reports a permanent lookup failure (or exhausted retries).
type LookupFailed struct{ Message string }

// FetchSucceeded reports that a page fetch for the current generation
// completed and was applied.
type FetchSucceeded struct{}

// FetchFailed reports a page fetch failure surfaced as status text.
type FetchFailed struct{ Message string }

// ResizeReported reports the result of a terminal resize; TooSmall marks
// the session degraded until the terminal is enlarged.
type ResizeReported struct {
	TooSmall bool
	Message  string
}

// Key actions, produced by the keymap resolver from raw input.
type KeySelectNext struct{}
type KeySelectPrevious struct{}
type KeyPageForward struct{}
type KeyPageBackward struct{}
type KeyCycleCategory struct{}
type KeyEnterUsername struct{}
type KeyHelp struct{}
type KeyInspect struct{}
type KeyYank struct{}
type KeyClose struct{}
type KeyQuit struct{}

func (UsernameSubmitted) isEvent() {}
func (LookupSucceeded) isEvent()   {}
func (LookupFailed) isEvent()      {}
func (FetchSucceeded) isEvent()    {}
func (FetchFailed) isEvent()       {}
func (ResizeReported) isEvent()    {}
func (KeySelectNext) isEvent()     {}
func (KeySelectPrevious) isEvent() {}
func (KeyPageForward) isEvent()    {}
func (KeyPageBackward) isEvent()   {}
func (KeyCycleCategory) isEvent()  {}
func (KeyEnterUsername) isEvent()  {}
func (KeyHelp) isEvent()           {}
func (KeyInspect) isEvent()        {}
func (KeyYank) isEvent()           {}
func (KeyClose) isEvent()          {}
func (KeyQuit) isEvent()           {}

// Command is an instruction for the caller: start a lookup, mutate the
// window set, drive the browser, or quit.
type Command interface{ isCommand() }

// CmdLookupUser starts an asynchronous username lookup.
type CmdLookupUser struct{ Username string }

// CmdBeginBrowsing installs the resolved user in the browser, which opens
// the first category's page fetch.
type CmdBeginBrowsing struct{ User *types.User }

// Modal window commands.
type CmdOpenPrompt struct{}
type CmdOpenHelp struct{}
type CmdOpenInspect struct{}
type CmdCloseModal struct{}

// Browser commands.
type CmdSelectNext struct{}
type CmdSelectPrevious struct{}
type CmdPageForward struct{}
type CmdPageBackward struct{}
type CmdCycleCategory struct{}

// CmdYank copies the selected item's permalink to the clipboard.
type CmdYank struct{}

// CmdSetStatus and CmdSetError update the footer text.
type CmdSetStatus struct{ Text string }
type CmdSetError struct{ Text string }

// CmdQuit tears the session down.
type CmdQuit struct{}

func (CmdLookupUser) isCommand()     {}
func (CmdBeginBrowsing) isCommand()  {}
func (CmdOpenPrompt) isCommand()     {}
func (CmdOpenHelp) isCommand()       {}
func (CmdOpenInspect) isCommand()    {}
func (CmdCloseModal) isCommand()     {}
func (CmdSelectNext) isCommand()     {}
func (CmdSelectPrevious) isCommand() {}
func (CmdPageForward) isCommand()    {}
func (CmdPageBackward) isCommand()   {}
func (CmdCycleCategory) isCommand()  {}
func (CmdYank) isCommand()           {}
func (CmdSetStatus) isCommand()      {}
func (CmdSetError) isCommand()       {}
func (CmdQuit) isCommand()           {}

// Machine is the session state machine. Degraded is an attribute of the
// current state, not a state of its own: remote and layout errors set it,
// the next success clears it, and the surrounding windows stay up.
type Machine struct {
	state    State
	hasUser  bool
	degraded string
	tooSmall bool
}

// NewMachine returns a machine in the initial awaiting-username state.
func NewMachine() *Machine {
	return &Machine{state: StateAwaitingUsername}
}

// State returns the current top-level state.
func (m *Machine) State() State { return m.state }

// Degraded returns the current error status text, or "" when healthy.
func (m *Machine) Degraded() string { return m.degraded }

// HasUser reports whether a user identity has ever been resolved.
func (m *Machine) HasUser() bool { return m.hasUser }

// Apply feeds one event through the transition table and returns the
// commands to execute. Events that make no sense in the current state are
// ignored and return no commands.
func (m *Machine) Apply(event Event) []Command {
	if m.state == StateQuit {
		return nil
	}

	switch ev := event.(type) {
	case KeyQuit:
		m.state = StateQuit
		return []Command{CmdQuit{}}

	case ResizeReported:
		// Unchanged state; degraded while the terminal is too small. A
		// benign resize leaves any existing status or remote-error text
		// alone.
		wasTooSmall := m.tooSmall
		m.tooSmall = ev.TooSmall
		if ev.TooSmall {
			m.degraded = ev.Message
			return []Command{CmdSetError{Text: ev.Message}}
		}
		if !wasTooSmall {
			return nil
		}
		m.degraded = ""
		return []Command{CmdSetStatus{Text: ""}}

	case UsernameSubmitted:
		if m.degradedBlocksInput() {
			return nil
		}
		if m.state != StateAwaitingUsername && m.state != StateModal {
			return nil
		}
		if ev.Username == "" {
			m.degraded = "username must not be empty"
			return []Command{CmdSetError{Text: m.degraded}}
		}
		m.state = StateLoadingUser
		m.degraded = ""
		return []Command{
			CmdCloseModal{},
			CmdSetStatus{Text: "Looking up " + ev.Username + "..."},
			CmdLookupUser{Username: ev.Username},
		}

	case LookupSucceeded:
		if m.state != StateLoadingUser {
			return nil
		}
		m.state = StateBrowsing
		m.hasUser = true
		m.degraded = ""
		return []Command{
			CmdSetStatus{Text: "Browsing " + ev.User.Username},
			CmdBeginBrowsing{User: ev.User},
		}

	case LookupFailed:
		if m.state != StateLoadingUser {
			return nil
		}
		m.state = StateAwaitingUsername
		m.degraded = ev.Message
		return []Command{
			CmdSetError{Text: ev.Message},
			CmdOpenPrompt{},
		}

	case FetchSucceeded:
		if m.state == StateBrowsing || m.state == StateModal {
			m.degraded = ""
		}
		return nil

	case FetchFailed:
		if m.state != StateBrowsing && m.state != StateModal {
			return nil
		}
		m.degraded = ev.Message
		return []Command{CmdSetError{Text: ev.Message}}
	}

	if m.degradedBlocksInput() {
		// Too-small terminal: every non-quit key leaves state unchanged
		// until the terminal is enlarged.
		return nil
	}

	switch m.state {
	case StateBrowsing:
		return m.applyBrowsingKey(event)
	case StateModal:
		return m.applyModalKey(event)
	}
	return nil
}

func (m *Machine) degradedBlocksInput() bool {
	// Only layout degradation blocks input; remote errors leave the
	// session fully interactive.
	return m.tooSmall
}

func (m *Machine) applyBrowsingKey(event Event) []Command {
	switch event.(type) {
	case KeySelectNext:
		return []Command{CmdSelectNext{}}
	case KeySelectPrevious:
		return []Command{CmdSelectPrevious{}}
	case KeyPageForward:
		return []Command{CmdPageForward{}}
	case KeyPageBackward:
		return []Command{CmdPageBackward{}}
	case KeyCycleCategory:
		return []Command{CmdCycleCategory{}}
	case KeyYank:
		return []Command{CmdYank{}}
	case KeyEnterUsername:
		m.state = StateModal
		return []Command{CmdOpenPrompt{}}
	case KeyHelp:
		m.state = StateModal
		return []Command{CmdOpenHelp{}}
	case KeyInspect:
		m.state = StateModal
		return []Command{CmdOpenInspect{}}
	}
	return nil
}

func (m *Machine) applyModalKey(event Event) []Command {
	switch event.(type) {
	case KeyClose:
		if m.hasUser {
			m.state = StateBrowsing
		} else {
			m.state = StateAwaitingUsername
		}
		return []Command{CmdCloseModal{}}
	}
	return nil
}
