package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/soundbrowse/soundbrowse/internal/types"
	"github.com/soundbrowse/soundbrowse/internal/windowset"
)

// openPrompt shows the username entry modal, prefilled with nothing and
// offering the recent-username list as fuzzy-filtered suggestions.
func (m *Model) openPrompt() tea.Cmd {
	if err := m.windows.ShowModal(windowPrompt); err != nil {
		m.errorMsg = err.Error()
		return nil
	}
	m.usernameInput.SetValue("")
	m.usernameInput.Focus()
	m.promptIndex = -1
	m.refreshPromptMatches()
	return tea.Batch(m.loadRecentUsernames(), m.usernameInput.Cursor.BlinkCmd())
}

// openHelp shows the help overlay.
func (m *Model) openHelp() tea.Cmd {
	if err := m.windows.ShowModal(windowHelp); err != nil {
		m.errorMsg = err.Error()
		return nil
	}
	m.helpView.SetContent(helpContent())
	m.helpView.GotoTop()
	return nil
}

// openInspect shows the selected item's raw JSON, syntax highlighted.
func (m *Model) openInspect() tea.Cmd {
	item, ok := m.browser.SelectedItem()
	if !ok {
		m.statusMsg = "Nothing to inspect"
		return nil
	}
	if err := m.windows.ShowModal(windowInspect); err != nil {
		m.errorMsg = err.Error()
		return nil
	}
	m.inspectView.SetContent(highlightJSON(item))
	m.inspectView.GotoTop()
	return nil
}

// activeModal returns the id of the open modal, if any.
func (m *Model) activeModal() (windowset.ID, bool) {
	id := m.windows.ActiveModal()
	return id, id != ""
}

// refreshPromptMatches fuzzy-filters the recent usernames against the
// prompt's current input. An empty query shows the full history.
func (m *Model) refreshPromptMatches() {
	query := m.usernameInput.Value()
	if query == "" {
		m.promptMatches = m.recentUsernames
		return
	}

	matches := fuzzy.Find(query, m.recentUsernames)
	filtered := make([]string, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, match.Str)
	}
	m.promptMatches = filtered
	if m.promptIndex >= len(filtered) {
		m.promptIndex = len(filtered) - 1
	}
}

// promptValue returns the username the prompt would submit: the highlighted
// suggestion when one is selected, otherwise the typed text.
func (m *Model) promptValue() string {
	if m.promptIndex >= 0 && m.promptIndex < len(m.promptMatches) {
		return m.promptMatches[m.promptIndex]
	}
	return strings.TrimSpace(m.usernameInput.Value())
}

// highlightJSON pretty-prints and syntax-highlights an item's raw JSON for
// the inspect viewport. Falls back to plain text when highlighting fails.
func highlightJSON(item types.Item) string {
	source := string(item.Raw)
	if source == "" {
		data, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return fmt.Sprintf("%+v", item)
		}
		source = string(data)
	} else {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, item.Raw, "", "  "); err == nil {
			source = pretty.String()
		}
	}

	var highlighted bytes.Buffer
	if err := quick.Highlight(&highlighted, source, "json", "terminal256", "monokai"); err != nil {
		return source
	}
	return highlighted.String()
}

// helpContent is the static help overlay text.
func helpContent() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("soundbrowse — keys") + "\n\n")

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Browsing", [][2]string{
			{"up/down", "move selection"},
			{"pgup/pgdown", "previous/next page"},
			{"tab", "cycle category (tracks, playlists, favorites, followings, followers)"},
			{"u", "enter a different username"},
			{"i", "inspect selected item"},
			{"y", "copy selected item's permalink"},
			{"f1", "this help"},
			{"q", "quit"},
		}},
		{"Modals", [][2]string{
			{"c / esc", "close"},
			{"up/down", "scroll"},
		}},
		{"Username prompt", [][2]string{
			{"enter", "look up the typed or highlighted username"},
			{"up/down", "highlight a recent username"},
			{"esc", "close"},
		}},
	}

	for _, section := range sections {
		b.WriteString(styleSubtle.Render(section.title) + "\n")
		for _, key := range section.keys {
			b.WriteString(fmt.Sprintf("  %-12s %s\n", key[0], key[1]))
		}
		b.WriteString("\n")
	}
	return b.String()
}
