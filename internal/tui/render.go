package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/soundbrowse/soundbrowse/internal/types"
	"github.com/soundbrowse/soundbrowse/internal/windowset"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed   = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorGray  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// View renders the screen from the window set's current layout.
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.windows.TooSmall() {
		return m.renderTooSmall()
	}

	base := m.renderMain()

	modal, ok := m.activeModal()
	if !ok {
		return base
	}
	switch modal {
	case windowPrompt:
		return m.overlay(m.renderPrompt())
	case windowHelp:
		return m.overlay(m.renderHelp())
	case windowInspect:
		return m.overlay(m.renderInspect())
	}
	return base
}

// overlay centers a modal box over a blank background. The terminal cell
// grid has no true transparency, so the modal replaces the frame.
func (m *Model) overlay(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderTooSmall() string {
	msg := fmt.Sprintf("Terminal too small (%dx%d).\nNeed at least %dx%d. Resize to continue, q quits.",
		m.width, m.height, m.settings.MinCols, m.settings.MinRows)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styleError.Render(msg))
}

// renderMain composes the header, browser list and status bar into their
// window rectangles.
func (m *Model) renderMain() string {
	header := m.renderHeader()
	browserView := m.renderBrowser()
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		browserView,
		statusBar,
	)
}

// renderHeader renders the resolved user's identity and the category tabs.
func (m *Model) renderHeader() string {
	rect := m.rectFor(windowHeader)

	user := m.browser.User()
	var identity string
	if user == nil {
		identity = styleSubtle.Render("no user selected")
	} else {
		identity = styleTitle.Render(user.Username)
		if user.FullName != "" {
			identity += styleSubtle.Render(" · " + user.FullName)
		}
		if user.City != "" {
			identity += styleSubtle.Render(" · " + user.City)
		}
		identity += styleSubtle.Render(fmt.Sprintf("  (%d tracks, %d followers, %d following)",
			user.TrackCount, user.FollowerCount, user.FollowingCount))
	}

	var tabs []string
	for _, category := range types.Categories {
		label := category.Title()
		if category == m.browser.Category() {
			label = styleActiveTab.Render("[" + label + "]")
		} else {
			label = styleSubtle.Render(" " + label + " ")
		}
		tabs = append(tabs, label)
	}

	return lipgloss.NewStyle().Width(rect.Width).MaxHeight(rect.Height).Render(
		identity + "\n" + strings.Join(tabs, " "))
}

// renderBrowser renders the current page's item list with the selection
// highlighted.
func (m *Model) renderBrowser() string {
	rect := m.rectFor(windowBrowser)
	page := m.browser.CurrentPage()

	var lines []string
	switch {
	case m.browser.User() == nil:
		lines = append(lines, styleSubtle.Render("Press u to enter a username."))
	case page == nil:
		lines = append(lines, styleSubtle.Render("Loading "+string(m.browser.Category())+"..."))
	case len(page.Items) == 0:
		lines = append(lines, styleSubtle.Render("No "+string(m.browser.Category())+"."))
	default:
		lines = append(lines, m.renderItems(page, rect)...)
	}

	for len(lines) < rect.Height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, m.renderPageIndicator(page, rect.Width))

	return lipgloss.NewStyle().Width(rect.Width).MaxHeight(rect.Height).Render(
		strings.Join(lines[:rect.Height], "\n"))
}

func (m *Model) renderItems(page *types.Page, rect windowset.Rect) []string {
	selection := m.browser.Selection()
	// Keep the selection on screen when the page is taller than the window.
	visible := rect.Height - 1
	if visible < 1 {
		visible = 1
	}
	start := 0
	if selection >= visible {
		start = selection - visible + 1
	}
	end := start + visible
	if end > len(page.Items) {
		end = len(page.Items)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		item := page.Items[i]

		line := fmt.Sprintf("%3d  %s", i+1, item.DisplayTitle())
		if item.Duration > 0 {
			line += styleSubtle.Render("  " + formatDuration(item.Duration))
		}
		if item.Title != "" && item.Username != "" {
			line += styleSubtle.Render("  by " + item.Username)
		}

		if i == selection {
			line = styleSelected.Render(padRight(line, rect.Width))
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *Model) renderPageIndicator(page *types.Page, width int) string {
	if page == nil {
		return ""
	}
	indicator := fmt.Sprintf("Page %d", m.browser.PageIndex()+1)
	if page.HasMore() {
		indicator += " · pgdown for more"
	} else {
		indicator += " · last page"
	}
	return styleSubtle.Render(padRight(indicator, width))
}

// renderStatusBar renders the footer: session context on the left, status
// or error text on the right.
func (m *Model) renderStatusBar() string {
	left := "soundbrowse"
	if user := m.browser.User(); user != nil {
		left = fmt.Sprintf("%s / %s", user.Username, m.browser.Category())
	}

	// Long error text must not push the footer past one row, so truncation
	// happens on the plain text, before styling.
	maxRight := m.width - lipgloss.Width(left) - 1

	var right string
	switch {
	case m.errorMsg != "":
		right = styleError.Render(truncate(m.errorMsg, maxRight))
	case m.loading:
		text := m.statusMsg
		if text == "" {
			text = "Loading..."
		}
		right = truncate(text, maxRight)
	case m.statusMsg != "":
		right = truncate(m.statusMsg, maxRight)
	default:
		right = styleSubtle.Render(truncate("u username | tab category | i inspect | f1 help | q quit", maxRight))
	}

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return "..."
	}
	return string(runes[:width-3]) + "..."
}

// renderPrompt renders the username entry modal with its fuzzy-filtered
// suggestion list.
func (m *Model) renderPrompt() string {
	rect := m.rectFor(windowPrompt)

	var content strings.Builder
	content.WriteString(styleTitle.Render("Enter username") + "\n\n")
	content.WriteString(m.usernameInput.View() + "\n\n")

	if len(m.promptMatches) > 0 {
		content.WriteString(styleSubtle.Render("Recent:") + "\n")
		shown := rect.Height - 9
		if shown > len(m.promptMatches) {
			shown = len(m.promptMatches)
		}
		for i := 0; i < shown; i++ {
			line := "  " + m.promptMatches[i]
			if i == m.promptIndex {
				line = styleSelected.Render(padRight(line, rect.Width-4))
			}
			content.WriteString(line + "\n")
		}
	}

	footer := "enter look up"
	if m.machine.HasUser() {
		footer += " | esc close"
	}
	if len(m.promptMatches) > 0 {
		footer += " | up/down pick recent"
	}

	return m.modalBox(rect, content.String(), footer)
}

func (m *Model) renderHelp() string {
	rect := m.rectFor(windowHelp)
	return m.modalBox(rect, m.helpView.View(), "c/esc close | up/down scroll")
}

func (m *Model) renderInspect() string {
	rect := m.rectFor(windowInspect)
	title := "Inspect"
	if item, ok := m.browser.SelectedItem(); ok {
		title = "Inspect: " + item.DisplayTitle()
	}
	content := styleTitle.Render(title) + "\n\n" + m.inspectView.View()
	return m.modalBox(rect, content, "c/esc close | up/down scroll")
}

// modalBox wraps modal content in the shared bordered frame sized by the
// window set's rectangle.
func (m *Model) modalBox(rect windowset.Rect, content, footer string) string {
	body := content
	if footer != "" {
		body += "\n" + styleSubtle.Render(footer)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Width(rect.Width - 2).
		Height(rect.Height - 2).
		Padding(0, 1).
		Render(body)
}

// rectFor looks up a window's current rectangle, falling back to the full
// terminal when the window is unknown.
func (m *Model) rectFor(id windowset.ID) windowset.Rect {
	if w, ok := m.windows.Get(id); ok {
		return w.Rect
	}
	return windowset.Rect{Width: m.width, Height: m.height}
}

func padRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// formatDuration renders a track duration in milliseconds as m:ss.
func formatDuration(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
