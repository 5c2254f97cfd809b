package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderActiveOverlay returns the dialog drawn over the panes, or "" when
// none is open. The delete confirmation wins over help.
func (m *Model) renderActiveOverlay(width, height int) string {
	switch {
	case m.confirm != nil:
		return m.renderConfirmOverlay(width, height)
	case m.showHelp:
		return m.renderHelpOverlay(width, height)
	}
	return ""
}

func (m *Model) renderConfirmOverlay(width, height int) string {
	popupWidth := min(ConfirmPopupWidth, max(20, width-4))
	inner := max(0, popupWidth-confirmPopup.GetHorizontalFrameSize())
	lines := []string{
		titleStyle.Render("Confirm delete"),
		"",
		lipgloss.NewStyle().Width(inner).Render(m.confirm.Prompt()),
		"",
		mutedStyle.Render(confirmYes.Help().Key + " " + confirmYes.Help().Desc + " · " +
			confirmNo.Help().Key + " " + confirmNo.Help().Desc),
	}
	popup := confirmPopup.Width(popupWidth - confirmPopup.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, popup)
}

func (m *Model) renderHelpOverlay(width, height int) string {
	popupWidth := max(20, width-4)
	m.help.Width = max(0, popupWidth-popupStyle.GetHorizontalFrameSize())
	body := titleStyle.Render("Keyboard Shortcuts") + "\n\n" + m.help.FullHelpView(m.keys.FullHelp()) +
		"\n\n" + mutedStyle.Render("Press ? to return.")
	body = padBlock(body, m.help.Width, max(1, min(lipgloss.Height(body), height-popupStyle.GetVerticalFrameSize())))
	popup := popupStyle.Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, popup)
}
