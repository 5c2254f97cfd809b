package app

import "github.com/charmbracelet/lipgloss"

var (
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	popupStyle    = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1)
	focusedPane   = paneStyle.BorderForeground(lipgloss.Color("62"))
	blurredPane   = paneStyle.BorderForeground(lipgloss.Color("240"))
	confirmPopup  = popupStyle.BorderForeground(lipgloss.Color("204"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	markedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	pinStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
)
