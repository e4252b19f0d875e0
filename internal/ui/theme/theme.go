// Package theme holds the colours and text styles of the quiz runner.
package theme

import (
	"charm.land/lipgloss/v2"
)

var (
	Indigo = lipgloss.Color("#6366F1")
	Sky    = lipgloss.Color("#0EA5E9")
	Amber  = lipgloss.Color("#F59E0B")
	Green  = lipgloss.Color("#22C55E")
	Rose   = lipgloss.Color("#F43F5E")
	Snow   = lipgloss.Color("#F8FAFC")
	Slate  = lipgloss.Color("#94A3B8")
	Ink    = lipgloss.Color("#1E293B")
	Rule   = lipgloss.Color("#334155")
)

// Chrome around every screen.
var (
	Bar = lipgloss.NewStyle().
		Background(Ink).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rule)

	Brand  = lipgloss.NewStyle().Foreground(Indigo).Bold(true)
	Status = lipgloss.NewStyle().Foreground(Amber)
	Key    = lipgloss.NewStyle().Foreground(Snow).Bold(true)
	KeyFor = lipgloss.NewStyle().Foreground(Slate)
)

// Text roles.
var (
	Heading = lipgloss.NewStyle().Foreground(Indigo).Bold(true).Align(lipgloss.Center)
	Caption = lipgloss.NewStyle().Foreground(Slate).Align(lipgloss.Center)
	Plain   = lipgloss.NewStyle().Foreground(Snow)
	Faint   = lipgloss.NewStyle().Foreground(Slate)
	Note    = lipgloss.NewStyle().Foreground(Slate).Italic(true)
	Warning = lipgloss.NewStyle().Foreground(Rose)
)

// Answer options. OptionRight and OptionWrong are only used once the
// answer is revealed.
var (
	Question     = lipgloss.NewStyle().Foreground(Snow).Bold(true)
	OptionIdle   = lipgloss.NewStyle().Foreground(Snow)
	OptionCursor = lipgloss.NewStyle().Foreground(Indigo).Bold(true)
	OptionRight  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	OptionWrong  = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	OptionFaded  = lipgloss.NewStyle().Foreground(Slate)
	Explanation  = lipgloss.NewStyle().Foreground(Slate)
)

// Cells of components.Track.
var (
	CellRight   = lipgloss.NewStyle().Foreground(Green)
	CellWrong   = lipgloss.NewStyle().Foreground(Rose)
	CellCurrent = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	CellAhead   = lipgloss.NewStyle().Foreground(Rule)
)
