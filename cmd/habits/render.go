package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

var (
	colorGreen  = lipgloss.Color("#98C379")
	colorMuted  = lipgloss.Color("#636B78")
	colorYellow = lipgloss.Color("#E5C07B")
	colorBorder = lipgloss.Color("#3F4451")

	headerStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Width(3).
			Align(lipgloss.Center)

	doneStyle = cellStyle.
			Foreground(colorGreen)

	openStyle = cellStyle.
			Foreground(colorMuted)

	archivedStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

const (
	markDone = "●"
	markOpen = "·"
)

// renderBoard draws active habits followed by archived ones. Row numbers are
// board positions and are what the other commands accept.
func renderBoard(title string, b domain.Board) string {
	if len(b) == 0 {
		return boxStyle.Render(headerStyle.Render(title) + "\n\nNo habits yet. Add one with: habits add <name>")
	}

	nameWidth := lipgloss.Width("Habit")
	for _, h := range b {
		if w := lipgloss.Width(h.Name); w > nameWidth {
			nameWidth = w
		}
	}
	numWidth := len(strconv.Itoa(len(b))) + 1
	nameStyle := lipgloss.NewStyle().Width(nameWidth + 2)
	numStyle := lipgloss.NewStyle().Width(numWidth + 1).Foreground(colorMuted)

	var rows []string
	header := numStyle.Render("#") + nameStyle.Render("Habit")
	for _, label := range domain.DayLabels {
		header += cellStyle.Render(label)
	}
	rows = append(rows, headerStyle.Render(header))

	active, archived := domain.Partition(b)
	for i, h := range active {
		rows = append(rows, renderRow(numStyle, nameStyle, i+1, h))
	}

	if len(archived) > 0 {
		rows = append(rows, "", sectionStyle.Render(fmt.Sprintf("Archived (%d)", len(archived))))
		for i, h := range archived {
			rows = append(rows, renderRow(numStyle, nameStyle.Inherit(archivedStyle), len(active)+i+1, h))
		}
	}

	return boxStyle.Render(headerStyle.Render(title) + "\n\n" + strings.Join(rows, "\n"))
}

func renderRow(numStyle, nameStyle lipgloss.Style, n int, h domain.Habit) string {
	var sb strings.Builder
	sb.WriteString(numStyle.Render(strconv.Itoa(n)))
	sb.WriteString(nameStyle.Render(h.Name))
	for _, done := range h.WeekProgress {
		if done {
			sb.WriteString(doneStyle.Render(markDone))
		} else {
			sb.WriteString(openStyle.Render(markOpen))
		}
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(colorMuted).Render(fmt.Sprintf("  %d/%d", h.DaysDone(), domain.DaysPerWeek)))
	return sb.String()
}

func renderStats(s domain.WeeklyStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Habits: %d active, %d archived\n", s.ActiveHabits, s.ArchivedHabits)
	fmt.Fprintf(&sb, "Full weeks: %d\n", s.FullWeeks)
	fmt.Fprintf(&sb, "Completion: %.0f%%\n\n", s.OverallRate)

	for i, label := range domain.DayLabels {
		bar := strings.Repeat(markDone, s.DayTotals[i])
		fmt.Fprintf(&sb, "%-3s %s %d\n", label, doneStyle.UnsetWidth().UnsetAlign().Render(bar), s.DayTotals[i])
	}
	return boxStyle.Render(headerStyle.Render("This week") + "\n\n" + strings.TrimRight(sb.String(), "\n"))
}
