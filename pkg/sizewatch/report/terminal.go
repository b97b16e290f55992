package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
)

// Color constants using the ANSI 256-color palette, shared with the other
// terminal output in this repo.
const (
	colorPrimary = lipgloss.Color("39")
	colorSuccess = lipgloss.Color("42")
	colorDanger  = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("245")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	increaseStyle = lipgloss.NewStyle().Foreground(colorDanger)
	decreaseStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	totalStyle    = lipgloss.NewStyle().Bold(true)
)

// deltaStyle picks a style for a delta cell: growth is the thing to notice,
// shrinkage is good news, everything else is muted.
func deltaStyle(row Row) lipgloss.Style {
	switch {
	case row.BaseSize == 0 || row.HeadSize > row.BaseSize:
		return increaseStyle
	case row.HeadSize == 0 || row.HeadSize < row.BaseSize:
		return decreaseStyle
	default:
		return mutedStyle
	}
}

// Terminal renders the result for local terminal display, used by the
// watch command. Column layout mirrors the Markdown table.
func (r *Result) Terminal(name string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteByte('\n')

	fileWidth := len("Total")
	for _, row := range r.Rows {
		if len(row.File) > fileWidth {
			fileWidth = len(row.File)
		}
	}

	if !r.HasBaseline {
		for _, row := range r.Rows {
			fmt.Fprintf(&b, "  %-*s  %s\n", fileWidth, row.File, types.FormatSize(row.HeadSize))
		}
		fmt.Fprintf(&b, "  %s\n", totalStyle.Render(
			fmt.Sprintf("%-*s  %s", fileWidth, "Total", types.FormatSize(r.TotalHead))))
		return b.String()
	}

	for _, row := range r.Rows {
		fmt.Fprintf(&b, "  %-*s  %10s → %10s  %s\n",
			fileWidth, row.File,
			types.FormatSize(row.BaseSize),
			types.FormatSize(row.HeadSize),
			deltaStyle(row).Render(row.Delta))
	}
	fmt.Fprintf(&b, "  %s\n", totalStyle.Render(
		fmt.Sprintf("%-*s  %10s → %10s  %s",
			fileWidth, "Total",
			types.FormatSize(r.TotalBase),
			types.FormatSize(r.TotalHead),
			FormatDelta(r.TotalHead, r.TotalBase))))
	return b.String()
}
