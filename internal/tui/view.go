package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lintsuppress/internal/model"
)

// Lines of file shown on each side of the directive.
const previewRadius = 6

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	directiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Sky Blue/Cyan
			Bold(true)

	appliedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func (m AppModel) View() string {
	if m.Loading {
		return "\n  Running linter and planning suppressions... please wait.\n"
	}
	if m.Err != nil && len(m.Plan.Fixes) == 0 {
		return fmt.Sprintf("\n  Error: %v\n\n  Press q to quit.\n", m.Err)
	}
	if m.ShowHelp {
		return m.renderHelpDialog()
	}

	width := m.WindowSize.Width
	height := m.WindowSize.Height

	netWidth := width - 6
	if netWidth < 40 {
		netWidth = 40
	}
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth

	boxHeight := height - 6
	if boxHeight < 8 {
		boxHeight = 8
	}
	interiorHeight := boxHeight - 2

	left := m.renderList(leftWidth, interiorHeight)
	right := m.DetailsViewport.View()

	leftBox := panelStyle.Width(leftWidth).Height(interiorHeight).Render(left)
	rightBox := panelStyle.Width(rightWidth).Height(interiorHeight).Render(right)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("lintsuppress %s", model.Version)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d diagnostics, %d files, %d to patch, %d written",
		m.Plan.Diagnostics, len(m.Plan.Fixes), len(m.Plan.Changed()), len(m.Applied))))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m AppModel) renderList(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Planned fixes"))
	b.WriteString("\n\n")

	if len(m.FilteredIndices) == 0 {
		if m.SearchActive {
			b.WriteString(dimStyle.Render("No fix matches the filter."))
		} else {
			b.WriteString(dimStyle.Render("Nothing to suppress."))
		}
		return b.String()
	}

	// Windowing: keep the cursor roughly centred.
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	end := len(m.FilteredIndices)
	if end > visible {
		if m.SelectedIdx >= visible/2 {
			start = m.SelectedIdx - visible/2
		}
		if start+visible > end {
			start = end - visible
		}
		end = start + visible
	}

	base := ""
	if m.Patcher != nil {
		base = m.Patcher.Config().WorkDir
	}
	for i := start; i < end; i++ {
		fix := m.Plan.Fixes[m.FilteredIndices[i]]
		icon := model.FixIcon(fix)
		if m.isApplied(fix.Path) {
			icon = model.IconApplied
		}

		line := fmt.Sprintf("%s %s:%d  %s", icon, displayPath(base, fix.Path), fix.Line, strings.Join(fix.Added, " "))
		if len(line) > width-2 && width > 5 {
			line = line[:width-5] + "..."
		}

		var style lipgloss.Style
		switch {
		case i == m.SelectedIdx:
			style = selectedStyle
		case m.isApplied(fix.Path):
			style = appliedStyle
		case !fix.Changed:
			style = dimStyle
		default:
			style = normalStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m AppModel) renderFooter() string {
	if m.InputMode {
		return "Filter: " + m.InputBuffer.View() + dimStyle.Render("  (enter keep, esc clear)")
	}
	var parts []string
	if m.Err != nil {
		parts = append(parts, errorStyle.Render("Error: "+m.Err.Error()))
	}
	if m.Applying {
		parts = append(parts, "Writing files...")
	}
	if m.SearchActive {
		parts = append(parts, fmt.Sprintf("filter %q", m.InputBuffer.Value()))
	}
	parts = append(parts, dimStyle.Render("↑/↓ move  / filter  a apply  ? help  q quit"))
	return strings.Join(parts, "  ")
}

// refreshDetails rebuilds the right-hand panel for the selected fix.
func (m *AppModel) refreshDetails() {
	fix, ok := m.selectedFix()
	if !ok {
		m.DetailsViewport.SetContent("")
		return
	}
	m.DetailsViewport.SetContent(renderDetails(fix, m.isApplied(fix.Path)))
	m.DetailsViewport.GotoTop()
}

func renderDetails(fix model.Fix, applied bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(filepath.Base(fix.Path)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fix.Path))
	b.WriteString("\n\n")

	status := "extend existing directive"
	switch {
	case applied:
		status = "written"
	case !fix.Changed:
		status = "already suppressed, nothing to write"
	case fix.Created:
		status = "insert new directive"
	}
	fmt.Fprintf(&b, "Action: %s\n", status)
	if len(fix.Added) > 0 {
		fmt.Fprintf(&b, "Adds:   %s\n", strings.Join(fix.Added, ", "))
	}
	b.WriteString("\n")

	ctx := model.FixContext(fix, previewRadius)
	if ctx.ErrorMsg != "" {
		b.WriteString(errorStyle.Render(ctx.ErrorMsg))
		b.WriteString("\n")
	} else {
		n := ctx.FirstLine
		for _, l := range ctx.Before {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%4d  %s", n, l)))
			b.WriteString("\n")
			n++
		}
		b.WriteString(directiveStyle.Render(fmt.Sprintf("%4d> %s", n, ctx.Target)))
		b.WriteString("\n")
		n++
		for _, l := range ctx.After {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%4d  %s", n, l)))
			b.WriteString("\n")
			n++
		}
	}

	if len(fix.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Linter messages"))
		b.WriteString("\n")
		for _, f := range fix.Failures {
			b.WriteString("  - " + f + "\n")
		}
	}
	return b.String()
}

func (m AppModel) renderHelpDialog() string {
	help := []string{
		titleStyle.Render("lintsuppress review"),
		"",
		"Each entry is a file the linter flagged. The right panel shows the",
		"file as it will look once the directive is written.",
		"",
		"  " + model.IconCreated + "  new directive inserted after the header",
		"  " + model.IconExtended + "  rules appended to the existing directive",
		"  " + model.IconApplied + "  written to disk",
		"",
		"  ↑/k ↓/j   move",
		"  pgup/pgdn scroll preview",
		"  / or w    filter by rule or path",
		"  a         write all pending fixes",
		"  esc       close help / clear filter",
		"  q         quit",
	}
	return panelStyle.Render(strings.Join(help, "\n"))
}

func displayPath(base, path string) string {
	if base == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (m AppModel) Init() tea.Cmd {
	if m.Patcher == nil {
		return nil
	}
	return PlanCmd(m.Ctx, m.Patcher)
}
