package tui

import (
	"context"
	"strings"

	"lintsuppress/internal/model"
	"lintsuppress/internal/patch"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgPlanReady indicates that the linter run and planning completed.
type MsgPlanReady model.Plan

// MsgApplied carries the fixes written to disk.
type MsgApplied []model.Fix

// MsgApplyFailed reports a write failure along with what did get written.
type MsgApplyFailed struct {
	Applied []model.Fix
	Err     error
}

// MsgError indicates an error occurred.
type MsgError struct{ Err error }

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.DetailsViewport.Width = msg.Width / 2
		m.DetailsViewport.Height = msg.Height - 8 // minus title/footer/borders
		m.refreshDetails()
		return m, nil

	case MsgPlanReady:
		m.Loading = false
		m.Plan = model.Plan(msg)
		m.performSearch()
		return m, nil

	case MsgApplied:
		m.Applying = false
		m.Applied = append(m.Applied, msg...)
		m.refreshDetails()
		return m, nil

	case MsgApplyFailed:
		m.Applying = false
		m.Applied = append(m.Applied, msg.Applied...)
		m.Err = msg.Err
		return m, nil

	case MsgError:
		m.Err = msg.Err
		m.Loading = false
		m.Applying = false
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				// Keep the filter, leave the input.
				m.InputMode = false
				m.InputBuffer.Blur()
				m.performSearch()
				return m, nil
			case tea.KeyEsc:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.InputBuffer.SetValue("")
				m.performSearch()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			m.performSearch()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.ShowHelp {
				m.ShowHelp = false
				return m, nil
			}
			if m.SearchActive {
				m.InputBuffer.SetValue("")
				m.performSearch()
				return m, nil
			}
		case "?":
			m.ShowHelp = !m.ShowHelp
		case "up", "k":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.refreshDetails()
			}
		case "down", "j":
			if m.SelectedIdx < len(m.FilteredIndices)-1 {
				m.SelectedIdx++
				m.refreshDetails()
			}
		case "pgdown", " ":
			m.DetailsViewport.HalfViewDown()
		case "pgup":
			m.DetailsViewport.HalfViewUp()
		case "/", "w":
			m.InputMode = true
			m.InputBuffer.Focus()
			m.InputBuffer.SetValue("")
			return m, textinput.Blink
		case "a":
			if m.Loading || m.Applying || m.Patcher == nil {
				return m, nil
			}
			pending := m.pendingPlan()
			if len(pending.Fixes) == 0 {
				return m, nil
			}
			m.Applying = true
			return m, ApplyCmd(m.Ctx, m.Patcher, pending)
		}
	}

	return m, cmd
}

// pendingPlan is the part of the plan not yet written.
func (m AppModel) pendingPlan() model.Plan {
	out := model.Plan{Diagnostics: m.Plan.Diagnostics}
	for _, f := range m.Plan.Changed() {
		if !m.isApplied(f.Path) {
			out.Fixes = append(out.Fixes, f)
		}
	}
	return out
}

func (m *AppModel) performSearch() {
	term := strings.ToLower(strings.TrimSpace(m.InputBuffer.Value()))
	m.SearchActive = term != ""

	var indices []int
	for i, f := range m.Plan.Fixes {
		if term == "" || matchesFix(f, term) {
			indices = append(indices, i)
		}
	}
	m.FilteredIndices = indices

	// Bounds check
	if m.SelectedIdx >= len(m.FilteredIndices) {
		if len(m.FilteredIndices) > 0 {
			m.SelectedIdx = len(m.FilteredIndices) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
	m.refreshDetails()
}

func matchesFix(f model.Fix, term string) bool {
	if strings.Contains(strings.ToLower(f.Path), term) {
		return true
	}
	for _, r := range f.Added {
		if strings.Contains(strings.ToLower(r), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(f.Directive), term)
}

// PlanCmd runs the linter and builds the plan in the background.
func PlanCmd(ctx context.Context, p *patch.Patcher) tea.Cmd {
	return func() tea.Msg {
		plan, err := p.Plan(ctx)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgPlanReady(plan)
	}
}

// ApplyCmd writes plan to disk.
func ApplyCmd(ctx context.Context, p *patch.Patcher, plan model.Plan) tea.Cmd {
	return func() tea.Msg {
		applied, err := p.Apply(ctx, plan)
		if err != nil {
			return MsgApplyFailed{Applied: applied, Err: err}
		}
		return MsgApplied(applied)
	}
}
