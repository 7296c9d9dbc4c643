package tui

import (
	"context"

	"lintsuppress/internal/model"
	"lintsuppress/internal/patch"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Ctx     context.Context // Cancels planning and applying
	Patcher *patch.Patcher
	Plan    model.Plan
	Applied []model.Fix
	Loading bool
	Err     error

	// UI State
	SelectedIdx int
	WindowSize  tea.WindowSizeMsg
	Applying    bool
	ShowHelp    bool

	// Search State
	InputMode       bool
	InputBuffer     textinput.Model
	FilteredIndices []int // Indices of Plan.Fixes to show
	SearchActive    bool

	// Components
	DetailsViewport viewport.Model
}

// InitialModel returns the initial state. ctx bounds every linter run and
// write started from the model.
func InitialModel(ctx context.Context, p *patch.Patcher) AppModel {
	ti := textinput.New()
	ti.Placeholder = "rule or path..."
	ti.CharLimit = 80
	ti.Width = 30

	return AppModel{
		Ctx:         ctx,
		Patcher:     p,
		Loading:     true,
		InputBuffer: ti,
		SelectedIdx: 0,
	}
}

// selectedFix returns the fix under the cursor.
func (m AppModel) selectedFix() (model.Fix, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.FilteredIndices) {
		return model.Fix{}, false
	}
	return m.Plan.Fixes[m.FilteredIndices[m.SelectedIdx]], true
}

func (m AppModel) isApplied(path string) bool {
	for _, f := range m.Applied {
		if f.Path == path {
			return true
		}
	}
	return false
}
