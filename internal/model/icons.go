package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconCreated   = "+" // New directive inserted
	IconExtended  = "»" // Rules appended to an existing directive
	IconUnchanged = " " // Nothing to do
	IconApplied   = "✓" // Written to disk
)

// FixIcon picks the list icon for f.
func FixIcon(f Fix) string {
	switch {
	case !f.Changed:
		return IconUnchanged
	case f.Created:
		return IconCreated
	default:
		return IconExtended
	}
}
