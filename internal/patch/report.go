package patch

import (
	"fmt"
	"sort"
	"strings"

	"lintsuppress/internal/model"
)

// GenerateReport renders plan as plain text.
func GenerateReport(plan model.Plan, verbose bool) string {
	var b strings.Builder

	changed := plan.Changed()
	fmt.Fprintf(&b, "lintsuppress %s\n", model.Version)
	fmt.Fprintf(&b, "Diagnostics: %d\n", plan.Diagnostics)
	fmt.Fprintf(&b, "Files flagged: %d, to patch: %d\n", len(plan.Fixes), len(changed))

	if len(plan.Fixes) == 0 {
		b.WriteString("\nNothing to suppress.\n")
		return b.String()
	}

	b.WriteString("\nFiles:\n")
	for _, f := range plan.Fixes {
		action := "extend"
		switch {
		case !f.Changed:
			action = "keep"
		case f.Created:
			action = "insert"
		}
		fmt.Fprintf(&b, "  %s %-6s %s:%d  %s\n", model.FixIcon(f), action, f.Path, f.Line, f.Directive)
		if verbose {
			for _, msg := range f.Failures {
				fmt.Fprintf(&b, "           - %s\n", msg)
			}
		}
	}

	counts := make(map[string]int)
	for _, f := range plan.Fixes {
		for _, r := range f.Added {
			counts[r]++
		}
	}
	if len(counts) > 0 {
		rules := make([]string, 0, len(counts))
		for r := range counts {
			rules = append(rules, r)
		}
		sort.Slice(rules, func(i, j int) bool {
			if counts[rules[i]] != counts[rules[j]] {
				return counts[rules[i]] > counts[rules[j]]
			}
			return rules[i] < rules[j]
		})

		b.WriteString("\nRules newly suppressed (files):\n")
		for _, r := range rules {
			fmt.Fprintf(&b, "  %4d  %s\n", counts[r], r)
		}
	}
	return b.String()
}
