package model

import (
	"sort"
)

// Version is the lintsuppress release version.
const Version = "v0.3.1"

// Diagnostic is a single rule violation reported by the linter.
type Diagnostic struct {
	File     string // File the violation was found in
	Rule     string // Rule identifier (e.g. no-any)
	Failure  string // Human readable message, may be empty
	Severity string // "error" or "warning" as reported
	Line     int    // 0-based start line, -1 if unknown
}

// FileSuppressionSet maps a file path to the set of rules to suppress in it.
type FileSuppressionSet map[string]map[string]struct{}

// NewFileSuppressionSet groups diagnostics by file.
func NewFileSuppressionSet(diags []Diagnostic) FileSuppressionSet {
	set := make(FileSuppressionSet)
	for _, d := range diags {
		set.Add(d.File, d.Rule)
	}
	return set
}

// Add records rule for file.
func (s FileSuppressionSet) Add(file, rule string) {
	rules, ok := s[file]
	if !ok {
		rules = make(map[string]struct{})
		s[file] = rules
	}
	rules[rule] = struct{}{}
}

// Files returns the flagged files in sorted order.
func (s FileSuppressionSet) Files() []string {
	files := make([]string, 0, len(s))
	for f := range s {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Rules returns the distinct rules for file in sorted order.
func (s FileSuppressionSet) Rules(file string) []string {
	rules := make([]string, 0, len(s[file]))
	for r := range s[file] {
		rules = append(rules, r)
	}
	sort.Strings(rules)
	return rules
}

// Fix describes the edit made (or planned) for one file.
type Fix struct {
	Path      string   // Absolute path of the patched file
	Line      int      // 1-based line of the directive after the edit
	Directive string   // Directive line as it reads after the edit
	Added     []string // Rules added by this edit
	Created   bool     // True if a new directive line was inserted
	Changed   bool     // False if the file already had everything it needs

	Lines   []string `json:"-"` // Patched content
	Endings []string `json:"-"` // Terminator of each line in Lines
	Hash    string   `json:"-"` // sha256 of the content the fix was planned against

	Failures []string // Linter messages behind this fix, for reporting
}

// Plan is the full set of edits for one linter run.
type Plan struct {
	Fixes       []Fix
	Diagnostics int // Number of diagnostics the linter reported
}

// Changed returns the fixes that would modify a file.
func (p Plan) Changed() []Fix {
	var out []Fix
	for _, f := range p.Fixes {
		if f.Changed {
			out = append(out, f)
		}
	}
	return out
}

// Find returns the fix for path, if planned.
func (p Plan) Find(path string) (Fix, bool) {
	for _, f := range p.Fixes {
		if f.Path == path {
			return f, true
		}
	}
	return Fix{}, false
}
