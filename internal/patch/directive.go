package patch

import (
	"slices"
	"sort"
	"strings"
)

// Options controls where and how a directive is written.
type Options struct {
	HeaderMarker    string // Prefix of a single-line header to keep on top
	DirectivePrefix string // e.g. "// tslint:disable:"
}

// Edit is the outcome of PatchFile.
type Edit struct {
	Lines     []string
	Endings   []string
	Line      int // 1-based
	Directive string
	Added     []string
	Created   bool
	Changed   bool
}

// Anchor returns the index of the first line after any leading header
// lines. Only single-line headers are recognised; a block comment on top of
// the file is treated as code.
func Anchor(lines []string, marker string) int {
	if marker == "" {
		return 0
	}
	i := 0
	for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), marker) {
		i++
	}
	return i
}

// IsDirective reports whether line is a file-level suppression directive.
func IsDirective(line, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strings.TrimSpace(line), prefix)
}

// DirectiveRules returns the rules listed on a directive line.
func DirectiveRules(line, prefix string) []string {
	rest := strings.TrimPrefix(strings.TrimSpace(line), prefix)
	return strings.Fields(rest)
}

// FormatDirective renders a directive for rules.
func FormatDirective(prefix string, rules []string) string {
	return prefix + strings.Join(rules, " ")
}

// PatchFile suppresses rules in sf. An existing directive sitting at the
// anchor (blank lines aside) is extended, otherwise a new one is inserted at
// the anchor. The directive is always followed by exactly one blank line.
// Untouched lines keep their terminators and inserted lines get sf.EOL.
// sf is not modified.
func PatchFile(sf SourceFile, rules []string, opts Options) Edit {
	rules = uniqueSorted(rules)
	eol := sf.EOL
	if eol == "" {
		eol = "\n"
	}
	out := slices.Clone(sf.Lines)
	ends := make([]string, len(out))
	for i := range ends {
		ends[i] = eol
		if i < len(sf.Endings) {
			ends[i] = sf.Endings[i]
		}
	}
	orig := slices.Clone(ends)
	finalEOL := len(ends) == 0 || ends[len(ends)-1] != ""
	anchor := Anchor(out, opts.HeaderMarker)

	idx := -1
	for j := anchor; j < len(out); j++ {
		if isBlank(out[j]) {
			continue
		}
		if IsDirective(out[j], opts.DirectivePrefix) {
			idx = j
		}
		break
	}

	edit := Edit{}
	switch {
	case idx >= 0:
		existing := DirectiveRules(out[idx], opts.DirectivePrefix)
		for _, r := range rules {
			if !slices.Contains(existing, r) {
				edit.Added = append(edit.Added, r)
			}
		}
		if len(edit.Added) > 0 {
			if len(existing) == 0 {
				indent := out[idx][:len(out[idx])-len(strings.TrimLeft(out[idx], " \t"))]
				out[idx] = indent + FormatDirective(opts.DirectivePrefix, edit.Added)
			} else {
				out[idx] = strings.TrimRight(out[idx], " \t") + " " + strings.Join(edit.Added, " ")
			}
		}
	case len(rules) == 0:
		edit.Lines = out
		edit.Endings = ends
		edit.Line = anchor + 1
		return edit
	default:
		idx = anchor
		edit.Added = rules
		edit.Created = true
		out = slices.Insert(out, idx, FormatDirective(opts.DirectivePrefix, rules))
		ends = slices.Insert(ends, idx, eol)
	}

	out, ends = oneBlankAfter(out, ends, idx, eol)

	// Only the last line may be unterminated, and only if it was before.
	last := len(ends) - 1
	for i := range ends[:last] {
		if ends[i] == "" {
			ends[i] = eol
		}
	}
	switch {
	case !finalEOL:
		ends[last] = ""
	case ends[last] == "":
		ends[last] = eol
	}

	edit.Lines = out
	edit.Endings = ends
	edit.Line = idx + 1
	edit.Directive = out[idx]
	edit.Changed = !slices.Equal(out, sf.Lines) || !slices.Equal(ends, orig)
	return edit
}

// oneBlankAfter collapses the blank lines following idx into a single one.
// A kept blank keeps its terminator.
func oneBlankAfter(lines, ends []string, idx int, eol string) ([]string, []string) {
	end := idx + 1
	for end < len(lines) && isBlank(lines[end]) {
		end++
	}
	blankEnd := eol
	if end > idx+1 {
		blankEnd = ends[idx+1]
	}
	outLines := make([]string, 0, len(lines)+1)
	outLines = append(outLines, lines[:idx+1]...)
	outLines = append(outLines, "")
	outLines = append(outLines, lines[end:]...)

	outEnds := make([]string, 0, len(ends)+1)
	outEnds = append(outEnds, ends[:idx+1]...)
	outEnds = append(outEnds, blankEnd)
	outEnds = append(outEnds, ends[end:]...)
	return outLines, outEnds
}

func uniqueSorted(rules []string) []string {
	seen := make(map[string]struct{}, len(rules))
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
