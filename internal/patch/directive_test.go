package patch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var tsOpts = Options{
	HeaderMarker:    "// Copyright",
	DirectivePrefix: "// tslint:disable:",
}

// patchLines runs PatchFile over LF-terminated lines.
func patchLines(lines []string, rules []string) Edit {
	ends := make([]string, len(lines))
	for i := range ends {
		ends[i] = "\n"
	}
	return PatchFile(SourceFile{Lines: lines, Endings: ends, EOL: "\n"}, rules, tsOpts)
}

func TestAnchor(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  int
	}{
		{"no header", []string{"import x from 'x';"}, 0},
		{"header", []string{"// Copyright 2017 Terrain Data, Inc.", "code"}, 1},
		{"indented header", []string{"  // Copyright 2018", "code"}, 1},
		{"two header lines", []string{"// Copyright 2017 A", "// Copyright 2018 B", "code"}, 2},
		{"block comment is not a header", []string{"/*", "Copyright (c) 2018", "*/"}, 0},
		{"empty file", nil, 0},
		{"only header", []string{"// Copyright 2017"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Anchor(tc.lines, tsOpts.HeaderMarker))
		})
	}
	assert.Equal(t, 0, Anchor([]string{"// Copyright"}, ""))
}

func TestPatchLines(t *testing.T) {
	cases := []struct {
		name    string
		in      []string
		rules   []string
		want    []string
		line    int
		added   []string
		created bool
	}{
		{
			name:    "header followed by code",
			in:      []string{"// Copyright 2017 Terrain Data, Inc.", "const a: any = 1;"},
			rules:   []string{"no-any"},
			want:    []string{"// Copyright 2017 Terrain Data, Inc.", "// tslint:disable:no-any", "", "const a: any = 1;"},
			line:    2,
			added:   []string{"no-any"},
			created: true,
		},
		{
			name:    "no header anchors at top",
			in:      []string{"import x = require('x');", "var y = x;"},
			rules:   []string{"no-var-keyword", "no-var-requires"},
			want:    []string{"// tslint:disable:no-var-keyword no-var-requires", "", "import x = require('x');", "var y = x;"},
			line:    1,
			added:   []string{"no-var-keyword", "no-var-requires"},
			created: true,
		},
		{
			name:    "header blank code reuses the blank",
			in:      []string{"// Copyright 2018 Terrain Data, Inc.", "", "", "code();"},
			rules:   []string{"no-console"},
			want:    []string{"// Copyright 2018 Terrain Data, Inc.", "// tslint:disable:no-console", "", "code();"},
			line:    2,
			added:   []string{"no-console"},
			created: true,
		},
		{
			name:  "existing directive is extended",
			in:    []string{"// Copyright 2017 Terrain Data, Inc.", "", "// tslint:disable:no-var-requires", "", "code();"},
			rules: []string{"strict-boolean-expressions", "max-line-length"},
			want: []string{"// Copyright 2017 Terrain Data, Inc.", "",
				"// tslint:disable:no-var-requires max-line-length strict-boolean-expressions", "", "code();"},
			line:  3,
			added: []string{"max-line-length", "strict-boolean-expressions"},
		},
		{
			name:  "listed rules are not repeated",
			in:    []string{"// tslint:disable:no-any no-var", "", "code();"},
			rules: []string{"no-any", "no-shadow"},
			want:  []string{"// tslint:disable:no-any no-var no-shadow", "", "code();"},
			line:  1,
			added: []string{"no-shadow"},
		},
		{
			name:  "directive without blank gets one",
			in:    []string{"// tslint:disable:no-any", "code();"},
			rules: []string{"no-var"},
			want:  []string{"// tslint:disable:no-any no-var", "", "code();"},
			line:  1,
			added: []string{"no-var"},
		},
		{
			name:  "extra blanks after directive collapse",
			in:    []string{"// tslint:disable:no-any  ", "", "  ", "", "code();"},
			rules: []string{"no-var"},
			want:  []string{"// tslint:disable:no-any no-var", "", "code();"},
			line:  1,
			added: []string{"no-var"},
		},
		{
			name:  "empty directive is filled",
			in:    []string{"// tslint:disable:", "", "code();"},
			rules: []string{"no-any"},
			want:  []string{"// tslint:disable:no-any", "", "code();"},
			line:  1,
			added: []string{"no-any"},
		},
		{
			name:    "next-line directive is not file level",
			in:      []string{"// tslint:disable-next-line", "const a: any = 1;"},
			rules:   []string{"no-any"},
			want:    []string{"// tslint:disable:no-any", "", "// tslint:disable-next-line", "const a: any = 1;"},
			line:    1,
			added:   []string{"no-any"},
			created: true,
		},
		{
			name:    "empty file",
			in:      nil,
			rules:   []string{"no-any"},
			want:    []string{"// tslint:disable:no-any", ""},
			line:    1,
			added:   []string{"no-any"},
			created: true,
		},
		{
			name:    "duplicate and blank rules collapse",
			in:      []string{"code();"},
			rules:   []string{"no-var", " ", "no-any", "no-var"},
			want:    []string{"// tslint:disable:no-any no-var", "", "code();"},
			line:    1,
			added:   []string{"no-any", "no-var"},
			created: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := append([]string(nil), tc.in...)
			edit := patchLines(in, tc.rules)

			if diff := cmp.Diff(tc.want, edit.Lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.line, edit.Line)
			assert.Equal(t, tc.want[tc.line-1], edit.Directive)
			assert.Equal(t, tc.added, edit.Added)
			assert.Equal(t, tc.created, edit.Created)
			assert.True(t, edit.Changed)
			assert.Equal(t, tc.in, in, "input must not be modified")
		})
	}
}

func TestPatchLines_AlreadySuppressed(t *testing.T) {
	in := []string{"// Copyright 2017", "", "// tslint:disable:no-any", "", "code();"}
	edit := patchLines(in, []string{"no-any"})

	assert.False(t, edit.Changed)
	assert.Empty(t, edit.Added)
	assert.Equal(t, 3, edit.Line)
	assert.Equal(t, in, edit.Lines)
}

func TestPatchLines_NoRules(t *testing.T) {
	in := []string{"code();"}
	edit := patchLines(in, nil)

	assert.False(t, edit.Changed)
	assert.Equal(t, in, edit.Lines)
}

func TestPatchLines_Rerun(t *testing.T) {
	first := patchLines([]string{"// Copyright 2017", "code();"}, []string{"no-any"})
	second := patchLines(first.Lines, []string{"no-var"})

	want := []string{"// Copyright 2017", "// tslint:disable:no-any no-var", "", "code();"}
	if diff := cmp.Diff(want, second.Lines); diff != "" {
		t.Errorf("rerun mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, second.Created)
}

func TestPatchFile_LineEndings(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		rules []string
		want  string
		line  int
	}{
		{
			name:  "one crlf in an lf file",
			in:    "// Copyright 2017 Terrain Data, Inc.\nimport a from 'a';\nconst x: any = 1;\nconst y = 2;\r\nexport default y;\n",
			rules: []string{"no-any"},
			want:  "// Copyright 2017 Terrain Data, Inc.\n// tslint:disable:no-any\n\nimport a from 'a';\nconst x: any = 1;\nconst y = 2;\r\nexport default y;\n",
			line:  2,
		},
		{
			name:  "extended directive keeps its terminator",
			in:    "// Copyright\r\n\r\n// tslint:disable:a\r\n\ncode();\r\n",
			rules: []string{"b"},
			want:  "// Copyright\r\n\r\n// tslint:disable:a b\r\n\ncode();\r\n",
			line:  3,
		},
		{
			name:  "kept blank keeps its terminator",
			in:    "// Copyright\n\r\ncode();\n",
			rules: []string{"no-any"},
			want:  "// Copyright\n// tslint:disable:no-any\n\r\ncode();\n",
			line:  2,
		},
		{
			name:  "unterminated header",
			in:    "// Copyright 2017",
			rules: []string{"no-any"},
			want:  "// Copyright 2017\n// tslint:disable:no-any\n",
			line:  2,
		},
		{
			name:  "crlf file without final newline",
			in:    "// Copyright 2018\r\ncode();",
			rules: []string{"no-any"},
			want:  "// Copyright 2018\r\n// tslint:disable:no-any\r\n\r\ncode();",
			line:  2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			edit := PatchFile(SplitLines([]byte(tc.in)), tc.rules, tsOpts)

			got := SourceFile{Lines: edit.Lines, Endings: edit.Endings}.Bytes()
			if diff := cmp.Diff(tc.want, string(got)); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.line, edit.Line)
			assert.True(t, edit.Changed)
		})
	}
}

func TestPatchFile_UnchangedLineEndings(t *testing.T) {
	in := "// Copyright 2017\r\n\r\n// tslint:disable:no-any\n\ncode();"
	edit := PatchFile(SplitLines([]byte(in)), []string{"no-any"}, tsOpts)

	assert.False(t, edit.Changed)
	assert.Equal(t, in, string(SourceFile{Lines: edit.Lines, Endings: edit.Endings}.Bytes()))
}

func TestDirectiveRules(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, DirectiveRules("  // tslint:disable:a  b ", tsOpts.DirectivePrefix))
	assert.Empty(t, DirectiveRules("// tslint:disable:", tsOpts.DirectivePrefix))
	assert.False(t, IsDirective("// tslint:disable:a", ""))
	assert.Equal(t, "// tslint:disable:a b", FormatDirective(tsOpts.DirectivePrefix, []string{"a", "b"}))
}
