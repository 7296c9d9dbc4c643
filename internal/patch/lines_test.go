package patch

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines_RoundTrip(t *testing.T) {
	cases := map[string]struct {
		in       string
		lines    []string
		endings  []string
		eol      string
		finalEOL bool
	}{
		"lf":            {"a\nb\n", []string{"a", "b"}, []string{"\n", "\n"}, "\n", true},
		"no final eol":  {"a\nb", []string{"a", "b"}, []string{"\n", ""}, "\n", false},
		"crlf":          {"a\r\nb\r\n", []string{"a", "b"}, []string{"\r\n", "\r\n"}, "\r\n", true},
		"blank lines":   {"a\n\n\nb\n", []string{"a", "", "", "b"}, []string{"\n", "\n", "\n", "\n"}, "\n", true},
		"single eol":    {"\n", []string{""}, []string{"\n"}, "\n", true},
		"empty":         {"", nil, nil, "\n", false},
		"crlf no final": {"a\r\nb", []string{"a", "b"}, []string{"\r\n", ""}, "\r\n", false},
		"mixed mostly lf": {
			"// Copyright 2017\nimport a from 'a';\nconst x: any = 1;\nconst y = 2;\r\nexport default y;\n",
			[]string{"// Copyright 2017", "import a from 'a';", "const x: any = 1;", "const y = 2;", "export default y;"},
			[]string{"\n", "\n", "\n", "\r\n", "\n"},
			"\n", true,
		},
		"mixed mostly crlf": {"a\r\nb\nc\r\n", []string{"a", "b", "c"}, []string{"\r\n", "\n", "\r\n"}, "\r\n", true},
		"lone cr":           {"a\rb\n", []string{"a\rb"}, []string{"\n"}, "\n", true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			sf := SplitLines([]byte(tc.in))
			assert.Equal(t, tc.lines, sf.Lines)
			assert.Equal(t, tc.endings, sf.Endings)
			assert.Equal(t, tc.eol, sf.EOL)
			assert.Equal(t, tc.finalEOL, sf.FinalEOL())
			assert.Equal(t, tc.in, string(sf.Bytes()))
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0600))

	require.NoError(t, WriteFileAtomic(path, []byte("new\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "a.ts")
	assert.Error(t, WriteFileAtomic(path, []byte("x")))
}
