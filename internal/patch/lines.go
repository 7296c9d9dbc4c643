package patch

import (
	"bytes"
	"strings"
)

// SourceFile is a text file split into lines. Each line keeps its own
// terminator so writing it back reproduces untouched lines byte for byte.
type SourceFile struct {
	Lines   []string // Content without terminators
	Endings []string // Terminator of each line, "" for an unterminated last line
	EOL     string   // Most common terminator, given to inserted lines
}

// SplitLines splits content on "\n". A "\r" before the "\n" belongs to the
// terminator, not to the line.
func SplitLines(content []byte) SourceFile {
	sf := SourceFile{EOL: "\n"}
	s := string(content)
	crlf, lf := 0, 0
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			sf.Lines = append(sf.Lines, s)
			sf.Endings = append(sf.Endings, "")
			break
		}
		line, end := s[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, end = line[:len(line)-1], "\r\n"
			crlf++
		} else {
			lf++
		}
		sf.Lines = append(sf.Lines, line)
		sf.Endings = append(sf.Endings, end)
		s = s[i+1:]
	}
	if crlf > lf {
		sf.EOL = "\r\n"
	}
	return sf
}

// FinalEOL reports whether the last line is terminated.
func (sf SourceFile) FinalEOL() bool {
	n := len(sf.Endings)
	return n > 0 && sf.Endings[n-1] != ""
}

// Bytes joins the lines back into file content.
func (sf SourceFile) Bytes() []byte {
	var b bytes.Buffer
	for i, line := range sf.Lines {
		b.WriteString(line)
		if i < len(sf.Endings) {
			b.WriteString(sf.Endings[i])
		}
	}
	return b.Bytes()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
