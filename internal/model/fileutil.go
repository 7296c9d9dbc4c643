package model

import (
	"fmt"
)

// LineContext represents a line from a file with surrounding context
type LineContext struct {
	Before     []string // Lines before the target, closest last
	Target     string   // The actual target line
	After      []string // Lines after the target
	LineNumber int      // 1-based line number of the target
	FirstLine  int      // 1-based line number of Before[0] (or Target)
	ErrorMsg   string   // Error message if the line is out of range
}

// GetLineContext returns the target line with up to radius lines on each side.
func GetLineContext(lines []string, lineNumber, radius int) LineContext {
	result := LineContext{
		LineNumber: lineNumber,
	}

	// Check if line number is valid
	if lineNumber < 1 || lineNumber > len(lines) {
		result.ErrorMsg = fmt.Sprintf("Line %d out of range (file has %d lines)", lineNumber, len(lines))
		return result
	}
	if radius < 0 {
		radius = 0
	}

	idx := lineNumber - 1
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius + 1
	if end > len(lines) {
		end = len(lines)
	}

	result.Target = lines[idx]
	result.Before = append([]string(nil), lines[start:idx]...)
	result.After = append([]string(nil), lines[idx+1:end]...)
	result.FirstLine = start + 1
	return result
}

// FixContext is GetLineContext over the patched content of f.
func FixContext(f Fix, radius int) LineContext {
	return GetLineContext(f.Lines, f.Line, radius)
}
