package lint

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"lintsuppress/internal/model"
)

// record mirrors one element of tslint's --format json output.
type record struct {
	Name          string `json:"name"`
	RuleName      string `json:"ruleName"`
	Failure       string `json:"failure"`
	RuleSeverity  string `json:"ruleSeverity"`
	StartPosition *struct {
		Line int `json:"line"`
	} `json:"startPosition"`
}

// Parser decodes linter JSON output into diagnostics.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a JSON array of diagnostic records. Empty input means the
// linter found nothing.
func (p *Parser) Parse(r io.Reader) ([]model.Diagnostic, error) {
	br := bufio.NewReader(r)
	if empty, err := onlyWhitespace(br); err != nil {
		return nil, err
	} else if empty {
		return nil, nil
	}

	dec := json.NewDecoder(br)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("decode diagnostics: expected array, got %v", tok)
	}

	var diags []model.Diagnostic
	for i := 0; dec.More(); i++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode diagnostic %d: %w", i, err)
		}
		if rec.Name == "" || rec.RuleName == "" {
			return nil, fmt.Errorf("diagnostic %d: missing file or rule name", i)
		}
		d := model.Diagnostic{
			File:     rec.Name,
			Rule:     rec.RuleName,
			Failure:  rec.Failure,
			Severity: rec.RuleSeverity,
			Line:     -1,
		}
		if rec.StartPosition != nil {
			d.Line = rec.StartPosition.Line
		}
		diags = append(diags, d)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}
	return diags, nil
}

// onlyWhitespace reports whether br holds nothing but JSON whitespace,
// leaving the first significant byte unread.
func onlyWhitespace(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("read diagnostics: %w", err)
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return false, br.UnreadByte()
	}
}
