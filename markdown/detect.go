// Package markdown holds helpers for text that is, or is about to become,
// Markdown: a detector for documents that are already Markdown and an HTML
// preview renderer.
package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rgonek/dokuwiki-md-converter/converter"
)

// Heuristic names the rule that flagged a document as Markdown.
type Heuristic string

const (
	HeuristicFencedCode      Heuristic = "fenced_code"
	HeuristicATXHeading      Heuristic = "atx_heading"
	HeuristicSetextUnderline Heuristic = "setext_underline"
)

// Signal records the first line that made a document look like Markdown.
type Signal struct {
	Heuristic Heuristic `json:"heuristic"`
	Line      int       `json:"line"`
	Text      string    `json:"text"`
}

func (s Signal) String() string {
	return fmt.Sprintf("%s at line %d: %q", s.Heuristic, s.Line, s.Text)
}

var (
	atxHeadingRe      = regexp.MustCompile(`^#+\s+`)
	setextUnderlineRe = regexp.MustCompile(`^[=-]+$`)
)

// maxLineSize bounds a single line read by DetectReader.
const maxLineSize = 1 << 20

// Detect reports whether text already looks like Markdown.
func Detect(text string) bool {
	_, ok := DetectSignal(text)
	return ok
}

// DetectSignal is Detect, also returning the first matching line.
func DetectSignal(text string) (Signal, bool) {
	for i, line := range converter.SplitLines(text) {
		if heuristic, ok := classify(line); ok {
			return Signal{Heuristic: heuristic, Line: i + 1, Text: line}, true
		}
	}
	return Signal{}, false
}

// DetectReader scans r line by line and stops at the first match.
func DetectReader(r io.Reader) (Signal, bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanAnyLineEnding)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if heuristic, ok := classify(text); ok {
			return Signal{Heuristic: heuristic, Line: line, Text: text}, true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return Signal{}, false, fmt.Errorf("scan document: %w", err)
	}
	return Signal{}, false, nil
}

func classify(line string) (Heuristic, bool) {
	switch {
	case strings.Contains(line, "```"):
		return HeuristicFencedCode, true
	case atxHeadingRe.MatchString(line):
		return HeuristicATXHeading, true
	case setextUnderlineRe.MatchString(line):
		return HeuristicSetextUnderline, true
	}
	return "", false
}

// scanAnyLineEnding is bufio.ScanLines extended to treat a lone CR as a
// line terminator.
func scanAnyLineEnding(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
