package converter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Converter converts DokuWiki markup to Markdown Extra.
type Converter struct {
	config    Config
	apiLinkRe *regexp.Regexp
}

// lineMode is the block context a source line is interpreted in.
type lineMode int

const (
	modeText lineMode = iota
	modeCode
	modeTable
)

type listType int

const (
	listNone listType = iota
	listUnordered
	listOrdered
)

// outputLine is one line of intermediate output together with the source
// line it was produced from. code marks lines inside a fenced block.
type outputLine struct {
	text   string
	source int
	code   bool
}

// state is the per-document conversion context. It is never shared
// between conversions.
type state struct {
	ctx         context.Context
	config      Config
	apiLinkRe   *regexp.Regexp
	sourcePath  string
	outputPath  string
	lineNumber  int
	mode        lineMode
	listType    listType
	listCount   int
	table       [][]string
	tableLines  []int
	notices     []Notice
	relocations []Relocation
}

// New creates a new Converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults().normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid converter config: %w", err)
	}

	return &Converter{
		config:    cfg,
		apiLinkRe: compileAPILinkPattern(cfg.APIHost),
	}, nil
}

// Convert takes a DokuWiki document and returns Markdown Extra.
func (c *Converter) Convert(input string) (Result, error) {
	return c.ConvertWithContext(context.Background(), input, ConvertOptions{})
}

// ConvertWithContext converts a document with cancellation and per-call options.
func (c *Converter) ConvertWithContext(ctx context.Context, input string, opts ConvertOptions) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &state{
		ctx:        ctx,
		config:     c.config,
		apiLinkRe:  c.apiLinkRe,
		sourcePath: opts.SourcePath,
		outputPath: opts.OutputPath,
	}

	if err := s.checkContext(); err != nil {
		return Result{}, err
	}

	intermediate, err := s.convertLines(SplitLines(input))
	if err != nil {
		return Result{}, err
	}
	if err := s.checkContext(); err != nil {
		return Result{}, err
	}

	markdown, err := s.cleanup(intermediate)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Markdown:    finalizeOutput(markdown),
		Notices:     s.notices,
		Relocations: s.relocations,
	}, nil
}

// SplitLines normalizes CR LF and lone CR line endings to LF and splits
// the text into lines. A trailing newline yields a final empty line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func (s *state) checkContext() error {
	if s.ctx == nil {
		return nil
	}
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return nil
	}
}

func (s *state) addNotice(noticeType NoticeType, message string) {
	s.notices = append(s.notices, Notice{
		Type:    noticeType,
		File:    s.sourcePath,
		Line:    s.lineNumber,
		Message: message,
	})
}

// convertLines runs the line-mode machine over the document and returns
// the intermediate lines handed to cleanup.
func (s *state) convertLines(lines []string) ([]outputLine, error) {
	out := make([]outputLine, 0, len(lines))

	for _, line := range lines {
		if err := s.checkContext(); err != nil {
			return nil, err
		}
		s.lineNumber++

		previous := s.mode
		trimmed := strings.TrimSpace(line)
		line = s.transition(line, trimmed)

		if previous == modeTable && s.mode != modeTable {
			out = s.flushTable(out)
		}

		switch s.mode {
		case modeCode:
			out = append(out, outputLine{text: line, source: s.lineNumber})

		case modeTable:
			row, err := s.convertTableRow(line, trimmed)
			if err != nil {
				return nil, err
			}
			s.table = append(s.table, row)
			s.tableLines = append(s.tableLines, s.lineNumber)

		default:
			converted, err := s.convertText(line)
			if err != nil {
				return nil, err
			}
			out = append(out, outputLine{text: converted, source: s.lineNumber})
		}
	}

	if s.mode == modeTable {
		out = s.flushTable(out)
	}

	return out, nil
}

// flushTable renders the buffered table. The underline is attributed to
// the first row's source line.
func (s *state) flushTable(out []outputLine) []outputLine {
	if len(s.table) == 0 {
		return out
	}

	rendered := strings.Split(strings.TrimSuffix(renderTable(s.table), "\n"), "\n")
	for i, text := range rendered {
		source := s.tableLines[0]
		if i > 1 {
			source = s.tableLines[i-1]
		}
		out = append(out, outputLine{text: text, source: source})
	}

	s.table = nil
	s.tableLines = nil
	return out
}

// transition updates the line mode for the current line. Code markers are
// replaced by the internal fence marker; every other line is returned as is.
func (s *state) transition(line, trimmed string) string {
	switch {
	case s.mode != modeCode && codeOpenRe.MatchString(trimmed):
		s.mode = modeCode
		s.listType = listNone
		return fenceMarker(strings.TrimSpace(codeOpenRe.FindStringSubmatch(trimmed)[1]))

	case s.mode == modeCode && trimmed == "</code>":
		s.mode = modeText
		return fenceMarker("")

	case s.mode == modeText && isTableLine(trimmed):
		s.mode = modeTable
		s.table = nil
		s.tableLines = nil

	case s.mode == modeTable && !isTableLine(trimmed):
		s.mode = modeText
	}

	return line
}

func fenceMarker(lang string) string {
	if lang == "" {
		return "~~~"
	}
	return "~~~ {" + lang + "}"
}

func isTableLine(trimmed string) bool {
	return trimmed != "" && (trimmed[0] == '^' || trimmed[0] == '|')
}

func (s *state) convertText(line string) (string, error) {
	line = expandTabs(line, s.config.TabWidth)

	converted, err := s.convertInlineMarkup(line)
	if err != nil {
		return "", err
	}

	return s.convertListItem(converted), nil
}

// expandTabs replaces each tab with width spaces.
func expandTabs(line string, width int) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", width))
}

// finalizeOutput trims trailing newlines and terminates non-empty output
// with exactly one.
func finalizeOutput(markdown string) string {
	markdown = strings.TrimRight(markdown, "\n")
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	return markdown + "\n"
}
