package converter

import (
	"regexp"
	"strings"
)

// cleanup runs the post-translation rules over the whole intermediate
// output. Each rule sees the output of the one before it. Lines inside
// fenced code are left alone by every rule except fence conversion.
func (s *state) cleanup(lines []outputLine) (string, error) {
	markFenced(lines, internalFenceRe)
	escapeInlineHTML(lines)
	repairUnbalancedHeadings(lines)
	lines = convertCodeFences(lines)

	markFenced(lines, markdownFenceRe)
	lines = blankLineAfterHeadings(lines)
	lines = blankLineBeforeBullets(lines)

	for i := range lines {
		if lines[i].code {
			continue
		}
		text := s.apiLinkRe.ReplaceAllString(lines[i].text, "`[api:${1}]`")
		lines[i].text = convertEmphasis(text)
	}

	if err := s.relocateImages(lines); err != nil {
		return "", err
	}

	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.text
	}
	return strings.Join(texts, "\n"), nil
}

var markdownFenceRe = regexp.MustCompile("^```")

// markFenced flags the lines strictly between an opening and a closing
// fence. Fence lines themselves are not flagged.
func markFenced(lines []outputLine, fence *regexp.Regexp) {
	inside := false
	for i := range lines {
		if fence.MatchString(lines[i].text) {
			inside = !inside
			lines[i].code = false
			continue
		}
		lines[i].code = inside
	}
}

// blankLine is an inserted empty line attributed to the line it precedes
// or follows.
func blankLine(near outputLine) outputLine {
	return outputLine{source: near.source}
}

// escapeInlineHTML wraps HTML-like tags, along with any emphasis or quote
// characters hugging them, in backticks. Tab-indented lines are skipped.
func escapeInlineHTML(lines []outputLine) {
	for i := range lines {
		if lines[i].code || strings.HasPrefix(lines[i].text, "\t") {
			continue
		}
		lines[i].text = inlineHTMLRe.ReplaceAllString(lines[i].text, "`${1}`")
	}
}

func repairUnbalancedHeadings(lines []outputLine) {
	for i := range lines {
		if lines[i].code || !strings.HasPrefix(lines[i].text, "=") {
			continue
		}
		text := lines[i].text
		for _, r := range unbalancedHeadingRules {
			text = r.pattern.ReplaceAllString(text, r.template)
		}
		lines[i].text = text
	}
}

// convertCodeFences turns internal "~~~" markers into backtick fences,
// carrying the language tag on opening fences and separating an opening
// fence from a preceding non-blank line.
func convertCodeFences(lines []outputLine) []outputLine {
	out := make([]outputLine, 0, len(lines))
	inside := false
	for i, line := range lines {
		m := internalFenceRe.FindStringSubmatch(line.text)
		if m == nil {
			out = append(out, line)
			continue
		}

		if inside {
			line.text = "```"
			out = append(out, line)
			inside = false
			continue
		}

		if i > 0 && lines[i-1].text != "" {
			out = append(out, blankLine(line))
		}
		line.text = "```" + m[1]
		out = append(out, line)
		inside = true
	}
	return out
}

func blankLineAfterHeadings(lines []outputLine) []outputLine {
	out := make([]outputLine, 0, len(lines))
	for i, line := range lines {
		out = append(out, line)
		if line.code || !headingLineRe.MatchString(line.text) {
			continue
		}
		if i+1 < len(lines) && lines[i+1].text != "" {
			out = append(out, blankLine(line))
		}
	}
	return out
}

func blankLineBeforeBullets(lines []outputLine) []outputLine {
	out := make([]outputLine, 0, len(lines))
	for i, line := range lines {
		if !line.code && i > 0 && bulletLineRe.MatchString(line.text) {
			previous := lines[i-1].text
			if previous != "" && !bulletLineRe.MatchString(previous) {
				out = append(out, blankLine(line))
			}
		}
		out = append(out, line)
	}
	return out
}

func convertEmphasis(line string) string {
	line = emphasisRe.ReplaceAllString(line, " *${1}*")
	return emphasisStartRe.ReplaceAllString(line, "*${1}*")
}
