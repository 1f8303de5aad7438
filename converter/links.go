package converter

import (
	"strings"
)

// handleLinks rewrites each [[target|label]] match into a Markdown link.
func (s *state) handleLinks(line string, matches []string) (string, error) {
	for _, match := range matches {
		if err := s.checkContext(); err != nil {
			return "", err
		}

		link := match[2 : len(match)-2]
		target, label, hasLabel := strings.Cut(link, "|")
		if !hasLabel {
			label = target
		} else if strings.Contains(label, "{{") {
			s.addNotice(NoticeUnhandledSyntax, "Image inside link not translated, requires manual editing")
		}

		replacement, err := s.renderLink(target, label)
		if err != nil {
			return "", err
		}
		line = strings.ReplaceAll(line, match, replacement)
	}

	return line, nil
}

func (s *state) renderLink(target, label string) (string, error) {
	href := TranslateInternalLink(target)

	_, anchor := splitAnchor(target)
	hookOutput, handled, err := s.applyLinkRenderHook(LinkRenderInput{
		SourcePath: s.sourcePath,
		Target:     target,
		Href:       href,
		Label:      label,
		Anchor:     anchor,
	})
	if err != nil {
		return "", err
	}
	if handled {
		if hookOutput.TextOnly {
			return label, nil
		}
		href = hookOutput.Href
	}

	return "[" + label + "](" + href + ")", nil
}

// TranslateInternalLink maps a wiki link target to a relative Markdown
// link target. Absolute http(s) targets pass through; for namespaced
// targets the root colon is dropped and the remaining colons become
// path separators.
func TranslateInternalLink(target string) string {
	if strings.HasPrefix(target, "http:") || strings.HasPrefix(target, "https") {
		return target
	}
	return strings.ReplaceAll(strings.TrimPrefix(target, ":"), ":", "/")
}
