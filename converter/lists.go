package converter

import (
	"strconv"
	"strings"
)

// convertListItem rewrites indentation-based wiki list syntax and tracks
// ordered list numbering across consecutive items.
func (s *state) convertListItem(line string) string {
	if line == "" {
		return line
	}

	if !strings.HasPrefix(line, "  ") && line[0] != '\t' && strings.TrimSpace(line) != "" {
		s.listType = listNone
		return line
	}

	switch {
	case strings.HasPrefix(line, "  *"):
		s.listType = listUnordered
		return normalizeBullet(line[2:])

	case strings.HasPrefix(line, "  -"):
		if s.listType != listOrdered {
			s.listCount = 1
		}
		s.listType = listOrdered
		item := " " + strconv.Itoa(s.listCount) + ". " + line[3:]
		s.listCount++
		return item

	case strings.HasPrefix(line, "   "):
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "-") {
			s.addNotice(NoticeNestedList, "Possible nested list item, not handled")
		}
		return line

	case strings.HasPrefix(line, "  "):
		return "  " + line
	}

	return line
}

// normalizeBullet makes sure a "*" marker is followed by exactly two
// spaces so that "*text" and "* text" both become "*  text".
func normalizeBullet(item string) string {
	body := strings.TrimPrefix(item, "*")
	switch {
	case strings.HasPrefix(body, "  "):
		return item
	case strings.HasPrefix(body, " "):
		return "* " + body
	default:
		return "*  " + body
	}
}
