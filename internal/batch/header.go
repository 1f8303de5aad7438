package batch

import (
	"bytes"
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var firstHeadingRe = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t#]*$`)

// Header is prepended to every converted document. When the header file
// carries YAML front matter it is re-emitted per document, with title taken
// from the document's first heading unless the header sets one.
type Header struct {
	meta map[string]any
	body string
}

// ParseHeader reads a header file.
func ParseHeader(data []byte) (Header, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return Header{}, fmt.Errorf("parse header front matter: %w", err)
	}
	return Header{meta: meta, body: string(body)}, nil
}

// Apply returns markdown with the header in front of it.
func (h Header) Apply(markdown string) (string, error) {
	var sb strings.Builder

	if len(h.meta) > 0 {
		meta := make(map[string]any, len(h.meta)+1)
		maps.Copy(meta, h.meta)
		if _, ok := meta["title"]; !ok {
			if title := FirstHeading(markdown); title != "" {
				meta["title"] = title
			}
		}

		data, err := yaml.Marshal(meta)
		if err != nil {
			return "", fmt.Errorf("encode front matter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(data)
		sb.WriteString("---\n")
	}

	if body := strings.Trim(h.body, "\n"); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n\n")
	}

	sb.WriteString(markdown)
	return sb.String(), nil
}

// FirstHeading returns the text of the first ATX heading in markdown.
func FirstHeading(markdown string) string {
	m := firstHeadingRe.FindStringSubmatch(markdown)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
