package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateInternalLink(t *testing.T) {
	tests := []struct {
		target   string
		expected string
	}{
		{target: "http://example.com/a:b", expected: "http://example.com/a:b"},
		{target: "https://example.com", expected: "https://example.com"},
		{target: "themes:developing", expected: "themes/developing"},
		{target: ":Requirements", expected: "Requirements"},
		{target: ":reference:site-reports", expected: "reference/site-reports"},
		{target: "plain", expected: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.expected, TranslateInternalLink(tt.target))
		})
	}
}

func TestConvertLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "root namespace", input: "[[:Requirements]]", expected: "[:Requirements](Requirements)\n"},
		{name: "labelled", input: "[[themes:developing|Developing themes]]", expected: "[Developing themes](themes/developing)\n"},
		{name: "external", input: "[[http://example.com|Example]]", expected: "[Example](http://example.com)\n"},
		{name: "two on a line", input: "[[a]] or [[b:c|C]]", expected: "[a](a) or [C](b/c)\n"},
		{name: "label keeps later pipes", input: "[[a|b|c]]", expected: "[b|c](a)\n"},
	}

	conv := newTestConverter(t, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := conv.Convert(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Markdown)
		})
	}
}

func TestConvertLinkWithImageLabel(t *testing.T) {
	conv := newTestConverter(t, Config{})

	result, err := conv.Convert("[[page|{{logo.png}}]]")
	require.NoError(t, err)

	types := make([]NoticeType, 0, len(result.Notices))
	for _, notice := range result.Notices {
		types = append(types, notice.Type)
	}
	assert.Equal(t, []NoticeType{NoticeUnhandledSyntax, NoticeUnhandledSyntax, NoticeMissingImage}, types)
	assert.Contains(t, result.Notices[1].Message, "Image inside link")
}
