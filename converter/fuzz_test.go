package converter

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func FuzzConvertWiki(f *testing.F) {
	seeds := []string{
		"",
		"====== Title ======",
		"  * item\n  - one\n   * nested",
		"^ A ^ B ^\n| 1 | 2 |",
		"<code php>\n<?php echo 1; ?>\n</code>",
		"[[ns:page|Label]] {{:ns:img.png?50|Alt}}",
		"= a = b\n1. x\n//em// <b>",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	conv, err := New(Config{FS: afero.NewMemMapFs()})
	if err != nil {
		f.Fatalf("failed to create converter: %v", err)
	}

	f.Fuzz(func(t *testing.T, input string) {
		result, err := conv.Convert(input)
		if err != nil {
			t.Fatalf("convert returned error: %v", err)
		}
		if result.Markdown != "" && !strings.HasSuffix(result.Markdown, "\n") {
			t.Fatalf("output not newline terminated: %q", result.Markdown)
		}
		if strings.Contains(result.Markdown, "\r") && !strings.Contains(input, "\r") {
			t.Fatalf("output introduced carriage return")
		}
	})
}
