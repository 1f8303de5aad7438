package console

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/dokuwiki-md-converter/converter"
	"github.com/rgonek/dokuwiki-md-converter/internal/batch"
)

func TestPrinterNoticesPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	err := p.Notices([]converter.Notice{
		{Type: converter.NoticeNestedList, File: "a.txt", Line: 4, Message: "Possible nested list item, not handled"},
		{Type: converter.NoticeMissingImage, Line: 2, Message: "Original image not found: x.png"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"a.txt:4 nested_list Possible nested list item, not handled\n"+
			"<input>:2 missing_image Original image not found: x.png\n",
		buf.String(),
	)
}

func TestPrinterSummaryPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	err := p.Summary(batch.Summary{
		RunID:     "run-1",
		Converted: 3,
		Copied:    1,
		Failed:    1,
		Notices:   []converter.Notice{{}},
		Failures:  []batch.Failure{{Path: "bad.txt", Err: errors.New("boom")}},
		Duration:  1500 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"run run-1\n"+
			"converted 3\n"+
			"copied    1\n"+
			"skipped   0\n"+
			"notices   1\n"+
			"failed    1\n"+
			"duration  1.5s\n"+
			"failed bad.txt: boom\n",
		buf.String(),
	)
}

func TestIsTerminalRejectsBuffers(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
