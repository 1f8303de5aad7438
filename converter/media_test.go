package converter

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageSpec(t *testing.T) {
	assert.Equal(t, ImageSpec{Target: ":tutorial:home.png?100", Title: "Home"}, ParseImageSpec(" :tutorial:home.png?100|:Home "))
	assert.Equal(t, ImageSpec{Target: "a.png"}, ParseImageSpec("a.png"))
}

func TestConvertImageRelocation(t *testing.T) {
	fs := afero.NewMemMapFs()
	source := filepath.Join("wiki", "media", "tutorial", "home.png")
	require.NoError(t, afero.WriteFile(fs, source, []byte("png"), 0o644))

	conv := newTestConverter(t, Config{FS: fs, ImageRoot: filepath.Join("wiki", "media")})

	result, err := conv.ConvertWithContext(t.Context(), "Intro\n{{ :tutorial:home.png?100 |home.png}}", ConvertOptions{
		SourcePath: "tutorial.txt",
		OutputPath: filepath.Join("out", "docs", "tutorial.md"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Intro\n![](images/home.png)\n", result.Markdown)
	assert.Empty(t, result.Notices)
	assert.Equal(t, []Relocation{{
		Source: source,
		Dest:   filepath.Join("out", "docs", "images", "home.png"),
	}}, result.Relocations)

	require.NoError(t, CopyImages(fs, result.Relocations))
	data, err := afero.ReadFile(fs, filepath.Join("out", "docs", "images", "home.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestConvertImageKeepsDistinctTitle(t *testing.T) {
	conv := newTestConverter(t, Config{})

	result, err := conv.Convert("{{ns:diagram.svg|Request flow}}")
	require.NoError(t, err)
	assert.Equal(t, "![Request flow](images/diagram.svg)\n", result.Markdown)
}

func TestConvertMissingImageNotice(t *testing.T) {
	conv := newTestConverter(t, Config{ImageRoot: "media"})

	result, err := conv.ConvertWithContext(t.Context(), "== Shots ==\n{{:ui:missing.png}}", ConvertOptions{SourcePath: "ui.txt"})
	require.NoError(t, err)
	assert.Equal(t, "##### Shots\n\n![](images/missing.png)\n", result.Markdown)
	assert.Empty(t, result.Relocations)

	require.Len(t, result.Notices, 1)
	assert.Equal(t, NoticeMissingImage, result.Notices[0].Type)
	assert.Equal(t, "ui.txt", result.Notices[0].File)
	assert.Equal(t, 2, result.Notices[0].Line)
	assert.Contains(t, result.Notices[0].Message, filepath.Join("media", "ui", "missing.png"))
}

func TestImageNoticesReportSourceLines(t *testing.T) {
	conv := newTestConverter(t, Config{})

	input := "= Title =\nintro\n{{missing.png}}\n  * item\nafter\n<code>\nx\n</code>\n^ A ^\n| {{cell.png}} |\n{{last.png}}"
	result, err := conv.Convert(input)
	require.NoError(t, err)

	lines := make([]int, 0, len(result.Notices))
	for _, notice := range result.Notices {
		require.Equal(t, NoticeMissingImage, notice.Type)
		lines = append(lines, notice.Line)
	}
	assert.Equal(t, []int{3, 10, 11}, lines)
}

func TestConvertImageDirectoryIsNotRelocated(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(filepath.Join("media", "tutorial"), 0o755))

	conv := newTestConverter(t, Config{FS: fs, ImageRoot: "media"})

	result, err := conv.Convert("{{tutorial}} and {{}} and {{ns:}}")
	require.NoError(t, err)
	assert.Empty(t, result.Relocations)

	require.Len(t, result.Notices, 3)
	for _, notice := range result.Notices {
		assert.Equal(t, NoticeMissingImage, notice.Type)
	}
	assert.Contains(t, result.Notices[0].Message, "is not a regular file")
	assert.Contains(t, result.Notices[1].Message, "has no file name")
	assert.Contains(t, result.Notices[2].Message, "has no file name")

	require.NoError(t, CopyImages(fs, result.Relocations))
}

func TestConvertAbsoluteImageUntouched(t *testing.T) {
	conv := newTestConverter(t, Config{})

	result, err := conv.Convert("{{https://example.com/logo.png|Logo}}")
	require.NoError(t, err)
	assert.Equal(t, "![Logo](https://example.com/logo.png)\n", result.Markdown)
	assert.Empty(t, result.Relocations)
	assert.Empty(t, result.Notices)
}

func TestConvertImageInsideCodeUntouched(t *testing.T) {
	conv := newTestConverter(t, Config{})

	result, err := conv.Convert("<code>\n{{ $Title }}\n</code>")
	require.NoError(t, err)
	assert.Equal(t, "```\n{{ $Title }}\n```\n", result.Markdown)
	assert.Empty(t, result.Notices)
}

func TestCopyImagesSkipsRepeatedDestinations(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.png", []byte("a"), 0o644))

	err := CopyImages(fs, []Relocation{
		{Source: "a.png", Dest: "out/images/a.png"},
		{Source: "a.png", Dest: "out/images/a.png"},
	})
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "out/images/a.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCopyImagesReportsMissingSource(t *testing.T) {
	err := CopyImages(afero.NewMemMapFs(), []Relocation{{Source: "nope.png", Dest: "out/nope.png"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy image nope.png")
}
