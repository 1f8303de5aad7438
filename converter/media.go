package converter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ImageSpec is a parsed {{target|title}} media reference.
type ImageSpec struct {
	Target string
	Title  string
}

// ParseImageSpec splits the inner text of a media reference on its first
// "|". A leading colon on the title is dropped.
func ParseImageSpec(inner string) ImageSpec {
	target, title, _ := strings.Cut(strings.TrimSpace(inner), "|")
	return ImageSpec{
		Target: strings.TrimSpace(target),
		Title:  strings.TrimPrefix(strings.TrimSpace(title), ":"),
	}
}

// relocateImages rewrites every media reference outside fenced code.
// Notices carry the source line the reference came from.
func (s *state) relocateImages(lines []outputLine) error {
	for i := range lines {
		line := lines[i].text
		if lines[i].code || !strings.Contains(line, "{{") {
			continue
		}
		if err := s.checkContext(); err != nil {
			return err
		}
		s.lineNumber = lines[i].source

		locs := imageRe.FindAllStringSubmatchIndex(line, -1)
		if len(locs) == 0 {
			continue
		}

		var sb strings.Builder
		last := 0
		for _, loc := range locs {
			replacement, err := s.translateImage(ParseImageSpec(line[loc[2]:loc[3]]))
			if err != nil {
				return err
			}
			sb.WriteString(line[last:loc[0]])
			sb.WriteString(replacement)
			last = loc[1]
		}
		sb.WriteString(line[last:])
		lines[i].text = sb.String()
	}

	return nil
}

// translateImage renders a media reference as a Markdown image. Local
// references are pointed at the image directory next to the output
// document, and a relocation is recorded when the source file exists.
func (s *state) translateImage(spec ImageSpec) (string, error) {
	if isAbsoluteHTTP(spec.Target) {
		return "![" + spec.Title + "](" + spec.Target + ")", nil
	}

	segments := strings.Split(strings.TrimPrefix(spec.Target, ":"), ":")
	filename := queryStringRe.ReplaceAllString(segments[len(segments)-1], "")
	segments[len(segments)-1] = filename

	source := filepath.Join(append([]string{s.config.ImageRoot}, segments...)...)
	dest := filepath.Join(filepath.Dir(s.outputPath), filepath.FromSlash(s.config.ImageDir), filename)
	href := path.Join(s.config.ImageDir, filename)

	title := spec.Title
	if title == filename {
		title = ""
	}

	skipCopy := false
	hookOutput, handled, err := s.applyImageRenderHook(ImageRenderInput{
		SourcePath: s.sourcePath,
		Target:     spec.Target,
		Filename:   filename,
		Title:      title,
		Href:       href,
	})
	if err != nil {
		return "", err
	}
	if handled {
		href = hookOutput.Href
		skipCopy = hookOutput.SkipCopy
	}

	if !skipCopy {
		s.recordRelocation(spec.Target, filename, source, dest)
	}

	return "![" + title + "](" + href + ")", nil
}

// recordRelocation adds a relocation when source is an existing regular
// file and a missing_image notice otherwise.
func (s *state) recordRelocation(target, filename, source, dest string) {
	if filename == "" {
		s.addNotice(NoticeMissingImage, fmt.Sprintf("Image reference %q has no file name", target))
		return
	}

	info, err := s.config.FS.Stat(source)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.addNotice(NoticeMissingImage, fmt.Sprintf("Original image not found: %s", source))
	case err != nil:
		s.addNotice(NoticeMissingImage, fmt.Sprintf("Original image %s could not be checked: %v", source, err))
	case !info.Mode().IsRegular():
		s.addNotice(NoticeMissingImage, fmt.Sprintf("Original image %s is not a regular file", source))
	default:
		s.relocations = append(s.relocations, Relocation{Source: source, Dest: dest})
	}
}

func isAbsoluteHTTP(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CopyImages executes relocation directives against fsys, creating
// destination directories as needed. Repeated destinations are copied once.
func CopyImages(fsys afero.Fs, relocations []Relocation) error {
	seen := make(map[string]struct{}, len(relocations))
	for _, r := range relocations {
		if _, ok := seen[r.Dest]; ok {
			continue
		}
		seen[r.Dest] = struct{}{}

		if err := fsys.MkdirAll(filepath.Dir(r.Dest), 0o755); err != nil {
			return fmt.Errorf("create image directory for %s: %w", r.Dest, err)
		}
		if err := copyFile(fsys, r.Source, r.Dest); err != nil {
			return fmt.Errorf("copy image %s to %s: %w", r.Source, r.Dest, err)
		}
	}
	return nil
}

func copyFile(fsys afero.Fs, source, dest string) error {
	in, err := fsys.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
