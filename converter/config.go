package converter

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
)

const (
	defaultTabWidth = 4
	defaultAPIHost  = "api.silverstripe.org"
	defaultImageDir = "images"
)

var apiHostRe = regexp.MustCompile(`^[A-Za-z0-9.\-]+(:\d+)?$`)

// Config holds all converter configuration options.
type Config struct {
	// TabWidth is the number of spaces a tab expands to in text lines.
	TabWidth int `json:"tabWidth,omitempty"`
	// APIHost is the API documentation host whose links are shortened to
	// `[api:Name]` references.
	APIHost string `json:"apiHost,omitempty"`
	// ImageRoot is the directory holding the wiki media namespace tree.
	ImageRoot string `json:"imageRoot,omitempty"`
	// ImageDir is the directory, relative to each output document, that
	// relocated images are copied into.
	ImageDir       string          `json:"imageDir,omitempty"`
	ResolutionMode ResolutionMode  `json:"resolutionMode,omitempty"`
	LinkHook       LinkRenderHook  `json:"-"`
	ImageHook      ImageRenderHook `json:"-"`
	// FS is consulted to decide whether a referenced image exists.
	FS afero.Fs `json:"-"`
}

func (c Config) applyDefaults() Config {
	if c.TabWidth == 0 {
		c.TabWidth = defaultTabWidth
	}
	if strings.TrimSpace(c.APIHost) == "" {
		c.APIHost = defaultAPIHost
	}
	if strings.TrimSpace(c.ImageDir) == "" {
		c.ImageDir = defaultImageDir
	}
	if c.ResolutionMode == "" {
		c.ResolutionMode = ResolutionBestEffort
	}
	if c.FS == nil {
		c.FS = afero.NewOsFs()
	}

	return c
}

// normalize trims and cleans path-like fields.
func (c Config) normalize() Config {
	normalized := c
	normalized.APIHost = strings.TrimSpace(c.APIHost)
	if c.ImageRoot != "" {
		normalized.ImageRoot = filepath.Clean(c.ImageRoot)
	}
	normalized.ImageDir = strings.Trim(filepath.ToSlash(c.ImageDir), "/")
	return normalized
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TabWidth, validation.Min(1), validation.Max(16)),
		validation.Field(&c.APIHost, validation.Match(apiHostRe)),
		validation.Field(&c.ImageDir, validation.By(func(value any) error {
			dir, _ := value.(string)
			if filepath.IsAbs(dir) {
				return errors.New("must be relative to the output document")
			}
			if strings.Contains(filepath.ToSlash(dir), "..") {
				return errors.New("must not leave the output directory")
			}
			return nil
		})),
		validation.Field(&c.ResolutionMode, validation.In(ResolutionBestEffort, ResolutionStrict)),
	)
}
