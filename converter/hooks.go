package converter

import (
	"context"
	"errors"
)

// ErrUnresolved indicates that a link or image reference could not be resolved by a hook.
var ErrUnresolved = errors.New("unresolved link or image reference")

// ResolutionMode controls how unresolved hook results are handled.
type ResolutionMode string

const (
	// ResolutionBestEffort records a notice and falls back to built-in behavior.
	ResolutionBestEffort ResolutionMode = "best_effort"
	// ResolutionStrict fails conversion when a hook returns ErrUnresolved.
	ResolutionStrict ResolutionMode = "strict"
)

// ConvertOptions carries optional per-conversion context.
type ConvertOptions struct {
	// SourcePath identifies the document in notices.
	SourcePath string
	// OutputPath is where the converted document will be written. Relocated
	// images are placed relative to its directory.
	OutputPath string
}

// LinkRenderHook can rewrite link output during conversion.
type LinkRenderHook func(ctx context.Context, in LinkRenderInput) (LinkRenderOutput, error)

// ImageRenderHook can override the href of a local image reference.
type ImageRenderHook func(ctx context.Context, in ImageRenderInput) (ImageRenderOutput, error)

// LinkRenderInput describes a wiki link being rendered.
type LinkRenderInput struct {
	SourcePath string
	// Target is the raw wiki target, e.g. "recipes:forms#top".
	Target string
	// Href is the built-in translation of Target.
	Href   string
	Label  string
	Anchor string
}

// LinkRenderOutput contains hook-provided link rendering data.
type LinkRenderOutput struct {
	Href     string
	TextOnly bool
	Handled  bool
}

// ImageRenderInput describes a local image reference being rendered.
type ImageRenderInput struct {
	SourcePath string
	// Target is the raw wiki media id, e.g. ":tutorial:home.png?100".
	Target   string
	Filename string
	Title    string
	// Href is the built-in rewritten reference, e.g. "images/home.png".
	Href string
}

// ImageRenderOutput contains a hook-provided image href.
type ImageRenderOutput struct {
	Href    string
	Handled bool
	// SkipCopy suppresses the relocation directive for this image.
	SkipCopy bool
}
