package converter

import (
	"errors"
	"fmt"
	"strings"
)

func (s *state) applyLinkRenderHook(input LinkRenderInput) (LinkRenderOutput, bool, error) {
	if s.config.LinkHook == nil {
		return LinkRenderOutput{}, false, nil
	}

	if err := s.checkContext(); err != nil {
		return LinkRenderOutput{}, false, err
	}

	output, err := s.config.LinkHook(s.ctx, input)
	if err != nil {
		if errors.Is(err, ErrUnresolved) {
			if s.config.ResolutionMode == ResolutionStrict {
				return LinkRenderOutput{}, false, fmt.Errorf("unresolved link reference %q: %w", input.Target, err)
			}
			s.addNotice(
				NoticeUnresolvedReference,
				fmt.Sprintf("unresolved link reference %q; using fallback rendering", input.Target),
			)
			return LinkRenderOutput{}, false, nil
		}
		return LinkRenderOutput{}, false, fmt.Errorf("link hook failed: %w", err)
	}

	if !output.Handled {
		return LinkRenderOutput{}, false, nil
	}

	if err := validateLinkRenderOutput(output); err != nil {
		return LinkRenderOutput{}, false, fmt.Errorf("invalid link hook output: %w", err)
	}

	output.Href = strings.TrimSpace(output.Href)

	return output, true, nil
}

func (s *state) applyImageRenderHook(input ImageRenderInput) (ImageRenderOutput, bool, error) {
	if s.config.ImageHook == nil {
		return ImageRenderOutput{}, false, nil
	}

	if err := s.checkContext(); err != nil {
		return ImageRenderOutput{}, false, err
	}

	output, err := s.config.ImageHook(s.ctx, input)
	if err != nil {
		if errors.Is(err, ErrUnresolved) {
			if s.config.ResolutionMode == ResolutionStrict {
				return ImageRenderOutput{}, false, fmt.Errorf("unresolved image reference %q: %w", input.Target, err)
			}
			s.addNotice(
				NoticeUnresolvedReference,
				fmt.Sprintf("unresolved image reference %q; using fallback rendering", input.Target),
			)
			return ImageRenderOutput{}, false, nil
		}
		return ImageRenderOutput{}, false, fmt.Errorf("image hook failed: %w", err)
	}

	if !output.Handled {
		return ImageRenderOutput{}, false, nil
	}

	if err := validateImageRenderOutput(output); err != nil {
		return ImageRenderOutput{}, false, fmt.Errorf("invalid image hook output: %w", err)
	}

	output.Href = strings.TrimSpace(output.Href)

	return output, true, nil
}

func validateLinkRenderOutput(output LinkRenderOutput) error {
	if output.TextOnly {
		return nil
	}
	if strings.TrimSpace(output.Href) == "" {
		return errors.New("handled link render output requires non-empty href unless textOnly is true")
	}
	return nil
}

func validateImageRenderOutput(output ImageRenderOutput) error {
	if strings.TrimSpace(output.Href) == "" {
		return errors.New("handled image render output requires non-empty href")
	}
	return nil
}

// splitAnchor separates a "page#section" target into its page and section.
func splitAnchor(target string) (string, string) {
	if hashIndex := strings.Index(target, "#"); hashIndex >= 0 {
		return target[:hashIndex], strings.TrimSpace(target[hashIndex+1:])
	}
	return target, ""
}
