package converter

import "fmt"

// delegateHandler receives the line and every match of the rule's pattern,
// and returns the rewritten line.
type delegateHandler func(s *state, line string, matches []string) (string, error)

var delegateHandlers = map[handlerID]delegateHandler{
	handlerLink: (*state).handleLinks,
}

// convertInlineMarkup applies every inline rule to the line in table order.
func (s *state) convertInlineMarkup(line string) (string, error) {
	for _, r := range inlineRules {
		switch r.action {
		case actionRewrite:
			line = r.pattern.ReplaceAllString(line, r.template)

		case actionNotice:
			if r.pattern.MatchString(line) {
				s.addNotice(r.notice, r.message)
			}

		case actionDelegate:
			matches := r.pattern.FindAllString(line, -1)
			if len(matches) == 0 {
				continue
			}
			handler, ok := delegateHandlers[r.handler]
			if !ok {
				return "", fmt.Errorf("no handler registered for inline rule %q", r.pattern)
			}
			rewritten, err := handler(s, line, matches)
			if err != nil {
				return "", err
			}
			line = rewritten
		}
	}

	return line, nil
}
