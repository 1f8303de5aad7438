package converter

import (
	"regexp"
	"strings"
)

// actionKind is the closed set of things an inline rule can do to a line.
type actionKind int

const (
	actionRewrite actionKind = iota
	actionNotice
	actionDelegate
)

// handlerID names a delegate handler bound to an inline rule.
type handlerID int

const (
	handlerLink handlerID = iota
)

// rule binds a pattern to exactly one action.
type rule struct {
	pattern  *regexp.Regexp
	action   actionKind
	template string
	notice   NoticeType
	message  string
	handler  handlerID
}

func rewriteRule(pattern, template string) rule {
	return rule{pattern: regexp.MustCompile(pattern), action: actionRewrite, template: template}
}

func noticeRule(pattern string, noticeType NoticeType, message string) rule {
	return rule{pattern: regexp.MustCompile(pattern), action: actionNotice, notice: noticeType, message: message}
}

func delegateRule(pattern string, handler handlerID) rule {
	return rule{pattern: regexp.MustCompile(pattern), action: actionDelegate, handler: handler}
}

// inlineRules is applied, in order, wherever inline markup is permitted.
// Order matters: every matching rule fires and rewrites feed later rules.
var inlineRules = buildInlineRules()

func buildInlineRules() []rule {
	rules := make([]rule, 0, 20)

	// Headings. More "=" means a bigger heading.
	for n := 1; n <= 6; n++ {
		marks := strings.Repeat("=", n)
		prefix := headingPrefix(n)
		rules = append(rules,
			rewriteRule(`^`+marks+` (.*) `+marks+`$`, prefix+" ${1}"),
			rewriteRule(`^`+marks+`([^=]*)=*$`, prefix+" ${1}"),
		)
	}

	// Link syntaxes, most specific first.
	rules = append(rules,
		noticeRule(`\[\[.*?\|\{\{.*?\}\}\]\]`, NoticeUnhandledSyntax, "Link with image seen, not handled properly"),
		noticeRule(`\[\[.*?#.*?\|.*?\]\]`, NoticeUnhandledSyntax, "Link with segment seen, not handled properly"),
		noticeRule(`\[\[.*?>.*?\]\]`, NoticeUnhandledSyntax, "Interwiki syntax seen, not handled properly"),
		delegateRule(`\[\[(.*?)\]\]`, handlerLink),
	)

	// Inline code.
	rules = append(rules,
		rewriteRule(`<code>(.*?)</code>`, "`${1}`"),
		rewriteRule(`<code (.*?)>(.*?)</code>`, "`${2}`{${1}}"),
	)

	rules = append(rules,
		noticeRule(`^\d+\.\s`, NoticeUnhandledSyntax, "Possible numbered list item that is not wiki list syntax, not handled"),
		noticeRule(`^=+\s*.*$`, NoticeAmbiguousHeading, "Line starts with an =. Possibly an untranslated heading. Check for = in the heading text"),
	)

	return rules
}

// headingPrefix maps a count of "=" markers to the ATX prefix: 1 -> "######", 6 -> "#".
func headingPrefix(marks int) string {
	return strings.Repeat("#", 7-marks)
}

var (
	codeOpenRe = regexp.MustCompile(`^<code(\s[A-Za-z0-9]*)?>$`)
	imageRe    = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

	inlineHTMLRe    = regexp.MustCompile("[*'`]*(<[^>]*?>)[*'`]*")
	internalFenceRe = regexp.MustCompile(`^~~~(?:\s\{(.*)\})?`)
	headingLineRe   = regexp.MustCompile(`^#`)
	bulletLineRe    = regexp.MustCompile(`^\s*\*`)
	emphasisRe      = regexp.MustCompile(`\s//(\S[^\]]*?)//`)
	emphasisStartRe = regexp.MustCompile(`^//(\S[^\]]*?)//`)
	queryStringRe   = regexp.MustCompile(`\?.*`)

	unbalancedHeadingRules = buildUnbalancedHeadingRules()
)

// buildUnbalancedHeadingRules matches headings whose leading and trailing
// marker runs differ, or that carry trailing whitespace.
func buildUnbalancedHeadingRules() []rule {
	rules := make([]rule, 0, 6)
	for n := 1; n <= 6; n++ {
		rules = append(rules, rewriteRule(`^`+strings.Repeat("=", n)+`([^=]*) [=\s]*`, headingPrefix(n)+" ${1}"))
	}
	return rules
}

func compileAPILinkPattern(host string) *regexp.Regexp {
	return regexp.MustCompile(`\[(\w+)\]\(https?://` + regexp.QuoteMeta(host) + `[^)\s]*\)`)
}
