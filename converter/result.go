package converter

// Result holds the output of a conversion.
type Result struct {
	Markdown    string       `json:"markdown"`
	Notices     []Notice     `json:"notices,omitempty"`
	Relocations []Relocation `json:"relocations,omitempty"`
}

// NoticeType categorizes conversion notices.
type NoticeType string

const (
	NoticeUnhandledSyntax     NoticeType = "unhandled_syntax"
	NoticeNestedList          NoticeType = "nested_list"
	NoticeAmbiguousHeading    NoticeType = "ambiguous_heading"
	NoticeMissingImage        NoticeType = "missing_image"
	NoticeUnresolvedReference NoticeType = "unresolved_reference"
)

// Notice represents a non-fatal issue encountered during conversion.
type Notice struct {
	Type    NoticeType `json:"type"`
	File    string     `json:"file,omitempty"`
	Line    int        `json:"line"`
	Message string     `json:"message"`
}

// Relocation asks the caller to copy an image so that the rewritten
// reference in the converted document resolves.
type Relocation struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}
