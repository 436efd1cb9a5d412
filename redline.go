package redline

// Format is the opaque formatting descriptor of a run or paragraph. The
// docx provider stores the verbatim properties element here. Splitting a
// run copies the string, so split-off runs never share mutable
// formatting state.
type Format string

// Node is one child of a Paragraph. The concrete kinds are *Run, *Ins,
// *Del, *CommentStart, *CommentEnd, *CommentRef and *Raw.
type Node interface{ node() }

// Run is a contiguous text segment with homogeneous formatting.
type Run struct {
	Text   string
	Format Format
}

// Ins marks runs inserted as a tracked change.
type Ins struct {
	ID     int
	Author string
	Date   string
	Runs   []*Run
}

// Del marks runs deleted as a tracked change. The wrapped runs hold the
// text as it read before the deletion.
type Del struct {
	ID     int
	Author string
	Date   string
	Runs   []*Run
}

// CommentStart opens a commented range. It pairs with the CommentEnd
// carrying the same id; the two are independent siblings in the node
// sequence, associated only by that id.
type CommentStart struct{ ID int }

// CommentEnd closes a commented range.
type CommentEnd struct{ ID int }

// CommentRef links the range to the stored comment text. It sits
// immediately after its CommentEnd and renders as the comment badge.
type CommentRef struct{ ID int }

// Raw is paragraph content the engine does not model, e.g. bookmarks or
// field codes. Providers round-trip it verbatim. Raw nodes contribute no
// text to the paragraph.
type Raw struct{ XML string }

func (*Run) node()          {}
func (*Ins) node()          {}
func (*Del) node()          {}
func (*CommentStart) node() {}
func (*CommentEnd) node()   {}
func (*CommentRef) node()   {}
func (*Raw) node()          {}

// Paragraph is an ordered sequence of nodes forming one line of flowing
// text. It owns its nodes exclusively.
type Paragraph struct {
	Format Format
	Nodes  []Node
}

// NewParagraph builds a paragraph holding one run per text argument,
// all with zero formatting.
func NewParagraph(texts ...string) *Paragraph {
	p := new(Paragraph)
	for _, t := range texts {
		p.Nodes = append(p.Nodes, &Run{Text: t})
	}
	return p
}

// Text returns the concatenation of the paragraph's top-level run
// texts. Runs wrapped in revision markers do not contribute.
func (p *Paragraph) Text() string {
	var sb []byte
	for _, n := range p.Nodes {
		if r, ok := n.(*Run); ok {
			sb = append(sb, r.Text...)
		}
	}
	return string(sb)
}

// rewrite replaces single nodes by position: the node at each index in
// repl is replaced by the nodes mapped to it, nil removes it. All other
// nodes keep their relative order, so markers interleaved between
// rewritten runs survive in place.
func (p *Paragraph) rewrite(repl map[int][]Node) {
	out := make([]Node, 0, len(p.Nodes))
	for i, n := range p.Nodes {
		if ns, ok := repl[i]; ok {
			out = append(out, ns...)
			continue
		}
		out = append(out, n)
	}
	p.Nodes = out
}

// insert places ns before the node at position at.
func (p *Paragraph) insert(at int, ns ...Node) {
	rest := p.Nodes[at:]
	p.Nodes = append(append(p.Nodes[:at:at], ns...), rest...)
}

// Document is the boundary to the package-level document model. A
// provider exposes the ordered paragraph list and the comment
// collection for in-place mutation and persists both on SaveAs.
type Document interface {
	// Paragraphs returns the ordered paragraph list. Callers re-fetch
	// it after mutations that change run boundaries.
	Paragraphs() []*Paragraph
	// Comments returns the document's comment collection, never nil.
	Comments() *CommentList
	SaveAs(path string) error
	Close() error
}

// Opener opens a packaged document for editing.
type Opener func(path string) (Document, error)
