package redline

// Comment is one record of the document-level comment collection.
// Format preserves the opaque paragraph-level formatting of the stored
// body so an update keeps the body's look.
type Comment struct {
	ID       int
	Author   string
	Initials string
	Date     string
	Text     string
	Format   Format
	// Dirty is set when the body text changed in this session. Providers
	// rebuild dirty bodies and round-trip clean ones verbatim.
	Dirty bool
}

// CommentList is a document's comment collection. Ids are unique but
// not necessarily contiguous when the document was edited elsewhere.
type CommentList struct {
	list []*Comment
}

func (cl *CommentList) Len() int { return len(cl.list) }

func (cl *CommentList) All() []*Comment { return cl.list }

func (cl *CommentList) Append(c *Comment) { cl.list = append(cl.list, c) }

// Lookup returns the comment with the given id, or nil.
func (cl *CommentList) Lookup(id int) *Comment {
	for _, c := range cl.list {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// MaxID reports the largest id in the collection. ok is false when the
// collection is empty.
func (cl *CommentList) MaxID() (max int, ok bool) {
	for _, c := range cl.list {
		if !ok || c.ID > max {
			max, ok = c.ID, true
		}
	}
	return max, ok
}

// CommentOp enumerates the comment directive operations.
type CommentOp int

const (
	CommentOpInvalid CommentOp = iota
	CommentAdd
	CommentUpdate
)

// CommentDirective is one comment directive of a manifest.
type CommentDirective struct {
	Op      CommentOp
	RawOp   string
	Anchor  string
	Text    string
	ID      int
	HasID   bool
	HasText bool
}

func (d CommentDirective) validate() (Outcome, bool) {
	switch d.Op {
	case CommentOpInvalid:
		return failf("unknown comment op %q", d.RawOp), false
	case CommentAdd:
		if d.Anchor == "" {
			return failf("missing required field %q", "anchor"), false
		}
		if !d.HasText {
			return failf("missing required field %q", "text"), false
		}
	case CommentUpdate:
		if !d.HasID {
			return failf("missing required field %q", "id"), false
		}
		if !d.HasText {
			return failf("missing required field %q", "text"), false
		}
	}
	return Outcome{}, true
}

// AddComment anchors a new comment with the given pre-reserved id on
// the first occurrence of d.Anchor. Anchoring only brackets existing
// runs, it never splits or rewrites their text. On a missing anchor no
// comment is created and no marker is inserted.
func (s *Session) AddComment(paras []*Paragraph, cl *CommentList, id int, d CommentDirective) Outcome {
	if out, ok := d.validate(); !ok {
		return out
	}
	m, ok := findText(paras, d.Anchor)
	if !ok {
		return failf("anchor not found: %q", preview(d.Anchor))
	}
	spans := m.ix.Overlapping(m.at, m.at+len(d.Anchor))
	if len(spans) == 0 {
		return failf("anchor not found: %q", preview(d.Anchor))
	}
	startPos := spans[0].Pos
	endPos := spans[len(spans)-1].Pos
	m.para.insert(startPos, &CommentStart{ID: id})
	// the start marker shifted everything after it by one
	m.para.insert(endPos+2, &CommentEnd{ID: id}, &CommentRef{ID: id})
	cl.Append(&Comment{
		ID:       id,
		Author:   s.author,
		Initials: s.Initials(),
		Date:     s.stamp,
		Text:     d.Text,
		Dirty:    true,
	})
	return okf("commented %q", preview(d.Anchor))
}

// UpdateComment replaces the stored body text of the comment with the
// given id. Author, date and initials stay untouched, as do the range
// markers anchoring the comment in the document body.
func UpdateComment(cl *CommentList, d CommentDirective) Outcome {
	if out, ok := d.validate(); !ok {
		return out
	}
	c := cl.Lookup(d.ID)
	if c == nil {
		return failf("comment %d not found", d.ID)
	}
	c.Text = d.Text
	c.Dirty = true
	return okf("updated comment %d", d.ID)
}

// CheckComment is the locate-only counterpart of AddComment and
// UpdateComment: identical verdicts, no mutation, no id spent.
func CheckComment(paras []*Paragraph, cl *CommentList, d CommentDirective) Outcome {
	if out, ok := d.validate(); !ok {
		return out
	}
	switch d.Op {
	case CommentAdd:
		if _, ok := findText(paras, d.Anchor); !ok {
			return failf("anchor not found: %q", preview(d.Anchor))
		}
		return okf("commented %q", preview(d.Anchor))
	case CommentUpdate:
		if cl.Lookup(d.ID) == nil {
			return failf("comment %d not found", d.ID)
		}
		return okf("updated comment %d", d.ID)
	}
	return failf("unknown comment op %q", d.RawOp)
}
