package redline

import (
	"fmt"
	"unicode/utf8"
)

// ChangeKind enumerates the tracked change operators.
type ChangeKind int

const (
	KindInvalid ChangeKind = iota
	KindReplace
	KindDelete
	KindInsertAfter
	KindInsertBefore
)

func (k ChangeKind) String() string {
	switch k {
	case KindReplace:
		return "replace"
	case KindDelete:
		return "delete"
	case KindInsertAfter:
		return "insert_after"
	case KindInsertBefore:
		return "insert_before"
	}
	return "invalid"
}

// Change is one tracked change directive. Find holds the searched text
// (the find text of replace/delete, the anchor of the inserts); Text
// holds the replacement or inserted text. HasText records whether the
// manifest carried the field at all, since an empty replacement is
// legal but a missing one is not.
type Change struct {
	Kind    ChangeKind
	RawKind string
	Find    string
	Text    string
	HasText bool
}

// Outcome is the result of one directive: a verdict, not an error.
// Missing matches are normal failures and never abort a batch.
type Outcome struct {
	OK      bool
	Message string
}

func failf(format string, a ...any) Outcome {
	return Outcome{Message: fmt.Sprintf(format, a...)}
}

func okf(format string, a ...any) Outcome {
	return Outcome{OK: true, Message: fmt.Sprintf(format, a...)}
}

const previewRunes = 60

// preview bounds diagnostic output to 60 characters plus an ellipsis.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	r := []rune(s)
	return string(r[:previewRunes]) + "…"
}

// match is a located occurrence: the first paragraph containing the
// needle and the byte offset of its first occurrence there.
type match struct {
	para *Paragraph
	ix   *RunIndex
	at   int
}

// findText scans paragraphs in document order for the first occurrence
// of needle. At most one paragraph, at most one occurrence.
func findText(paras []*Paragraph, needle string) (match, bool) {
	for _, p := range paras {
		ix := IndexRuns(p)
		if at := ix.Locate(needle); at >= 0 {
			return match{para: p, ix: ix, at: at}, true
		}
	}
	return match{}, false
}

func (c Change) validate() (Outcome, bool) {
	switch c.Kind {
	case KindInvalid:
		return failf("unknown change type %q", c.RawKind), false
	case KindReplace:
		if c.Find == "" {
			return failf("missing required field %q", "find"), false
		}
		if !c.HasText {
			return failf("missing required field %q", "replace"), false
		}
	case KindDelete:
		if c.Find == "" {
			return failf("missing required field %q", "find"), false
		}
	case KindInsertAfter, KindInsertBefore:
		if c.Find == "" {
			return failf("missing required field %q", "anchor"), false
		}
		if c.Text == "" {
			return failf("missing required field %q", "text"), false
		}
	}
	return Outcome{}, true
}

// Apply locates c's text and rewrites the first matching paragraph.
func (s *Session) Apply(paras []*Paragraph, c Change) Outcome {
	if out, ok := c.validate(); !ok {
		return out
	}
	m, ok := findText(paras, c.Find)
	if !ok {
		return failf("text not found: %q", preview(c.Find))
	}
	switch c.Kind {
	case KindReplace:
		return s.spliceTracked(m, c.Find, c.Text, true)
	case KindDelete:
		return s.spliceTracked(m, c.Find, "", false)
	case KindInsertAfter:
		return s.insert(m, c.Find, c.Text, true)
	case KindInsertBefore:
		return s.insert(m, c.Find, c.Text, false)
	}
	return failf("unknown change type %q", c.RawKind)
}

// Check is the locate-only counterpart of Apply. It observes the same
// matching outcome but mutates nothing and allocates no ids.
func Check(paras []*Paragraph, c Change) Outcome {
	if out, ok := c.validate(); !ok {
		return out
	}
	if _, ok := findText(paras, c.Find); !ok {
		return failf("text not found: %q", preview(c.Find))
	}
	return checkedOutcome(c)
}

func checkedOutcome(c Change) Outcome {
	switch c.Kind {
	case KindDelete:
		return okf("deleted %q", preview(c.Find))
	case KindInsertAfter:
		return okf("inserted after %q", preview(c.Find))
	case KindInsertBefore:
		return okf("inserted before %q", preview(c.Find))
	}
	return okf("replaced %q", preview(c.Find))
}

// spliceTracked carves the matched range out of the paragraph and
// splices in prefix?, Del, Ins?, suffix?. Replace consumes two ids,
// delete id before insert id; delete consumes one.
func (s *Session) spliceTracked(m match, find, repl string, withIns bool) Outcome {
	end := m.at + len(find)
	spans := m.ix.Overlapping(m.at, end)
	if len(spans) == 0 {
		return failf("text not found: %q", preview(find))
	}
	first, last := spans[0], spans[len(spans)-1]

	var head []Node
	if pre := first.Run.Text[:m.at-first.Start]; pre != "" {
		head = append(head, &Run{Text: pre, Format: first.Format})
	}
	head = append(head, &Del{
		ID: s.nextID(), Author: s.author, Date: s.stamp,
		Runs: []*Run{{Text: find, Format: first.Format}},
	})
	if withIns {
		head = append(head, &Ins{
			ID: s.nextID(), Author: s.author, Date: s.stamp,
			Runs: []*Run{{Text: repl, Format: first.Format}},
		})
	}
	var tail []Node
	if suf := last.Run.Text[end-last.Start:]; suf != "" {
		tail = append(tail, &Run{Text: suf, Format: last.Format})
	}
	// replace the overlapped runs one by one so markers interleaved
	// between them keep their place
	rw := make(map[int][]Node, len(spans))
	for _, sp := range spans {
		rw[sp.Pos] = nil
	}
	if first.Pos == last.Pos {
		rw[first.Pos] = append(head, tail...)
	} else {
		rw[first.Pos] = head
		rw[last.Pos] = tail
	}
	m.para.rewrite(rw)
	if withIns {
		return okf("replaced %q", preview(find))
	}
	return okf("deleted %q", preview(find))
}

// insert splits the run covering the anchor boundary and places an Ins
// marker at the split point. Runs left empty by a split at an exact run
// boundary are not emitted.
func (s *Session) insert(m match, anchor, text string, after bool) Outcome {
	pt := m.at
	if after {
		pt += len(anchor)
	}
	span, ok := m.ix.covering(pt, after)
	if !ok {
		return failf("text not found: %q", preview(anchor))
	}
	local := pt - span.Start

	var ns []Node
	if pre := span.Run.Text[:local]; pre != "" {
		ns = append(ns, &Run{Text: pre, Format: span.Format})
	}
	ns = append(ns, &Ins{
		ID: s.nextID(), Author: s.author, Date: s.stamp,
		Runs: []*Run{{Text: text, Format: span.Format}},
	})
	if suf := span.Run.Text[local:]; suf != "" {
		ns = append(ns, &Run{Text: suf, Format: span.Format})
	}
	m.para.rewrite(map[int][]Node{span.Pos: ns})
	if after {
		return okf("inserted after %q", preview(anchor))
	}
	return okf("inserted before %q", preview(anchor))
}
