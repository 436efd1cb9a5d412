package redline

import "strings"

// Span locates one run inside the concatenated text of a paragraph.
// Start and End are byte offsets; the spans of an index tile
// [0,len(text)) without gap or overlap.
type Span struct {
	Run    *Run
	Pos    int // node position in Paragraph.Nodes
	Start  int
	End    int
	Format Format
}

// RunIndex is the position map of a paragraph's runs. It is a snapshot:
// any structural change to the paragraph invalidates it.
type RunIndex struct {
	para  *Paragraph
	text  string
	spans []Span
}

// IndexRuns builds the position map of p's top-level runs. Runs with no
// text are skipped rather than recorded as zero-length spans.
func IndexRuns(p *Paragraph) *RunIndex {
	ix := &RunIndex{para: p}
	off := 0
	for pos, n := range p.Nodes {
		r, ok := n.(*Run)
		if !ok || r.Text == "" {
			continue
		}
		ix.spans = append(ix.spans, Span{
			Run: r,
			Pos: pos,
			Start: off, End: off + len(r.Text),
			Format: r.Format,
		})
		off += len(r.Text)
	}
	ix.text = ix.para.Text()
	return ix
}

// Text returns the concatenated run text the index was built over.
func (ix *RunIndex) Text() string { return ix.text }

// Spans returns the position map in paragraph order.
func (ix *RunIndex) Spans() []Span { return ix.spans }

// Locate returns the byte offset of the first occurrence of needle, or
// -1. Comparison is ordinal and case sensitive, no normalization.
func (ix *RunIndex) Locate(needle string) int {
	return strings.Index(ix.text, needle)
}

// Overlapping returns the spans whose [Start,End) intersects the
// half-open range [from,to), in paragraph order.
func (ix *RunIndex) Overlapping(from, to int) []Span {
	var res []Span
	for _, s := range ix.spans {
		if s.Start < to && s.End > from {
			res = append(res, s)
		}
	}
	return res
}

// covering picks the run to split for an insertion at offset pt. With
// after set, pt is the end of the anchor and the run ending at pt is
// still the target; otherwise pt is the anchor start and must lie
// strictly inside the target.
func (ix *RunIndex) covering(pt int, after bool) (Span, bool) {
	for _, s := range ix.spans {
		if after {
			if s.End >= pt && s.Start < pt {
				return s, true
			}
		} else if s.Start <= pt && pt < s.End {
			return s, true
		}
	}
	return Span{}, false
}
