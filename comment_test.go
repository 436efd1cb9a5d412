package redline

import (
	"strings"
	"testing"
)

func TestAddComment_bracketsRuns(t *testing.T) {
	p := NewParagraph("The qu", "ick brown", " fox")
	var cl CommentList
	s := NewSession("Ann")
	out := s.AddComment([]*Paragraph{p}, &cl, 5, CommentDirective{
		Op: CommentAdd, Anchor: "quick brown", Text: "why brown?", HasText: true,
	})
	if !out.OK {
		t.Fatal(out.Message)
	}
	// anchoring never rewrites run text
	if p.Text() != "The quick brown fox" {
		t.Errorf("text changed to %q", p.Text())
	}
	kinds := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		switch n := n.(type) {
		case *Run:
			kinds = append(kinds, "run:"+n.Text)
		case *CommentStart:
			kinds = append(kinds, "start")
		case *CommentEnd:
			kinds = append(kinds, "end")
		case *CommentRef:
			kinds = append(kinds, "ref")
		}
	}
	want := []string{"start", "run:The qu", "run:ick brown", "end", "ref", "run: fox"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Errorf("node order %v, want %v", kinds, want)
	}
	c := cl.Lookup(5)
	if c == nil {
		t.Fatal("comment not stored")
	}
	if c.Author != "Ann" || c.Initials != "A" || c.Text != "why brown?" {
		t.Errorf("stored %+v", c)
	}
	if c.Date != s.Stamp() {
		t.Errorf("date %q, want session stamp %q", c.Date, s.Stamp())
	}
}

func TestAddComment_singleRunAnchor(t *testing.T) {
	p := NewParagraph("first ", "second", " third")
	var cl CommentList
	out := NewSession("a").AddComment([]*Paragraph{p}, &cl, 0, CommentDirective{
		Op: CommentAdd, Anchor: "second", Text: "t", HasText: true,
	})
	if !out.OK {
		t.Fatal(out.Message)
	}
	if _, ok := p.Nodes[1].(*CommentStart); !ok {
		t.Errorf("node 1 is %T, want comment start", p.Nodes[1])
	}
	if _, ok := p.Nodes[3].(*CommentEnd); !ok {
		t.Errorf("node 3 is %T, want comment end", p.Nodes[3])
	}
	if _, ok := p.Nodes[4].(*CommentRef); !ok {
		t.Errorf("node 4 is %T, want comment reference", p.Nodes[4])
	}
}

func TestAddComment_missingAnchor(t *testing.T) {
	p := NewParagraph("some text")
	var cl CommentList
	out := NewSession("a").AddComment([]*Paragraph{p}, &cl, 0, CommentDirective{
		Op: CommentAdd, Anchor: "absent", Text: "t", HasText: true,
	})
	if out.OK {
		t.Fatal("unexpected success")
	}
	if cl.Len() != 0 {
		t.Error("comment created for missing anchor")
	}
	if len(p.Nodes) != 1 {
		t.Error("markers inserted for missing anchor")
	}
}

func TestUpdateComment(t *testing.T) {
	var cl CommentList
	cl.Append(&Comment{ID: 3, Author: "Ann", Date: "2026-01-01T00:00:00Z",
		Text: "old", Format: "centered"})

	t.Run("replaces body only", func(t *testing.T) {
		out := UpdateComment(&cl, CommentDirective{
			Op: CommentUpdate, ID: 3, HasID: true, Text: "new", HasText: true,
		})
		if !out.OK {
			t.Fatal(out.Message)
		}
		c := cl.Lookup(3)
		if c.Text != "new" || !c.Dirty {
			t.Errorf("got %+v", c)
		}
		if c.Author != "Ann" || c.Date != "2026-01-01T00:00:00Z" || c.Format != "centered" {
			t.Errorf("metadata touched: %+v", c)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		out := UpdateComment(&cl, CommentDirective{
			Op: CommentUpdate, ID: 9, HasID: true, Text: "x", HasText: true,
		})
		if out.OK {
			t.Fatal("unexpected success")
		}
		if !strings.Contains(out.Message, "not found") {
			t.Errorf("message %q", out.Message)
		}
		if cl.Len() != 1 || cl.Lookup(3).Text != "new" {
			t.Error("collection mutated by failed update")
		}
	})
}

func TestCheckComment_parity(t *testing.T) {
	dirs := []CommentDirective{
		{Op: CommentAdd, Anchor: "quick", Text: "t", HasText: true},
		{Op: CommentAdd, Anchor: "absent", Text: "t", HasText: true},
		{Op: CommentAdd, Text: "t", HasText: true},
		{Op: CommentUpdate, ID: 3, HasID: true, Text: "t", HasText: true},
		{Op: CommentUpdate, ID: 9, HasID: true, Text: "t", HasText: true},
		{RawOp: "remove"},
	}
	for _, d := range dirs {
		mk := func() (*Paragraph, *CommentList) {
			var cl CommentList
			cl.Append(&Comment{ID: 3, Text: "old"})
			return NewParagraph("The quick brown fox"), &cl
		}
		p, cl := mk()
		chk := CheckComment([]*Paragraph{p}, cl, d)
		p, cl = mk()
		var live Outcome
		if d.Op == CommentUpdate {
			live = UpdateComment(cl, d)
		} else {
			live = NewSession("a").AddComment([]*Paragraph{p}, cl, 7, d)
		}
		if chk.OK != live.OK {
			t.Errorf("%+v: check %v, live %v", d, chk.OK, live.OK)
		}
		if chk.Message != live.Message {
			t.Errorf("%+v: check %q, live %q", d, chk.Message, live.Message)
		}
	}
}

func TestCommentList_MaxID(t *testing.T) {
	var cl CommentList
	if _, ok := cl.MaxID(); ok {
		t.Error("max id on empty collection")
	}
	cl.Append(&Comment{ID: 4})
	cl.Append(&Comment{ID: 2})
	cl.Append(&Comment{ID: 9})
	if max, ok := cl.MaxID(); !ok || max != 9 {
		t.Errorf("max %d ok=%v, want 9", max, ok)
	}
}
