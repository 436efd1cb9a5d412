package redline

import (
	"errors"

	"github.com/tidwall/gjson"
)

// Manifest is the ordered set of change and comment directives for one
// batch. Directive order is preserved; comment directives are resolved
// before change directives.
type Manifest struct {
	Author   string
	Changes  []Change
	Comments []CommentDirective
}

// ParseManifest reads a manifest from its JSON form. Unknown directive
// kinds and missing fields survive parsing; they surface as
// per-directive failures when the batch runs.
func ParseManifest(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("manifest: not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("manifest: top level must be an object")
	}
	m := &Manifest{Author: root.Get("author").String()}
	root.Get("changes").ForEach(func(_, it gjson.Result) bool {
		m.Changes = append(m.Changes, parseChange(it))
		return true
	})
	root.Get("comments").ForEach(func(_, it gjson.Result) bool {
		m.Comments = append(m.Comments, parseComment(it))
		return true
	})
	return m, nil
}

func parseChange(it gjson.Result) Change {
	c := Change{RawKind: it.Get("type").String()}
	switch c.RawKind {
	case "replace":
		c.Kind = KindReplace
		c.Find = it.Get("find").String()
		if r := it.Get("replace"); r.Exists() {
			c.Text = r.String()
			c.HasText = true
		}
	case "delete":
		c.Kind = KindDelete
		c.Find = it.Get("find").String()
	case "insert_after", "insert_before":
		c.Kind = KindInsertAfter
		if c.RawKind == "insert_before" {
			c.Kind = KindInsertBefore
		}
		c.Find = it.Get("anchor").String()
		if t := it.Get("text"); t.Exists() {
			c.Text = t.String()
			c.HasText = true
		}
	}
	return c
}

func parseComment(it gjson.Result) CommentDirective {
	d := CommentDirective{RawOp: it.Get("op").String()}
	switch d.RawOp {
	case "", "add":
		d.Op = CommentAdd
		d.Anchor = it.Get("anchor").String()
	case "update":
		d.Op = CommentUpdate
		if id := it.Get("id"); id.Exists() {
			d.ID = int(id.Int())
			d.HasID = true
		}
	}
	if t := it.Get("text"); t.Exists() {
		d.Text = t.String()
		d.HasText = true
	}
	return d
}
