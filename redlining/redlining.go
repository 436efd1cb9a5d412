// Package redlining supports the use of redline in your Go tests. It
// provides an in-memory Document so manifests and operators can be
// exercised without packaged files on disk:
//
//	repo := redlining.Repo{Build: func(string) *redlining.Doc {
//		return redlining.NewDoc(redline.NewParagraph("The quick brown fox"))
//	}}
//	batch := redline.Batch{Open: repo.Open}
//	rep, err := batch.Process("in.docx", "out.docx", manifest)
package redlining

import (
	"fmt"

	"github.com/redlinehq/redline"
)

// Doc is an in-memory document tree. It implements redline.Document.
type Doc struct {
	Paras []*redline.Paragraph
	Cmts  redline.CommentList
	// SavedAs records the targets of SaveAs calls, in order.
	SavedAs []string
}

// NewDoc builds a document over the given paragraphs.
func NewDoc(paras ...*redline.Paragraph) *Doc {
	return &Doc{Paras: paras}
}

func (d *Doc) Paragraphs() []*redline.Paragraph { return d.Paras }

func (d *Doc) Comments() *redline.CommentList { return &d.Cmts }

func (d *Doc) SaveAs(path string) error {
	d.SavedAs = append(d.SavedAs, path)
	return nil
}

func (d *Doc) Close() error { return nil }

// Repo hands out documents by path. Build is called once per Open so
// every open observes a fresh tree, the way reopening a file does;
// opened documents stay reachable for inspection.
type Repo struct {
	Build  func(path string) *Doc
	Opened []*Doc
}

// Open implements redline.Opener.
func (r *Repo) Open(path string) (redline.Document, error) {
	if r.Build == nil {
		return nil, fmt.Errorf("redlining: no Build func for %s", path)
	}
	d := r.Build(path)
	if d == nil {
		return nil, fmt.Errorf("redlining: no document at %s", path)
	}
	r.Opened = append(r.Opened, d)
	return d, nil
}
