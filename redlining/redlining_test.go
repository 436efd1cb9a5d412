package redlining

import (
	"testing"

	"git.fractalqb.de/fractalqb/testerr"

	"github.com/redlinehq/redline"
)

func TestRepo_Open(t *testing.T) {
	repo := Repo{Build: func(string) *Doc {
		return NewDoc(redline.NewParagraph("The quick brown fox"))
	}}
	d := testerr.Shall1(repo.Open("in.docx")).BeNil(t)
	testerr.Shall(d.SaveAs("out.docx")).BeNil(t)
	testerr.Shall(d.Close()).BeNil(t)
	if len(repo.Opened) != 1 {
		t.Fatalf("opened %d documents", len(repo.Opened))
	}
	if sa := repo.Opened[0].SavedAs; len(sa) != 1 || sa[0] != "out.docx" {
		t.Errorf("saved as %v", sa)
	}
}

func TestRepo_OpenFresh(t *testing.T) {
	repo := Repo{Build: func(string) *Doc {
		return NewDoc(redline.NewParagraph("alpha"))
	}}
	d1 := testerr.Shall1(repo.Open("a.docx")).BeNil(t)
	d1.Paragraphs()[0].Nodes = nil
	d2 := testerr.Shall1(repo.Open("a.docx")).BeNil(t)
	if d2.Paragraphs()[0].Text() != "alpha" {
		t.Error("second open did not get a fresh tree")
	}
}

func TestRepo_OpenMissing(t *testing.T) {
	var repo Repo
	if _, err := repo.Open("in.docx"); err == nil {
		t.Error("open without Build must fail")
	}
	repo.Build = func(string) *Doc { return nil }
	if _, err := repo.Open("in.docx"); err == nil {
		t.Error("open of a missing document must fail")
	}
}
