package redline

import (
	"testing"

	"git.fractalqb.de/fractalqb/testerr"
)

func TestParseManifest(t *testing.T) {
	m := testerr.Shall1(ParseManifest([]byte(`{
		"author": "Reviewer",
		"changes": [
			{"type": "replace", "find": "quick", "replace": ""},
			{"type": "delete", "find": "brown "},
			{"type": "insert_after", "anchor": "fox", "text": "!"},
			{"type": "insert_before", "anchor": "The", "text": "> "},
			{"type": "replace", "find": "lazy"},
			{"type": "merge", "find": "x"}
		],
		"comments": [
			{"anchor": "fox", "text": "which fox?"},
			{"op": "add", "anchor": "dog", "text": "good dog"},
			{"op": "update", "id": 2, "text": "better"},
			{"op": "remove", "id": 2}
		]
	}`))).BeNil(t)

	if m.Author != "Reviewer" {
		t.Errorf("author %q", m.Author)
	}
	if len(m.Changes) != 6 {
		t.Fatalf("%d changes", len(m.Changes))
	}
	c := m.Changes[0]
	if c.Kind != KindReplace || c.Find != "quick" || c.Text != "" || !c.HasText {
		t.Errorf("change 0: %+v", c)
	}
	if c := m.Changes[1]; c.Kind != KindDelete || c.Find != "brown " {
		t.Errorf("change 1: %+v", c)
	}
	if c := m.Changes[2]; c.Kind != KindInsertAfter || c.Find != "fox" || c.Text != "!" {
		t.Errorf("change 2: %+v", c)
	}
	if c := m.Changes[3]; c.Kind != KindInsertBefore || c.Find != "The" {
		t.Errorf("change 3: %+v", c)
	}
	// an empty replacement is legal, a missing one is not
	if c := m.Changes[4]; c.HasText {
		t.Errorf("change 4: %+v", c)
	}
	if c := m.Changes[5]; c.Kind != KindInvalid || c.RawKind != "merge" {
		t.Errorf("change 5: %+v", c)
	}

	if len(m.Comments) != 4 {
		t.Fatalf("%d comments", len(m.Comments))
	}
	if d := m.Comments[0]; d.Op != CommentAdd || d.Anchor != "fox" || d.Text != "which fox?" {
		t.Errorf("comment 0: %+v", d)
	}
	if d := m.Comments[1]; d.Op != CommentAdd || d.Anchor != "dog" {
		t.Errorf("comment 1: %+v", d)
	}
	if d := m.Comments[2]; d.Op != CommentUpdate || d.ID != 2 || !d.HasID || d.Text != "better" {
		t.Errorf("comment 2: %+v", d)
	}
	if d := m.Comments[3]; d.Op != CommentOpInvalid || d.RawOp != "remove" {
		t.Errorf("comment 3: %+v", d)
	}
}

func TestParseManifest_rejects(t *testing.T) {
	if _, err := ParseManifest([]byte(`{"changes": [}`)); err == nil {
		t.Error("invalid JSON accepted")
	}
	if _, err := ParseManifest([]byte(`["not", "an", "object"]`)); err == nil {
		t.Error("non-object manifest accepted")
	}
}

func TestParseManifest_empty(t *testing.T) {
	m := testerr.Shall1(ParseManifest([]byte(`{}`))).BeNil(t)
	if len(m.Changes) != 0 || len(m.Comments) != 0 || m.Author != "" {
		t.Errorf("got %+v", m)
	}
}
