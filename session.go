package redline

import (
	"time"
	"unicode/utf8"
)

// DefaultAuthor is attributed when the manifest does not name one.
const DefaultAuthor = "redline"

const (
	revSeed     = 100
	stampFormat = "2006-01-02T15:04:05Z"
)

// Session is the processing state of one batch: the fixed author and
// timestamp stamped on every marker, and the revision id counter. A
// session belongs to exactly one document instance and is discarded
// when the batch ends.
type Session struct {
	author  string
	stamp   string
	nextRev int
}

// NewSession starts a session for author. The timestamp is sampled once
// and its text reused for every marker of the batch.
func NewSession(author string) *Session {
	if author == "" {
		author = DefaultAuthor
	}
	return &Session{
		author:  author,
		stamp:   time.Now().UTC().Format(stampFormat),
		nextRev: revSeed,
	}
}

func (s *Session) Author() string { return s.author }

func (s *Session) Stamp() string { return s.stamp }

// Initials derives comment initials from the author name.
func (s *Session) Initials() string {
	r, _ := utf8.DecodeRuneInString(s.author)
	if r == utf8.RuneError {
		return "X"
	}
	return string(r)
}

// nextID issues the next revision id. Ids are unique within the
// session and strictly increase in allocation order, shared by all
// marker kinds.
func (s *Session) nextID() int {
	id := s.nextRev
	s.nextRev++
	return id
}
