/*
Package redline injects tracked changes and anchored comments into
rich-text documents whose visible text is fragmented across formatting
runs.

The engine addresses text by paragraph: each paragraph is an ordered
node sequence, and the runs among those nodes concatenate to the
paragraph's visible text. A RunIndex maps byte offsets of that text
back to the runs covering them, so a literal needle spanning several
differently formatted runs can be located and carved out at exact
character boundaries without losing formatting.

Four change operators rewrite paragraph structure: tracked replace,
tracked delete, and tracked insert before or after an anchor. Each
locates the first occurrence of its text in document order — exact,
ordinal, case sensitive — and touches at most that one occurrence. A
replace splices prefix, Del marker, Ins marker and suffix in place of
the overlapped runs; the markers carry the formatting of the run the
match started in and a fresh revision id. Comment directives bracket
existing runs with range markers and store the comment record in the
document's comment collection; they never rewrite run text.

Revision ids are issued by a Session, one per batch: strictly
increasing, never reused, shared by deletions and insertions. The
session also fixes the author and timestamp stamped on every marker of
the batch.

A Batch resolves a Manifest against a document in two phases, comments
first, then changes against the refreshed paragraph list. Directives
are independent: a missing match is a reported failure, not an error,
and the batch always finishes. With DryRun set the batch runs the
locate-only validators against a disposable copy of the input and
writes nothing.

The docx subpackage provides the Document implementation for
WordprocessingML packages.
*/
package redline
