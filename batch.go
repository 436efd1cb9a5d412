package redline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.fractalqb.de/fractalqb/icontainer/islist"
	"github.com/google/uuid"
	"github.com/tidwall/sjson"
)

// Result is the outcome record of a single manifest directive. Index is
// the directive's position in its own manifest list.
type Result struct {
	Index   int
	Type    string
	OK      bool
	Message string
}

// Report aggregates one batch. Output is empty in dry-run mode.
type Report struct {
	Input             string
	Output            string
	Author            string
	ChangesAttempted  int
	ChangesSucceeded  int
	CommentsAttempted int
	CommentsSucceeded int
	Results           []Result
}

// Success reports whether every directive of both phases succeeded.
func (r *Report) Success() bool {
	return r.ChangesSucceeded == r.ChangesAttempted &&
		r.CommentsSucceeded == r.CommentsAttempted
}

// JSON renders the report in the manifest result format.
func (r *Report) JSON() string {
	out := "{}"
	set := func(path string, v any) { out, _ = sjson.Set(out, path, v) }
	set("input", r.Input)
	if r.Output == "" {
		set("output", nil)
	} else {
		set("output", r.Output)
	}
	set("author", r.Author)
	set("changes_attempted", r.ChangesAttempted)
	set("changes_succeeded", r.ChangesSucceeded)
	set("comments_attempted", r.CommentsAttempted)
	set("comments_succeeded", r.CommentsSucceeded)
	set("success", r.Success())
	set("results", []any{})
	for _, res := range r.Results {
		set("results.-1", map[string]any{
			"index":   res.Index,
			"type":    res.Type,
			"success": res.OK,
			"message": res.Message,
		})
	}
	return out
}

// Batch applies one manifest to one document. The zero value needs an
// Opener; it can be reused for more than one Process call but must not
// be used concurrently.
type Batch struct {
	Open   Opener
	DryRun bool
}

type phase int

const (
	phaseInit phase = iota
	phaseComments
	phaseChanges
	phaseDone
)

// job is one queued directive. Its exec closure resolves synchronously
// to an outcome; structural faults are recovered per job.
type job struct {
	idx    int
	typ    string
	exec   func() Outcome
	lsNext *job
}

// ListNext to implement intrusive singly linked list
func (j *job) ListNext() islist.Node { return j.lsNext }

// SetListNext to implement intrusive singly linked list
func (j *job) SetListNext(n islist.Node) {
	if n == nil {
		j.lsNext = nil
	} else {
		j.lsNext = n.(*job)
	}
}

type batchRun struct {
	doc     Document
	ses     *Session
	rep     *Report
	dry     bool
	st      phase
	cmtNext int
	cmtIDs  bool
}

// enter guards the phase order; no transition may skip a phase.
func (r *batchRun) enter(p phase) {
	if p != r.st+1 {
		panic(fmt.Sprintf("batch phase %d after %d", p, r.st))
	}
	r.st = p
}

// Process resolves all comment directives against the document, then
// all change directives against the refreshed paragraph list, one at a
// time in manifest order. Directive failures never halt the batch; only
// opening, copying or saving the document is fatal.
func (b *Batch) Process(input, output string, m *Manifest) (*Report, error) {
	ses := NewSession(m.Author)
	rep := &Report{Input: input, Author: ses.Author()}
	src := input
	if b.DryRun {
		scratch := filepath.Join(os.TempDir(),
			"redline-"+uuid.NewString()+filepath.Ext(input))
		if err := copyFile(input, scratch); err != nil {
			return nil, fmt.Errorf("copy input: %w", err)
		}
		defer os.Remove(scratch)
		src = scratch
	} else {
		rep.Output = output
	}
	doc, err := b.Open(src)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	run := &batchRun{doc: doc, ses: ses, rep: rep, dry: b.DryRun}
	run.commentsPhase(m.Comments)
	run.changesPhase(m.Changes)
	run.enter(phaseDone)
	if !b.DryRun {
		if err := doc.SaveAs(output); err != nil {
			return nil, fmt.Errorf("save %s: %w", output, err)
		}
	}
	return rep, nil
}

func (r *batchRun) commentsPhase(dirs []CommentDirective) {
	r.enter(phaseComments)
	cl := r.doc.Comments()
	if !r.dry {
		for _, d := range dirs {
			if d.Op == CommentAdd {
				r.seedCommentIDs(cl)
				break
			}
		}
	}
	var work *islist.List
	for i, d := range dirs {
		d := d
		j := &job{idx: i, typ: "comment"}
		switch {
		case r.dry:
			j.exec = func() Outcome {
				return CheckComment(r.doc.Paragraphs(), cl, d)
			}
		case d.Op == CommentUpdate:
			j.exec = func() Outcome { return UpdateComment(cl, d) }
		default:
			j.exec = func() Outcome {
				id := r.cmtNext
				out := r.ses.AddComment(r.doc.Paragraphs(), cl, id, d)
				if out.OK {
					r.cmtNext++
				}
				return out
			}
		}
		if work == nil {
			work = islist.New(j)
		} else {
			work.PushBack(j)
		}
	}
	n := r.drain(work)
	r.rep.CommentsAttempted = len(dirs)
	r.rep.CommentsSucceeded = n
}

func (r *batchRun) changesPhase(chgs []Change) {
	r.enter(phaseChanges)
	// comment insertion moved run boundaries, re-derive the paragraphs
	paras := r.doc.Paragraphs()
	var work *islist.List
	for i, c := range chgs {
		c := c
		j := &job{idx: i, typ: c.RawKind}
		if r.dry {
			j.exec = func() Outcome { return Check(paras, c) }
		} else {
			j.exec = func() Outcome { return r.ses.Apply(paras, c) }
		}
		if work == nil {
			work = islist.New(j)
		} else {
			work.PushBack(j)
		}
	}
	n := r.drain(work)
	r.rep.ChangesAttempted = len(chgs)
	r.rep.ChangesSucceeded = n
}

// seedCommentIDs reserves the id range for this batch's adds: one past
// the largest existing id, or 0 for an empty collection.
func (r *batchRun) seedCommentIDs(cl *CommentList) {
	if r.cmtIDs {
		return
	}
	if max, ok := cl.MaxID(); ok {
		r.cmtNext = max + 1
	}
	r.cmtIDs = true
}

func (r *batchRun) drain(work *islist.List) (succeeded int) {
	for work != nil && work.Len() > 0 {
		j := work.Front().(*job)
		work.Drop(1)
		res := runJob(j)
		if res.OK {
			succeeded++
		}
		r.rep.Results = append(r.rep.Results, res)
	}
	return succeeded
}

// runJob isolates structural faults to the directive that raised them;
// the batch always finishes all directives.
func runJob(j *job) (res Result) {
	res = Result{Index: j.idx, Type: j.typ}
	defer func() {
		if p := recover(); p != nil {
			res.OK = false
			res.Message = fmt.Sprint("structural fault: ", p)
		}
	}()
	out := j.exec()
	res.OK = out.OK
	res.Message = out.Message
	return res
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
