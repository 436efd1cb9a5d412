// Package docx opens WordprocessingML packages as redline documents.
// The paragraph and run structure of word/document.xml is parsed into
// the redline node model; formatting properties and any content the
// model does not cover are kept as verbatim XML and written back
// unchanged on save.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redlinehq/redline"
)

const (
	documentPart     = "word/document.xml"
	commentsPart     = "word/comments.xml"
	contentTypesPart = "[Content_Types].xml"
	documentRelsPart = "word/_rels/document.xml.rels"

	commentsContentType = "application/vnd.openxmlformats-officedocument" +
		".wordprocessingml.comments+xml"
	commentsRelType = "http://schemas.openxmlformats.org/officeDocument" +
		"/2006/relationships/comments"
)

// Document is a loaded package. It implements redline.Document.
type Document struct {
	path  string
	parts map[string][]byte
	order []string

	chunks   []chunk
	paras    []*redline.Paragraph
	comments *redline.CommentList
	rawCmts  map[int]string
	oddCmts  []string
	hadCmts  bool
}

// Open reads the whole package into memory and parses the document and
// comment parts. The file is not kept open.
func Open(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()
	d := &Document{
		path:     path,
		parts:    make(map[string][]byte),
		comments: new(redline.CommentList),
		rawCmts:  make(map[int]string),
	}
	for _, f := range zr.File {
		rd, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s!%s: %w", path, f.Name, err)
		}
		data, err := io.ReadAll(rd)
		rd.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s!%s: %w", path, f.Name, err)
		}
		d.parts[f.Name] = data
		d.order = append(d.order, f.Name)
	}
	body, ok := d.parts[documentPart]
	if !ok {
		return nil, fmt.Errorf("%s: no %s part", path, documentPart)
	}
	if d.chunks, err = parseDocument(body); err != nil {
		return nil, fmt.Errorf("parse %s!%s: %w", path, documentPart, err)
	}
	for _, c := range d.chunks {
		if c.para != nil {
			d.paras = append(d.paras, c.para)
		}
	}
	if data, ok := d.parts[commentsPart]; ok {
		d.hadCmts = true
		d.comments, d.rawCmts, d.oddCmts, err = parseComments(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s!%s: %w", path, commentsPart, err)
		}
	}
	return d, nil
}

func (d *Document) Paragraphs() []*redline.Paragraph { return d.paras }

func (d *Document) Comments() *redline.CommentList { return d.comments }

func (d *Document) Close() error { return nil }

// SaveAs writes the package to path: the document part re-rendered from
// the paragraph trees, the comments part rebuilt, every other entry
// copied verbatim. A package that never had a comments part gets one
// registered when comments exist now.
func (d *Document) SaveAs(path string) (err error) {
	out := map[string][]byte{documentPart: renderDocument(d.chunks)}
	order := d.order
	if d.hadCmts || d.comments.Len() > 0 || len(d.oddCmts) > 0 {
		out[commentsPart] = renderComments(d.comments, d.rawCmts, d.oddCmts)
		if !d.hadCmts {
			order = append(order[:len(order):len(order)], commentsPart)
			ct, err := registerContentType(d.parts[contentTypesPart])
			if err != nil {
				return err
			}
			out[contentTypesPart] = ct
			out[documentRelsPart] = registerRel(d.parts[documentRelsPart])
		}
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(w)
	for _, name := range order {
		data, ok := out[name]
		if !ok {
			data = d.parts[name]
		}
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("save %s!%s: %w", path, name, err)
		}
		if _, err = f.Write(data); err != nil {
			return fmt.Errorf("save %s!%s: %w", path, name, err)
		}
	}
	return zw.Close()
}

// registerContentType adds the comments override to [Content_Types].xml.
func registerContentType(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("package has no " + contentTypesPart)
	}
	if bytes.Contains(data, []byte(`PartName="/`+commentsPart+`"`)) {
		return data, nil
	}
	override := fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`,
		commentsPart, commentsContentType)
	patched := strings.Replace(string(data), "</Types>", override+"</Types>", 1)
	if patched == string(data) {
		return nil, errors.New(contentTypesPart + ": no </Types> to patch")
	}
	return []byte(patched), nil
}

// registerRel links the comments part from the document's relationship
// part, creating the part when the package has none.
func registerRel(data []byte) []byte {
	if len(data) == 0 {
		return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			fmt.Sprintf(`<Relationship Id="rId1" Type="%s" Target="comments.xml"/>`, commentsRelType) +
			`</Relationships>`)
	}
	if bytes.Contains(data, []byte(`Target="comments.xml"`)) {
		return data
	}
	id := "rId100"
	for i := 101; bytes.Contains(data, []byte(`Id="`+id+`"`)); i++ {
		id = fmt.Sprintf("rId%d", i)
	}
	rel := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="comments.xml"/>`,
		id, commentsRelType)
	return []byte(strings.Replace(string(data),
		"</Relationships>", rel+"</Relationships>", 1))
}
