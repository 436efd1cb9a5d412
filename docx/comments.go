package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/redlinehq/redline"
)

const commentsHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:comments xmlns:w="` + nsW + `">`

// parseComments reads word/comments.xml. Besides the comment records it
// returns the verbatim source of each comment, written back unchanged
// unless the comment's body was replaced, and the source of comments
// with non-numeric ids, which the engine never touches.
func parseComments(data []byte) (*redline.CommentList, map[int]string, []string, error) {
	cl := new(redline.CommentList)
	raw := make(map[int]string)
	var odd []string
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		off := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			return cl, raw, odd, nil
		}
		if err != nil {
			return nil, nil, nil, err
		}
		t, ok := tok.(xml.StartElement)
		if !ok || t.Name.Space != nsW || t.Name.Local != "comment" {
			continue
		}
		if err = d.Skip(); err != nil {
			return nil, nil, nil, err
		}
		src := string(data[off:d.InputOffset()])
		id, err := strconv.Atoi(attr(t, "id"))
		if err != nil {
			odd = append(odd, src)
			continue
		}
		c := &redline.Comment{
			ID:       id,
			Author:   attr(t, "author"),
			Initials: attr(t, "initials"),
			Date:     attr(t, "date"),
		}
		c.Text, c.Format, err = parseCommentBody(src)
		if err != nil {
			return nil, nil, nil, err
		}
		cl.Append(c)
		raw[id] = src
	}
}

// parseCommentBody extracts the stored text and the paragraph-level
// formatting of the first body paragraph from one comment's source.
// The source is a fragment without the root's namespace binding, so it
// is re-wrapped before parsing.
func parseCommentBody(src string) (text string, format redline.Format, err error) {
	data := []byte(`<w:comments xmlns:w="` + nsW + `">` + src + `</w:comments>`)
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		off := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			return text, format, nil
		}
		if err != nil {
			return "", "", err
		}
		t, ok := tok.(xml.StartElement)
		if !ok || t.Name.Space != nsW {
			continue
		}
		switch t.Name.Local {
		case "pPr":
			if format == "" {
				if err = d.Skip(); err != nil {
					return "", "", err
				}
				format = redline.Format(data[off:d.InputOffset()])
			}
		case "t":
			var sb bytes.Buffer
			for {
				tok, err := d.Token()
				if err != nil {
					return "", "", err
				}
				if cd, ok := tok.(xml.CharData); ok {
					sb.Write(cd)
					continue
				}
				if _, ok := tok.(xml.EndElement); ok {
					break
				}
			}
			text += sb.String()
		}
	}
}

// renderComments rebuilds word/comments.xml. Untouched comments keep
// their verbatim source; new or updated ones get a fresh body with the
// preserved paragraph formatting and a reconstructed annotation
// reference mark.
func renderComments(cl *redline.CommentList, raw map[int]string, odd []string) []byte {
	var b bytes.Buffer
	b.WriteString(commentsHeader)
	for _, c := range cl.All() {
		if src, ok := raw[c.ID]; ok && !c.Dirty {
			b.WriteString(src)
			continue
		}
		fmt.Fprintf(&b, `<w:comment w:id="%d" w:author="%s" w:date="%s" w:initials="%s">`,
			c.ID, escape(c.Author), escape(c.Date), escape(c.Initials))
		b.WriteString("<w:p>")
		b.WriteString(string(c.Format))
		b.WriteString(`<w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr>` +
			`<w:annotationRef/></w:r>`)
		fmt.Fprintf(&b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, escape(c.Text))
		b.WriteString("</w:p></w:comment>")
	}
	for _, src := range odd {
		b.WriteString(src)
	}
	b.WriteString("</w:comments>")
	return b.Bytes()
}
