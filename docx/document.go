package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/redlinehq/redline"
)

const nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// chunk is one sequential slice of word/document.xml: either verbatim
// XML or a parsed paragraph. Concatenating the chunks in order, with
// paragraphs re-rendered, reproduces the part.
type chunk struct {
	raw  string
	pTag string // paragraph start tag without the closing '>' or '/>'
	para *redline.Paragraph
}

type docParser struct {
	d    *xml.Decoder
	data []byte
}

// parseDocument slices the part into raw chunks and paragraphs. Every
// w:p element at any depth becomes a paragraph, so table cell content
// is addressable like body text.
func parseDocument(data []byte) ([]chunk, error) {
	dp := &docParser{d: xml.NewDecoder(bytes.NewReader(data)), data: data}
	var chunks []chunk
	rawFrom := int64(0)
	for {
		off := dp.d.InputOffset()
		tok, err := dp.d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t, ok := tok.(xml.StartElement)
		if !ok || t.Name.Space != nsW || t.Name.Local != "p" {
			continue
		}
		if off > rawFrom {
			chunks = append(chunks, chunk{raw: string(data[rawFrom:off])})
		}
		tag, selfClosed, err := startTag(data, off)
		if err != nil {
			return nil, err
		}
		para := new(redline.Paragraph)
		if !selfClosed {
			if para, err = dp.paragraph(); err != nil {
				return nil, err
			}
		} else if err = dp.d.Skip(); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk{pTag: tag, para: para})
		rawFrom = dp.d.InputOffset()
	}
	if int(rawFrom) < len(data) {
		chunks = append(chunks, chunk{raw: string(data[rawFrom:])})
	}
	return chunks, nil
}

// paragraph consumes tokens up to the matching end of the already read
// w:p start element.
func (dp *docParser) paragraph() (*redline.Paragraph, error) {
	para := new(redline.Paragraph)
	for {
		off := dp.d.InputOffset()
		tok, err := dp.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return para, nil
		case xml.StartElement:
			if t.Name.Space != nsW {
				if err = dp.rawNode(para, off); err != nil {
					return nil, err
				}
				continue
			}
			switch t.Name.Local {
			case "pPr":
				raw, err := dp.rawElem(off)
				if err != nil {
					return nil, err
				}
				para.Format = redline.Format(raw)
			case "r":
				n, err := dp.run(off, false)
				if err != nil {
					return nil, err
				}
				para.Nodes = append(para.Nodes, n)
			case "ins", "del":
				n, err := dp.marker(t, off)
				if err != nil {
					return nil, err
				}
				para.Nodes = append(para.Nodes, n)
			case "commentRangeStart", "commentRangeEnd":
				id := attrInt(t, "id")
				if err = dp.d.Skip(); err != nil {
					return nil, err
				}
				if t.Name.Local == "commentRangeStart" {
					para.Nodes = append(para.Nodes, &redline.CommentStart{ID: id})
				} else {
					para.Nodes = append(para.Nodes, &redline.CommentEnd{ID: id})
				}
			default:
				if err = dp.rawNode(para, off); err != nil {
					return nil, err
				}
			}
		}
	}
}

type runData struct {
	format redline.Format
	text   string
	plain  bool
	refID  int
	isRef  bool
}

// run parses one w:r element. Runs holding only properties and text are
// modeled; a run carrying a comment reference becomes a CommentRef, and
// anything richer (breaks, tabs, drawings, fields) stays raw.
func (dp *docParser) run(startOff int64, deleted bool) (redline.Node, error) {
	rd, err := dp.runData(deleted)
	if err != nil {
		return nil, err
	}
	switch {
	case rd.isRef:
		return &redline.CommentRef{ID: rd.refID}, nil
	case rd.plain:
		return &redline.Run{Text: rd.text, Format: rd.format}, nil
	}
	return &redline.Raw{XML: string(dp.data[startOff:dp.d.InputOffset()])}, nil
}

func (dp *docParser) runData(deleted bool) (rd runData, err error) {
	rd.plain = true
	for {
		off := dp.d.InputOffset()
		tok, err := dp.d.Token()
		if err != nil {
			return rd, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return rd, nil
		case xml.StartElement:
			switch {
			case t.Name.Space == nsW && t.Name.Local == "rPr":
				raw, err := dp.rawElem(off)
				if err != nil {
					return rd, err
				}
				rd.format = redline.Format(raw)
			case t.Name.Space == nsW && t.Name.Local == "t" && !deleted,
				t.Name.Space == nsW && t.Name.Local == "delText" && deleted:
				txt, err := dp.textOf()
				if err != nil {
					return rd, err
				}
				rd.text += txt
			case t.Name.Space == nsW && t.Name.Local == "commentReference":
				rd.refID = attrInt(t, "id")
				rd.isRef = true
				if err = dp.d.Skip(); err != nil {
					return rd, err
				}
			default:
				rd.plain = false
				if err = dp.d.Skip(); err != nil {
					return rd, err
				}
			}
		}
	}
}

// marker parses a w:ins or w:del element into a revision marker. A
// marker holding anything but plain runs stays raw.
func (dp *docParser) marker(start xml.StartElement, startOff int64) (redline.Node, error) {
	deleted := start.Name.Local == "del"
	id := attrInt(start, "id")
	author := attr(start, "author")
	date := attr(start, "date")
	var runs []*redline.Run
	plain := true
	for {
		tok, err := dp.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if !plain {
				return &redline.Raw{XML: string(dp.data[startOff:dp.d.InputOffset()])}, nil
			}
			if deleted {
				return &redline.Del{ID: id, Author: author, Date: date, Runs: runs}, nil
			}
			return &redline.Ins{ID: id, Author: author, Date: date, Runs: runs}, nil
		case xml.StartElement:
			if t.Name.Space != nsW || t.Name.Local != "r" {
				plain = false
				if err = dp.d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			rd, err := dp.runData(deleted)
			if err != nil {
				return nil, err
			}
			if !rd.plain || rd.isRef {
				plain = false
				continue
			}
			runs = append(runs, &redline.Run{Text: rd.text, Format: rd.format})
		}
	}
}

// textOf concatenates the character data of the already entered text
// element.
func (dp *docParser) textOf() (string, error) {
	var sb bytes.Buffer
	for {
		tok, err := dp.d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			if err = dp.d.Skip(); err != nil {
				return "", err
			}
		}
	}
}

// rawNode captures the element starting at off verbatim.
func (dp *docParser) rawNode(para *redline.Paragraph, off int64) error {
	raw, err := dp.rawElem(off)
	if err != nil {
		return err
	}
	para.Nodes = append(para.Nodes, &redline.Raw{XML: raw})
	return nil
}

// rawElem skips over the already entered element and returns its full
// source text, start tag included.
func (dp *docParser) rawElem(off int64) (string, error) {
	if err := dp.d.Skip(); err != nil {
		return "", err
	}
	return string(dp.data[off:dp.d.InputOffset()]), nil
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrInt(e xml.StartElement, local string) int {
	n, _ := strconv.Atoi(attr(e, local))
	return n
}

// startTag returns the source of the start tag at off without its
// closing bracket, honoring quoted attribute values.
func startTag(data []byte, off int64) (tag string, selfClosed bool, err error) {
	var quote byte
	for i := int(off); i < len(data); i++ {
		c := data[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			if data[i-1] == '/' {
				return string(data[off : i-1]), true, nil
			}
			return string(data[off:i]), false, nil
		}
	}
	return "", false, errors.New("unterminated start tag")
}

// renderDocument reassembles the part from its chunks.
func renderDocument(chunks []chunk) []byte {
	var b bytes.Buffer
	for _, c := range chunks {
		if c.para == nil {
			b.WriteString(c.raw)
			continue
		}
		writeParagraph(&b, c.pTag, c.para)
	}
	return b.Bytes()
}

func writeParagraph(b *bytes.Buffer, pTag string, p *redline.Paragraph) {
	b.WriteString(pTag)
	b.WriteByte('>')
	if p.Format != "" {
		b.WriteString(string(p.Format))
	}
	for _, n := range p.Nodes {
		writeNode(b, n)
	}
	b.WriteString("</w:p>")
}

func writeNode(b *bytes.Buffer, n redline.Node) {
	switch n := n.(type) {
	case *redline.Run:
		writeRun(b, n, false)
	case *redline.Ins:
		fmt.Fprintf(b, `<w:ins w:id="%d" w:author="%s" w:date="%s">`,
			n.ID, escape(n.Author), escape(n.Date))
		for _, r := range n.Runs {
			writeRun(b, r, false)
		}
		b.WriteString("</w:ins>")
	case *redline.Del:
		fmt.Fprintf(b, `<w:del w:id="%d" w:author="%s" w:date="%s">`,
			n.ID, escape(n.Author), escape(n.Date))
		for _, r := range n.Runs {
			writeRun(b, r, true)
		}
		b.WriteString("</w:del>")
	case *redline.CommentStart:
		fmt.Fprintf(b, `<w:commentRangeStart w:id="%d"/>`, n.ID)
	case *redline.CommentEnd:
		fmt.Fprintf(b, `<w:commentRangeEnd w:id="%d"/>`, n.ID)
	case *redline.CommentRef:
		fmt.Fprintf(b, `<w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr>`+
			`<w:commentReference w:id="%d"/></w:r>`, n.ID)
	case *redline.Raw:
		b.WriteString(n.XML)
	}
}

func writeRun(b *bytes.Buffer, r *redline.Run, deleted bool) {
	tag := "w:t"
	if deleted {
		tag = "w:delText"
	}
	b.WriteString("<w:r>")
	b.WriteString(string(r.Format))
	fmt.Fprintf(b, `<%s xml:space="preserve">%s</%s>`, tag, escape(r.Text), tag)
	b.WriteString("</w:r>")
}

func escape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
