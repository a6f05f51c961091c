package report

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Writer streams an XML document one element at a time, the Go analogue of
// the original engine's xml::Stream: a thin wrapper around an encoder that
// never buffers more than the currently open element path.
type Writer struct {
	enc *xml.Encoder
}

// NewWriter returns a Writer emitting to w, indenting with two spaces per
// level when indent is true.
func NewWriter(w io.Writer, indent bool) *Writer {
	enc := xml.NewEncoder(w)
	if indent {
		enc.Indent("", "  ")
	}
	return &Writer{enc: enc}
}

// Root opens the document's single root element.
func (w *Writer) Root(name string) *Element {
	return &Element{w: w, name: name}
}

// Flush flushes any buffered encoder output.
func (w *Writer) Flush() error {
	return w.enc.Flush()
}

// Element is one XML element under construction. Its start tag is written
// lazily, on the first SetAttribute-following AddChild/AddText/Close call,
// so attributes set after construction but before the first child still
// land on the tag — the Go stand-in for the original's RAII-scoped
// xml::StreamElement, whose attributes could be set any time before the
// element (or one of its descendants) left scope.
type Element struct {
	w       *Writer
	name    string
	attrs   []xml.Attr
	started bool
	closed  bool
}

// SetAttribute records an attribute, formatting value with fmt.Sprint.
// Chainable, mirroring xml::StreamElement::SetAttribute.
func (e *Element) SetAttribute(name string, value interface{}) *Element {
	e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Local: name}, Value: fmt.Sprint(value)})
	return e
}

func (e *Element) ensureStarted() {
	if e.started {
		return
	}
	_ = e.w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: e.name}, Attr: e.attrs})
	e.started = true
}

// AddChild opens a child element. The caller is responsible for Close-ing
// it (typically via defer) before closing or adding further children to the
// parent, since the underlying encoder is a single ordered token stream.
func (e *Element) AddChild(name string) *Element {
	e.ensureStarted()
	return &Element{w: e.w, name: name}
}

// AddText appends character data to the element and flushes its start tag
// if not already open.
func (e *Element) AddText(value interface{}) *Element {
	e.ensureStarted()
	_ = e.w.enc.EncodeToken(xml.CharData([]byte(fmt.Sprint(value))))
	return e
}

// Close writes the element's end tag (opening it first, as an empty
// element, if it never received a child or text).
func (e *Element) Close() {
	if e.closed {
		return
	}
	e.ensureStarted()
	_ = e.w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: e.name}})
	e.closed = true
}
