package xmlstream

import (
	"bufio"
	"encoding/xml"
	"io"

	"github.com/cockroachdb/errors"
)

// Sink receives the element events of an encoded geometry.
type Sink interface {
	// StartElement opens an element. Attributes may follow until the first
	// child or text event.
	StartElement(space, local string) error
	Attr(space, local, value string) error
	Text(s string) error
	// EndElement closes the innermost open element.
	EndElement() error
	Flush() error
}

// Well known namespaces and the prefixes Writer binds them to.
const (
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// Writer is a Sink that serializes to an io.Writer with fixed prefixes.
// Namespace declarations for every bound prefix are written on the first
// element, so nested output never redeclares them.
type Writer struct {
	w        *bufio.Writer
	prefixes map[string]string
	order    []string
	stack    []string
	open     bool // start tag not yet closed with '>'
	empty    bool // no content since the start tag
	started  bool
	err      error
}

// NewWriter returns a writer that binds gmlNamespace to the "gml" prefix and
// the XLink namespace to "xlink".
func NewWriter(w io.Writer, gmlNamespace string) *Writer {
	wr := &Writer{w: bufio.NewWriter(w), prefixes: map[string]string{}}
	wr.Bind("gml", gmlNamespace)
	wr.Bind("xlink", NamespaceXLink)
	return wr
}

// Bind adds a prefix binding. It must be called before the first element.
func (w *Writer) Bind(prefix, space string) {
	if _, ok := w.prefixes[space]; ok || w.started {
		return
	}
	w.prefixes[space] = prefix
	w.order = append(w.order, space)
}

// Depth returns the number of open elements.
func (w *Writer) Depth() int { return len(w.stack) }

func (w *Writer) qname(space, local string) (string, error) {
	if space == "" {
		return local, nil
	}
	p, ok := w.prefixes[space]
	if !ok {
		return "", errors.Newf("no prefix bound for namespace %q", space)
	}
	return p + ":" + local, nil
}

func (w *Writer) closeStart() {
	if w.open {
		w.w.WriteByte('>')
		w.open = false
	}
}

func (w *Writer) StartElement(space, local string) error {
	if w.err != nil {
		return w.err
	}
	name, err := w.qname(space, local)
	if err != nil {
		return err
	}
	w.closeStart()
	w.w.WriteByte('<')
	w.w.WriteString(name)
	if !w.started {
		w.started = true
		for _, ns := range w.order {
			w.w.WriteString(" xmlns:" + w.prefixes[ns] + "=\"")
			w.escape(ns)
			w.w.WriteByte('"')
		}
	}
	w.stack = append(w.stack, name)
	w.open, w.empty = true, true
	return nil
}

func (w *Writer) Attr(space, local, value string) error {
	if w.err != nil {
		return w.err
	}
	if !w.open {
		return errors.Newf("attribute %s written outside a start tag", local)
	}
	name, err := w.qname(space, local)
	if err != nil {
		return err
	}
	w.w.WriteString(" " + name + "=\"")
	w.escape(value)
	w.w.WriteByte('"')
	return nil
}

func (w *Writer) Text(s string) error {
	if w.err != nil {
		return w.err
	}
	if len(w.stack) == 0 {
		return errors.New("text written outside an element")
	}
	w.closeStart()
	w.empty = false
	w.escape(s)
	return nil
}

func (w *Writer) EndElement() error {
	if w.err != nil {
		return w.err
	}
	if len(w.stack) == 0 {
		return errors.New("end element without open element")
	}
	name := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if w.open && w.empty {
		w.w.WriteString("/>")
		w.open = false
	} else {
		w.closeStart()
		w.w.WriteString("</" + name + ">")
	}
	w.empty = false
	return nil
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrap(err, "flushing xml output")
	}
	return w.err
}

func (w *Writer) escape(s string) {
	if err := xml.EscapeText(w.w, []byte(s)); err != nil && w.err == nil {
		w.err = errors.Wrap(err, "writing xml output")
	}
}
