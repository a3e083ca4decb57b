// Package xmlstream provides the pull cursor the decoders read from and the
// push sink the encoders write to.
package xmlstream

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// SyntaxError reports ill-formed or structurally unexpected markup at a
// position in the input.
type SyntaxError struct {
	Line, Column int
	Msg          string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("xml syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("xml syntax error: %s", e.Msg)
}

// Cursor is a forward-only pull cursor over the element events of a
// namespaced XML document. The current token is always a copy and stays
// valid after the cursor advances.
type Cursor struct {
	dec   *xml.Decoder
	tok   xml.Token
	depth int
}

// NewCursor returns a cursor before the first token of r.
func NewCursor(r io.Reader) *Cursor {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	return &Cursor{dec: dec}
}

// Token returns the current token.
func (c *Cursor) Token() xml.Token { return c.tok }

// Depth returns the element nesting depth of the current token. A start tag
// at the document root has depth 1, as does its matching end tag.
func (c *Cursor) Depth() int { return c.depth }

// IsStart reports whether the current token is a start tag.
func (c *Cursor) IsStart() bool {
	_, ok := c.tok.(xml.StartElement)
	return ok
}

// IsEnd reports whether the current token is an end tag.
func (c *Cursor) IsEnd() bool {
	_, ok := c.tok.(xml.EndElement)
	return ok
}

// Name returns the qualified name of the current start or end tag.
func (c *Cursor) Name() xml.Name {
	switch t := c.tok.(type) {
	case xml.StartElement:
		return t.Name
	case xml.EndElement:
		return t.Name
	}
	return xml.Name{}
}

// Attr returns the value of the attribute space:local on the current start
// tag. An empty space matches unqualified attributes only.
func (c *Cursor) Attr(space, local string) (string, bool) {
	start, ok := c.tok.(xml.StartElement)
	if !ok {
		return "", false
	}
	for _, a := range start.Attr {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value, true
		}
	}
	return "", false
}

// Pos returns the line and column of the decoder's input position.
func (c *Cursor) Pos() (line, column int) {
	return c.dec.InputPos()
}

// Errorf returns a *SyntaxError at the current position.
func (c *Cursor) Errorf(format string, args ...interface{}) error {
	line, col := c.Pos()
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

// Next advances by one token, skipping comments, processing instructions
// and directives.
func (c *Cursor) Next() (xml.Token, error) {
	if _, ok := c.tok.(xml.EndElement); ok {
		c.depth--
	}
	for {
		tok, err := c.dec.Token()
		if err != nil {
			if err == io.EOF {
				if c.depth > 0 {
					return nil, c.Errorf("unexpected end of document inside element")
				}
				c.tok = nil
				return nil, io.EOF
			}
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, &SyntaxError{Line: se.Line, Msg: se.Msg}
			}
			return nil, errors.Wrap(err, "reading xml")
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst, xml.Directive:
			continue
		case xml.StartElement:
			c.depth++
			c.tok = t.Copy()
		default:
			c.tok = xml.CopyToken(t)
		}
		return c.tok, nil
	}
}

// NextTag advances to the next start or end tag. Whitespace between tags is
// skipped; any other text is an error.
func (c *Cursor) NextTag() (xml.Token, error) {
	for {
		tok, err := c.Next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return tok, nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, c.Errorf("unexpected text %q", truncate(string(t)))
			}
		}
	}
}

// NextStart advances to the next start tag anywhere in the document,
// crossing end tags. It returns io.EOF at the end of input.
func (c *Cursor) NextStart() error {
	for {
		tok, err := c.Next()
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			return nil
		}
	}
}

// Require checks that the current token is a start tag (start true) or an
// end tag with the given name. An empty space matches any namespace.
func (c *Cursor) Require(start bool, space, local string) error {
	name := c.Name()
	kind := "end"
	ok := c.IsEnd()
	if start {
		kind = "start"
		ok = c.IsStart()
	}
	if !ok || name.Local != local || (space != "" && name.Space != space) {
		return c.Errorf("expected %s tag {%s}%s, found %s", kind, space, local, Describe(c.tok))
	}
	return nil
}

// ElementText reads the text content of the current start tag and leaves the
// cursor on its end tag. Child elements are an error.
func (c *Cursor) ElementText() (string, error) {
	if !c.IsStart() {
		return "", c.Errorf("element text requested on %s", Describe(c.tok))
	}
	var b strings.Builder
	for {
		tok, err := c.Next()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			return "", c.Errorf("unexpected element %s in text content", Describe(t))
		}
	}
}

// Skip consumes the subtree of the current start tag and leaves the cursor
// on its end tag.
func (c *Cursor) Skip() error {
	if !c.IsStart() {
		return c.Errorf("skip requested on %s", Describe(c.tok))
	}
	target := c.depth
	for {
		tok, err := c.Next()
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.EndElement); ok && c.depth == target {
			return nil
		}
	}
}

// Describe renders a token for error messages.
func Describe(tok xml.Token) string {
	switch t := tok.(type) {
	case xml.StartElement:
		return fmt.Sprintf("<{%s}%s>", t.Name.Space, t.Name.Local)
	case xml.EndElement:
		return fmt.Sprintf("</{%s}%s>", t.Name.Space, t.Name.Local)
	case xml.CharData:
		return fmt.Sprintf("text %q", truncate(string(t)))
	case nil:
		return "end of document"
	}
	return fmt.Sprintf("%T", tok)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
