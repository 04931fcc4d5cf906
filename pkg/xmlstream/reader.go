package xmlstream

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const readerBufferSize = 64 * 1024

var (
	errNilReader = errors.New("nil XML reader")

	// ErrUnexpectedEOF is wrapped when the input ends inside an open element.
	ErrUnexpectedEOF = errors.New("unexpected end of XML input")
)

// SyntaxError reports ill-formed input at a position.
type SyntaxError struct {
	Err    error
	Msg    string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xml syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Reader provides a streaming XML event interface.
type Reader struct {
	dec       *xml.Decoder
	elemStack []QName
	opts      options
	seenRoot  bool
	done      bool
}

// NewReader creates a new streaming reader for r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	if r == nil {
		return nil, errNilReader
	}
	o := buildOptions(opts...)
	dec := xml.NewDecoder(bufio.NewReaderSize(r, readerBufferSize))
	dec.Strict = true
	dec.CharsetReader = o.charsetReader
	return &Reader{dec: dec, opts: o}, nil
}

// Depth returns the number of currently open elements.
func (r *Reader) Depth() int {
	return len(r.elemStack)
}

// Next returns the next event. It returns io.EOF once the root element has
// closed and the remaining input holds no further markup.
func (r *Reader) Next() (Event, error) {
	if r == nil || r.dec == nil {
		return Event{}, errNilReader
	}
	for {
		line, column := r.dec.InputPos()
		tok, err := r.dec.Token()
		if err != nil {
			return Event{}, r.wrapError(err, line, column)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if r.done {
				return Event{}, &SyntaxError{Msg: "content after root element", Line: line, Column: column}
			}
			if len(r.elemStack) >= r.opts.maxDepth {
				return Event{}, &SyntaxError{
					Msg:  fmt.Sprintf("element nesting exceeds %d", r.opts.maxDepth),
					Line: line, Column: column,
				}
			}
			name := QName{Namespace: t.Name.Space, Local: t.Name.Local}
			r.elemStack = append(r.elemStack, name)
			r.seenRoot = true
			return Event{
				Kind:   EventStartElement,
				Name:   name,
				Attrs:  convertAttrs(t.Attr),
				Line:   line,
				Column: column,
				Depth:  len(r.elemStack),
			}, nil

		case xml.EndElement:
			depth := len(r.elemStack)
			name := QName{Namespace: t.Name.Space, Local: t.Name.Local}
			if depth > 0 {
				r.elemStack = r.elemStack[:depth-1]
			}
			if len(r.elemStack) == 0 {
				r.done = true
			}
			return Event{
				Kind:   EventEndElement,
				Name:   name,
				Line:   line,
				Column: column,
				Depth:  depth,
			}, nil

		case xml.CharData:
			if len(r.elemStack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return Event{}, &SyntaxError{Msg: "character data outside root element", Line: line, Column: column}
				}
				continue
			}
			return Event{
				Kind:   EventCharData,
				Text:   string(t),
				Line:   line,
				Column: column,
				Depth:  len(r.elemStack),
			}, nil
		}
	}
}

// SkipSubtree consumes events up to and including the end element matching
// the most recent start element.
func (r *Reader) SkipSubtree() error {
	target := len(r.elemStack)
	if target == 0 {
		return fmt.Errorf("skip subtree: no open element")
	}
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == EventEndElement && ev.Depth == target {
			return nil
		}
	}
}

func (r *Reader) wrapError(err error, line, column int) error {
	if errors.Is(err, io.EOF) {
		if len(r.elemStack) > 0 {
			return fmt.Errorf("inside <%s>: %w", r.elemStack[len(r.elemStack)-1].Local, ErrUnexpectedEOF)
		}
		if !r.seenRoot {
			return &SyntaxError{Msg: "no root element", Line: line, Column: column, Err: ErrUnexpectedEOF}
		}
		return io.EOF
	}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		if strings.Contains(syn.Msg, "unexpected EOF") {
			return &SyntaxError{Msg: syn.Msg, Line: syn.Line, Column: column, Err: ErrUnexpectedEOF}
		}
		return &SyntaxError{Msg: syn.Msg, Line: syn.Line, Column: column, Err: err}
	}
	return err
}

func convertAttrs(in []xml.Attr) []Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(in))
	for _, a := range in {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		out = append(out, Attr{
			Name:  QName{Namespace: a.Name.Space, Local: a.Name.Local},
			Value: a.Value,
		})
	}
	return out
}
