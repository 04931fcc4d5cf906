// Package parser builds a model graph from a streaming token sequence.
//
// The Builder is push-based: callers hand it start-element, character-data
// and end-element events in document order. Internally it keeps an explicit
// stack of handlers, one per structurally distinct element kind. The active
// handler either captures a leaf value, pushes a handler for a nested
// construct, or skips an unrecognized subtree after recording a diagnostic.
// When a handler completes, it is popped and its parent is notified through
// childDone; handlers never hold references to their parents.
package parser

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/go-logr/logr"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
	"github.com/jacoelho/modelgraph/pkg/xmlstream"
)

// handler consumes the events of one construct. close reports whether the
// end event terminated the construct.
type handler interface {
	open(b *Builder, ev *xmlstream.Event) error
	text(s string)
	close(b *Builder, ev *xmlstream.Event) (bool, error)
	childDone(b *Builder, child handler) error
}

// Builder reconstructs a model from pushed events.
type Builder struct {
	model       *model.Model
	sink        *mgerrors.Sink
	current     *xmlstream.Event
	stack       []handler
	pendingEnds []*model.Property
	rooted      bool
	done        bool
}

// NewBuilder returns a builder registering entities into m and recording
// diagnostics into sink.
func NewBuilder(m *model.Model, sink *mgerrors.Sink) *Builder {
	if sink == nil {
		sink = mgerrors.NewSink(logr.Discard())
	}
	b := &Builder{model: m, sink: sink}
	b.stack = []handler{&documentHandler{}}
	return b
}

// Model returns the model being built.
func (b *Builder) Model() *model.Model {
	return b.model
}

// Push dispatches one event to the active handler.
func (b *Builder) Push(ev xmlstream.Event) error {
	if b.done {
		return fmt.Errorf("%w: event %s after end of document", mgerrors.ErrMalformed, ev.Kind)
	}
	b.current = &ev
	top := b.stack[len(b.stack)-1]
	switch ev.Kind {
	case xmlstream.EventStartElement:
		b.rooted = true
		if err := top.open(b, &ev); err != nil {
			return err
		}
		if _, skipped := b.stack[len(b.stack)-1].(*skipHandler); !skipped {
			b.checkAttrs(&ev)
		}
		return nil
	case xmlstream.EventCharData:
		top.text(ev.Text)
		return nil
	case xmlstream.EventEndElement:
		finished, err := top.close(b, &ev)
		if err != nil || !finished {
			return err
		}
		b.stack = b.stack[:len(b.stack)-1]
		if len(b.stack) == 0 {
			return fmt.Errorf("%w: unbalanced end element %s", mgerrors.ErrMalformed, ev.Name.Local)
		}
		if err := b.stack[len(b.stack)-1].childDone(b, top); err != nil {
			return err
		}
		if len(b.stack) == 1 {
			b.done = true
		}
		return nil
	default:
		return nil
	}
}

// Finish validates that the document was complete and registers the
// association ends that no class owns.
func (b *Builder) Finish() error {
	if !b.rooted {
		return fmt.Errorf("%w: no root element", mgerrors.ErrMalformed)
	}
	if len(b.stack) > 1 {
		return fmt.Errorf("%d open constructs: %w", len(b.stack)-1, mgerrors.ErrPrematureEOF)
	}
	for _, p := range b.pendingEnds {
		if _, ok := b.model.Lookup(p.ID); ok {
			continue
		}
		if err := b.model.AddDetachedProperty(p); err != nil {
			b.registrationFailed(model.KindProperty, p.Name, err)
		}
	}
	b.pendingEnds = nil
	return nil
}

// Parse reads a model document from r into a new model.
func Parse(r io.Reader, sink *mgerrors.Sink) (*model.Model, error) {
	m := model.New()
	if err := ParseInto(m, r, sink); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseInto reads a model document from r into m.
func ParseInto(m *model.Model, r io.Reader, sink *mgerrors.Sink) error {
	reader, err := xmlstream.NewReader(r)
	if err != nil {
		return fmt.Errorf("parse model: %w", err)
	}
	b := NewBuilder(m, sink)
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return wrapStreamError(err)
		}
		if err := b.Push(ev); err != nil {
			return fmt.Errorf("parse model at line %d: %w", ev.Line, err)
		}
	}
	return b.Finish()
}

func wrapStreamError(err error) error {
	if errors.Is(err, xmlstream.ErrUnexpectedEOF) {
		return fmt.Errorf("parse model: %w: %w", mgerrors.ErrPrematureEOF, err)
	}
	return fmt.Errorf("parse model: %w: %w", mgerrors.ErrMalformed, err)
}

func (b *Builder) push(h handler) {
	b.stack = append(b.stack, h)
}

// skip records an unknown-element diagnostic and ignores the subtree of ev.
func (b *Builder) skip(ev *xmlstream.Event, context string) {
	d := mgerrors.NewDiagnosticf(mgerrors.ErrUnknownElement, mgerrors.SeverityDebug, ev.Name.Local,
		"unrecognized element <%s> in %s skipped", ev.Name.Local, context)
	d.Line, d.Column = ev.Line, ev.Column
	b.sink.Add(d)
	b.push(&skipHandler{})
}

func (b *Builder) report(code mgerrors.ErrorCode, sev mgerrors.Severity, subject, format string, args ...any) {
	d := mgerrors.NewDiagnosticf(code, sev, subject, format, args...)
	if b.current != nil {
		d.Line, d.Column = b.current.Line, b.current.Column
	}
	b.sink.Add(d)
}

// knownAttrs lists the attributes read per element. Any other attribute on
// a recognized element is reported and ignored.
var knownAttrs = map[string][]string{
	"Model":       {"version"},
	"TaggedValue": {"name"},
	"Profile":     {"name"},
	"end1":        {"ref"},
	"end2":        {"ref"},
}

func (b *Builder) checkAttrs(ev *xmlstream.Event) {
	for _, a := range ev.Attrs {
		if slices.Contains(knownAttrs[ev.Name.Local], a.Name.Local) {
			continue
		}
		b.report(mgerrors.ErrUnknownAttribute, mgerrors.SeverityDebug, a.Name.Local,
			"unrecognized attribute %s on <%s> ignored", a.Name.Local, ev.Name.Local)
	}
}

// skipHandler ignores a subtree, tracking nesting depth.
type skipHandler struct {
	depth int
}

func (h *skipHandler) open(*Builder, *xmlstream.Event) error {
	h.depth++
	return nil
}

func (h *skipHandler) text(string) {}

func (h *skipHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	h.depth--
	return h.depth < 0, nil
}

func (h *skipHandler) childDone(*Builder, handler) error { return nil }

// documentHandler sits at the bottom of the stack and accepts the root element.
type documentHandler struct{}

func (h *documentHandler) open(b *Builder, ev *xmlstream.Event) error {
	switch ev.Name.Local {
	case "Model":
		mh := &modelHandler{}
		if v, ok := ev.Attr("version"); ok {
			b.model.Version = v
		}
		b.push(mh)
	case "Package":
		b.push(newPackageHandler())
	default:
		b.report(mgerrors.ErrUnknownElement, mgerrors.SeverityError, ev.Name.Local,
			"unrecognized root element <%s>", ev.Name.Local)
		b.push(&skipHandler{})
	}
	return nil
}

func (h *documentHandler) text(string) {}

func (h *documentHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return false, fmt.Errorf("%w: end element without root", mgerrors.ErrMalformed)
}

func (h *documentHandler) childDone(*Builder, handler) error { return nil }
