// Package loader performs one complete model load: parse, resolve and
// schema selection.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/go-logr/logr"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/parser"
	"github.com/jacoelho/modelgraph/internal/semanticresolve"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Config holds configuration for the model loader
type Config struct {
	FS fs.FS

	// Sink receives the diagnostics of the load. A discarding sink is used
	// when nil.
	Sink *mgerrors.Sink

	// SelectedSchemas names the schema packages selected for processing.
	// Empty selects every schema root.
	SelectedSchemas []string
}

// ModelLoader loads model documents.
type ModelLoader struct {
	config Config
	sink   *mgerrors.Sink
}

// NewLoader creates a new model loader with the given configuration
func NewLoader(cfg Config) *ModelLoader {
	sink := cfg.Sink
	if sink == nil {
		sink = mgerrors.NewSink(logr.Discard())
	}
	return &ModelLoader{config: cfg, sink: sink}
}

// Sink returns the sink diagnostics are recorded into.
func (l *ModelLoader) Sink() *mgerrors.Sink {
	return l.sink
}

// Load loads, resolves and selects the model at location in the configured FS.
func (l *ModelLoader) Load(location string) (*model.Model, error) {
	if l == nil || l.config.FS == nil {
		return nil, errors.New("no file system configured")
	}
	f, err := l.config.FS.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", location, err)
	}
	m, err := l.LoadReader(f)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		return nil, fmt.Errorf("close model %s: %w", location, closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", location, err)
	}
	return m, nil
}

// LoadReader loads, resolves and selects the model read from r.
func (l *ModelLoader) LoadReader(r io.Reader) (*model.Model, error) {
	m, err := parser.Parse(r, l.sink)
	if err != nil {
		return nil, err
	}
	semanticresolve.Resolve(m, l.sink)
	Select(m, l.config.SelectedSchemas, l.sink)
	return m, nil
}

// Select marks the named schema packages as selected. Names that match no
// schema package are reported and ignored.
func Select(m *model.Model, names []string, sink *mgerrors.Sink) {
	for _, name := range names {
		p, ok := m.SchemaByName(name)
		if !ok {
			sink.Warnf(mgerrors.ErrInvalidConfiguration, name, "selected schema %q not found", name)
			continue
		}
		m.SelectSchemas(p.ID)
	}
}
