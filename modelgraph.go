package modelgraph

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/loader"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Document wraps a loaded model with the diagnostics recorded while
// loading and transforming it.
type Document struct {
	model *model.Model
	sink  *errors.Sink
}

// LoadOptions configures model loading.
type LoadOptions struct {
	// Logger receives every diagnostic as it is recorded. The zero value
	// discards them.
	Logger logr.Logger

	// SelectedSchemas names the application schemas processed by
	// transformations. Empty selects every schema.
	SelectedSchemas []string
}

// Load loads and resolves the model at location in fsys.
func Load(fsys fs.FS, location string) (*Document, error) {
	return LoadWithOptions(fsys, location, LoadOptions{})
}

// LoadWithOptions loads and resolves a model with explicit configuration.
func LoadWithOptions(fsys fs.FS, location string, opts LoadOptions) (*Document, error) {
	if fsys == nil {
		return nil, fmt.Errorf("load model %s: nil fs", location)
	}
	l := newLoader(fsys, opts)
	m, err := l.Load(location)
	if err != nil {
		return nil, err
	}
	return &Document{model: m, sink: l.Sink()}, nil
}

// LoadFile loads and resolves the model stored at path.
func LoadFile(path string, opts LoadOptions) (*Document, error) {
	return LoadWithOptions(os.DirFS(filepath.Dir(path)), filepath.Base(path), opts)
}

// LoadReader loads and resolves the model read from r.
func LoadReader(r io.Reader, opts LoadOptions) (*Document, error) {
	if r == nil {
		return nil, fmt.Errorf("load model: nil reader")
	}
	l := newLoader(nil, opts)
	m, err := l.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &Document{model: m, sink: l.Sink()}, nil
}

func newLoader(fsys fs.FS, opts LoadOptions) *loader.ModelLoader {
	return loader.NewLoader(loader.Config{
		FS:              fsys,
		Sink:            errors.NewSink(opts.Logger),
		SelectedSchemas: opts.SelectedSchemas,
	})
}

// Model returns the entity registry of the document.
func (d *Document) Model() *model.Model {
	return d.model
}

// Diagnostics returns everything recorded so far.
func (d *Document) Diagnostics() errors.DiagnosticList {
	return d.sink.Diagnostics()
}

// Err returns the recorded diagnostics of at least the given severity as
// an error, or nil when there are none.
func (d *Document) Err(minimum errors.Severity) error {
	return d.sink.Err(minimum)
}

// Transform runs p over the document model. Recoverable problems are
// recorded as diagnostics; the returned error means the run was aborted.
func (d *Document) Transform(p *Pipeline) error {
	if p == nil {
		return nil
	}
	return p.steps.Run(d.model, d.sink)
}
