package modelgraph

import (
	"fmt"
	"io/fs"

	"github.com/go-logr/logr"

	"github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/internal/transform/profileload"
	"github.com/jacoelho/modelgraph/internal/transform/propertymetadata"
	"github.com/jacoelho/modelgraph/internal/transform/taggedvalue"
	"github.com/jacoelho/modelgraph/internal/transform/typeconvert"
)

// Pipeline is an ordered list of configured transformations.
type Pipeline struct {
	steps *pipeline.Pipeline
}

// UnitInfo describes a transformation unit available to pipelines.
type UnitInfo struct {
	Name   string
	Rules  []string
	Params []ParamInfo
}

// ParamInfo describes one parameter of a unit.
type ParamInfo struct {
	Name    string
	Default string
	Doc     string
}

func defaultRegistry() *pipeline.Registry {
	return pipeline.NewRegistry(
		taggedvalue.New(),
		typeconvert.New(),
		propertymetadata.New(),
		profileload.New(),
	)
}

// Units lists the transformation units pipelines can use, sorted by name.
func Units() []UnitInfo {
	reg := defaultRegistry()
	out := make([]UnitInfo, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		u, _ := reg.Lookup(name)
		info := UnitInfo{Name: name}
		for _, r := range u.Rules() {
			info.Rules = append(info.Rules, string(r))
		}
		for _, p := range u.Params() {
			info.Params = append(info.Params, ParamInfo{Name: p.Name, Default: p.Default, Doc: p.Doc})
		}
		out = append(out, info)
	}
	return out
}

// ParsePipeline builds a pipeline from its YAML configuration. Steps naming
// unknown units are rejected.
func ParsePipeline(data []byte) (*Pipeline, error) {
	cfg, err := pipeline.ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return buildPipeline(cfg)
}

// LoadPipeline reads the YAML pipeline configuration at name in fsys.
func LoadPipeline(fsys fs.FS, name string) (*Pipeline, error) {
	cfg, err := pipeline.LoadConfig(fsys, name)
	if err != nil {
		return nil, err
	}
	return buildPipeline(cfg)
}

func buildPipeline(cfg *pipeline.Config) (*Pipeline, error) {
	sink := errors.NewSink(logr.Discard())
	p := pipeline.Build(cfg, defaultRegistry(), sink)
	if err := sink.Err(errors.SeverityError); err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return &Pipeline{steps: p}, nil
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return p.steps.Len()
}
