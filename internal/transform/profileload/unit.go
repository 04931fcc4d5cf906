// Package profileload transfers profile assignments from model files in a
// directory onto the processed model. Loaded models can optionally be
// checked for profile consistency and compared with the processed model.
package profileload

import (
	"fmt"
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/diff"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Rules understood by the unit.
const (
	RuleLoadProfiles     pipeline.Rule = "rule-trf-profileLoader-loadProfiles"
	RuleValidateProfiles pipeline.Rule = "rule-trf-profileLoader-validateLoadedModelProfiles"
	RuleDiffModels       pipeline.Rule = "rule-trf-profileLoader-diffModels"
)

// UnitName is the configuration name of the unit.
const UnitName = "profileLoader"

// Parameters read by the unit.
const (
	ParamDirectory     = "directoryWithModelsToLoadFrom"
	ParamFileRegex     = "regexForModelFilesToLoad"
	ParamProfiles      = "profilesToLoad"
	ParamDiffKinds     = "diffElementTypes"
	ParamStrictProfile = "strictProfileValidation"

	defaultDiffKinds = "NAME,DOCUMENTATION,MULTIPLICITY"
	defaultCacheSize = 16
)

// DefaultExtensions select the model files when no file regex is configured.
var DefaultExtensions = []string{".xml", ".scxml"}

// Unit is the profile loader transformation.
type Unit struct {
	root      fs.FS
	cache     *lru.Cache[cacheKey, *model.Model]
	cacheSize int
}

// Option configures a Unit.
type Option func(*Unit)

// WithFS resolves the model directory inside fsys instead of the operating
// system file system.
func WithFS(fsys fs.FS) Option {
	return func(u *Unit) {
		u.root = fsys
	}
}

// WithCacheSize sets how many loaded models are kept between runs. A
// non-positive size keeps the default.
func WithCacheSize(size int) Option {
	return func(u *Unit) {
		u.cacheSize = size
	}
}

// New returns the unit.
func New(opts ...Option) *Unit {
	u := &Unit{}
	for _, opt := range opts {
		opt(u)
	}
	if u.cacheSize <= 0 {
		u.cacheSize = defaultCacheSize
	}
	cache, err := lru.New[cacheKey, *model.Model](u.cacheSize)
	if err != nil {
		// lru.New only rejects non-positive sizes.
		panic(fmt.Sprintf("profileload: cache of size %d: %v", u.cacheSize, err))
	}
	u.cache = cache
	return u
}

// Name implements pipeline.Unit.
func (u *Unit) Name() string { return UnitName }

// Rules implements pipeline.Unit.
func (u *Unit) Rules() []pipeline.Rule {
	return []pipeline.Rule{RuleLoadProfiles, RuleValidateProfiles, RuleDiffModels}
}

// Params implements pipeline.Unit.
func (u *Unit) Params() []pipeline.ParamSpec {
	return []pipeline.ParamSpec{
		{Name: ParamDirectory, RequiredBy: []pipeline.Rule{RuleLoadProfiles},
			Doc: "directory holding the models to load profiles from"},
		{Name: ParamFileRegex, Kind: pipeline.ParamRegex,
			Doc: "file names to load; without it files ending in .xml or .scxml are loaded"},
		{Name: ParamProfiles, Kind: pipeline.ParamList,
			Doc: "profiles to transfer; without it all profiles are transferred"},
		{Name: ParamDiffKinds, Kind: pipeline.ParamList, Default: defaultDiffKinds,
			Doc: "difference kinds reported when comparing models"},
		{Name: ParamStrictProfile, Kind: pipeline.ParamBool, Default: "false",
			Doc: "report profile inconsistencies as errors instead of warnings"},
	}
}

// Process implements pipeline.Unit.
func (u *Unit) Process(m *model.Model, cfg *pipeline.StepConfig, sink *mgerrors.Sink) error {
	if !cfg.Active(RuleLoadProfiles) {
		sink.Warnf(mgerrors.ErrInvalidConfiguration, UnitName, "%s is not active; no models loaded", RuleLoadProfiles)
		return nil
	}
	pattern, err := cfg.Params.Regexp(ParamFileRegex)
	if err != nil {
		sink.Errorf(mgerrors.ErrInvalidConfiguration, UnitName, "%s skipped: %v", RuleLoadProfiles, err)
		return nil
	}
	kinds, err := diff.ParseKinds(cfg.Params.StringList(ParamDiffKinds))
	if err != nil {
		sink.Warnf(mgerrors.ErrInvalidConfiguration, UnitName, "%s: %v", ParamDiffKinds, err)
	}

	dir := cfg.Params.Value(ParamDirectory)
	fsys, err := u.dirFS(dir)
	if err != nil {
		sink.Errorf(mgerrors.ErrInvalidConfiguration, UnitName, "%s skipped: %v", RuleLoadProfiles, err)
		return nil
	}
	names, err := modelFiles(fsys, pattern)
	if err != nil {
		sink.Errorf(mgerrors.ErrFileSkipped, dir, "%s skipped: %v", RuleLoadProfiles, err)
		return nil
	}

	t := &transfer{
		target:   m,
		sink:     sink,
		profiles: cfg.Params.StringSet(ParamProfiles),
	}
	for _, name := range names {
		loaded, ok := u.load(fsys, dir, name, sink)
		if !ok {
			continue
		}
		if cfg.Active(RuleValidateProfiles) {
			validateProfiles(loaded, name, cfg.Params.Bool(ParamStrictProfile), sink)
		}
		if cfg.Active(RuleDiffModels) {
			compare(m, loaded, kinds, sink)
		}
		n := t.from(loaded)
		sink.Infof(mgerrors.ErrTransformation, name, "profiles transferred to %d elements", n)
	}
	return nil
}

func (u *Unit) dirFS(dir string) (fs.FS, error) {
	if u.root == nil {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(u.root, dir)
}

// compare reports the differences between every selected schema of m and
// the schema of the same name in loaded.
func compare(m, loaded *model.Model, kinds sets.Set[diff.Kind], sink *mgerrors.Sink) {
	for _, schema := range m.SelectedSchemas() {
		other, ok := loaded.SchemaByName(schema.Name)
		if !ok {
			continue
		}
		diff.Schemas(loaded, other, m, schema).Filter(kinds).Report(sink, mgerrors.SeverityInfo)
	}
}
