package profileload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/parser"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/internal/semanticresolve"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// schemaDoc builds a schema S with classes Road and Bridge. Profile
// assignments are given in the text form of the profiles tagged value.
func schemaDoc(version, road, width, bridge string) string {
	tv := func(profiles string) string {
		if profiles == "" {
			return ""
		}
		return `<taggedValues><TaggedValue><name>profiles</name><values><value>` + profiles + `</value></values></TaggedValue></taggedValues>`
	}
	return `<Model><packages><Package><id>p</id><name>S</name><isSchema>true</isSchema><version>` + version + `</version><classes>
  <Class><id>Road</id><name>Road</name>` + tv(road) + `<properties>
    <Property><id>r.w</id><name>width</name><cardinality>1</cardinality>` + tv(width) + `</Property>
  </properties></Class>
  <Class><id>Bridge</id><name>Bridge</name>` + tv(bridge) + `<supertypes><id>Road</id></supertypes></Class>
</classes></Package></packages></Model>`
}

func load(t *testing.T, doc string) *model.Model {
	t.Helper()
	sink := mgerrors.NewSink(logr.Discard())
	m, err := parser.Parse(strings.NewReader(doc), sink)
	require.NoError(t, err)
	semanticresolve.Resolve(m, sink)
	return m
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func run(t *testing.T, u *Unit, m *model.Model, rules []pipeline.Rule, params map[string]string) *mgerrors.Sink {
	t.Helper()
	sink := mgerrors.NewSink(logr.Discard())
	require.NoError(t, pipeline.Apply(u, m, pipeline.NewStepConfig(rules, params), sink))
	return sink
}

func profilesOf(t *testing.T, m *model.Model, id string) string {
	t.Helper()
	el, ok := m.Lookup(id)
	require.True(t, ok, id)
	switch e := el.(type) {
	case *model.Class:
		return e.Profiles.String()
	case *model.Property:
		return e.Profiles.String()
	}
	t.Fatalf("%s is not a class or property", id)
	return ""
}

func TestLoadProfilesOverwrites(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"source.xml": schemaDoc("1.0", "A,B[x=1]", "A", "A"),
		"notes.txt":  "not a model",
	})
	m := load(t, schemaDoc("1.0", "C", "C", ""))

	sink := run(t, New(), m, []pipeline.Rule{RuleLoadProfiles}, map[string]string{ParamDirectory: dir})

	assert.Equal(t, "A,B[x=1]", profilesOf(t, m, "Road"))
	assert.Equal(t, "A", profilesOf(t, m, "r.w"))
	assert.Equal(t, "A", profilesOf(t, m, "Bridge"))
	assert.Empty(t, sink.Diagnostics().Filter(mgerrors.SeverityWarning))
	assert.Len(t, sink.Diagnostics().WithCode(mgerrors.ErrTransformation).Filter(mgerrors.SeverityInfo), 1)
}

func TestLoadSelectedProfiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{"source.scxml": schemaDoc("1.0", "A,B[x=1]", "A", "")})
	m := load(t, schemaDoc("1.0", "A[y=2],C", "C", "C"))

	run(t, New(), m, []pipeline.Rule{RuleLoadProfiles}, map[string]string{
		ParamDirectory: dir,
		ParamProfiles:  "A,B",
	})

	assert.Equal(t, "C,A,B[x=1]", profilesOf(t, m, "Road"))
	assert.Equal(t, "C,A", profilesOf(t, m, "r.w"))
	assert.Equal(t, "C", profilesOf(t, m, "Bridge"))
}

func TestFileFailuresAreIsolated(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a-broken.xml": `<Model><packages><Package>`,
		"b-good.xml":   schemaDoc("1.0", "A", "", ""),
	})
	m := load(t, schemaDoc("1.0", "", "", ""))

	sink := run(t, New(), m, []pipeline.Rule{RuleLoadProfiles}, map[string]string{ParamDirectory: dir})

	skipped := sink.Diagnostics().WithCode(mgerrors.ErrFileSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, "a-broken.xml", skipped[0].Subject)
	assert.Equal(t, mgerrors.SeverityError, skipped[0].Severity)
	assert.Equal(t, "A", profilesOf(t, m, "Road"))
}

func TestFileRegex(t *testing.T) {
	fsys := fstest.MapFS{
		"models/first.model":  {Data: []byte(schemaDoc("1.0", "A", "", ""))},
		"models/second.model": {Data: []byte(schemaDoc("1.0", "B", "", ""))},
		"models/third.xml":    {Data: []byte(schemaDoc("1.0", "C", "", ""))},
	}
	m := load(t, schemaDoc("1.0", "", "", ""))
	run(t, New(WithFS(fsys)), m, []pipeline.Rule{RuleLoadProfiles}, map[string]string{
		ParamDirectory: "models",
		ParamFileRegex: `\.model$`,
	})
	assert.Equal(t, "B", profilesOf(t, m, "Road"), "files are processed in name order")
}

func TestValidateLoadedProfiles(t *testing.T) {
	files := map[string]string{"source.xml": schemaDoc("1.0", "A", "A,B", "A,C")}
	tests := []struct {
		name     string
		strict   string
		severity mgerrors.Severity
	}{
		{name: "lenient", strict: "false", severity: mgerrors.SeverityWarning},
		{name: "strict", strict: "true", severity: mgerrors.SeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, files)
			m := load(t, schemaDoc("1.0", "", "", ""))
			sink := run(t, New(), m, []pipeline.Rule{RuleLoadProfiles, RuleValidateProfiles}, map[string]string{
				ParamDirectory:     dir,
				ParamStrictProfile: tt.strict,
			})
			found := sink.Diagnostics().WithCode(mgerrors.ErrProfileInconsistency)
			require.Len(t, found, 2)
			subjects := []string{found[0].Subject, found[1].Subject}
			assert.ElementsMatch(t, []string{"Road::width", "Bridge"}, subjects)
			for _, d := range found {
				assert.Equal(t, tt.severity, d.Severity)
				assert.Contains(t, d.Message, "source.xml")
			}
		})
	}
}

func TestDiffModels(t *testing.T) {
	dir := writeFiles(t, map[string]string{"source.xml": schemaDoc("0.9", "A", "", "")})
	m := load(t, schemaDoc("1.0", "", "", ""))
	sink := run(t, New(), m, []pipeline.Rule{RuleLoadProfiles, RuleDiffModels}, map[string]string{
		ParamDirectory: dir,
		ParamDiffKinds: "PROFILE",
	})
	diffs := sink.Diagnostics().WithCode(mgerrors.ErrModelDifference)
	var messages []string
	for _, d := range diffs {
		messages = append(messages, d.Message)
	}
	assert.ElementsMatch(t, []string{
		`S: change VERSION "0.9" -> "1.0"`,
		`S::Road: delete PROFILE A`,
	}, messages)
}

func TestCacheReusesUnchangedFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{"source.xml": schemaDoc("1.0", "A", "", "")})
	u := New(WithCacheSize(2))
	params := map[string]string{ParamDirectory: dir}

	run(t, u, load(t, schemaDoc("1.0", "", "", "")), []pipeline.Rule{RuleLoadProfiles}, params)
	assert.Equal(t, 1, u.cache.Len())

	sink := run(t, u, load(t, schemaDoc("1.0", "", "", "")), []pipeline.Rule{RuleLoadProfiles}, params)
	var cached int
	for _, d := range sink.Diagnostics() {
		if strings.Contains(d.Message, "cache") {
			cached++
		}
	}
	assert.Equal(t, 1, cached)
}

func TestCacheSizeClamped(t *testing.T) {
	dir := writeFiles(t, map[string]string{"source.xml": schemaDoc("1.0", "A", "", "")})
	for _, size := range []int{0, -3} {
		u := New(WithCacheSize(size))
		require.NotNil(t, u.cache)
		run(t, u, load(t, schemaDoc("1.0", "", "", "")), []pipeline.Rule{RuleLoadProfiles},
			map[string]string{ParamDirectory: dir})
		assert.Equal(t, 1, u.cache.Len(), "size %d", size)
	}
}

func TestConfigurationErrors(t *testing.T) {
	t.Run("missing directory parameter", func(t *testing.T) {
		m := load(t, schemaDoc("1.0", "", "", ""))
		sink := run(t, New(), m, []pipeline.Rule{RuleLoadProfiles}, nil)
		assert.Len(t, sink.Diagnostics().WithCode(mgerrors.ErrInvalidConfiguration), 1)
	})

	t.Run("directory does not exist", func(t *testing.T) {
		m := load(t, schemaDoc("1.0", "", "", ""))
		sink := run(t, New(), m, []pipeline.Rule{RuleLoadProfiles},
			map[string]string{ParamDirectory: filepath.Join(t.TempDir(), "missing")})
		assert.Len(t, sink.Diagnostics().Filter(mgerrors.SeverityError), 1)
	})

	t.Run("validation without loading", func(t *testing.T) {
		m := load(t, schemaDoc("1.0", "", "", ""))
		before := m.Clone()
		sink := run(t, New(), m, []pipeline.Rule{RuleValidateProfiles}, map[string]string{ParamDirectory: "unused"})
		assert.True(t, model.Equal(before, m))
		assert.Len(t, sink.Diagnostics().WithCode(mgerrors.ErrInvalidConfiguration), 1)
	})
}

func TestNoOpWithoutRules(t *testing.T) {
	m := load(t, schemaDoc("1.0", "", "", ""))
	before := m.Clone()
	run(t, New(), m, nil, map[string]string{ParamDirectory: "unused"})
	assert.True(t, model.Equal(before, m))
}
