package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ParamKind is the type of a parameter value.
type ParamKind uint8

const (
	ParamString ParamKind = iota
	ParamBool
	ParamList
	ParamRegex
)

// String returns the kind name.
func (k ParamKind) String() string {
	switch k {
	case ParamBool:
		return "boolean"
	case ParamList:
		return "list"
	case ParamRegex:
		return "regex"
	default:
		return "string"
	}
}

// ParamSpec declares one parameter of a unit.
type ParamSpec struct {
	Name    string
	Default string
	Doc     string
	// RequiredBy lists the rules that cannot run without the parameter.
	RequiredBy []Rule
	// UsedBy lists the rules reading the parameter. Empty means every rule.
	UsedBy []Rule
	Kind   ParamKind
}

// consumedBy reports whether any active rule reads the parameter.
func (s ParamSpec) consumedBy(active sets.Set[Rule]) bool {
	if len(s.UsedBy) == 0 && len(s.RequiredBy) == 0 {
		return true
	}
	return active.HasAny(s.UsedBy...) || active.HasAny(s.RequiredBy...)
}

// ErrInvalidParameter is wrapped by parameter validation failures.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params holds the parameter values of one step. Accessors fall back to the
// declared default when a value is absent.
type Params struct {
	values   map[string]string
	defaults map[string]string
	regexps  map[string]*regexp.Regexp
}

// NewParams returns parameters holding values.
func NewParams(values map[string]string) *Params {
	p := &Params{
		values:   make(map[string]string, len(values)),
		defaults: make(map[string]string),
		regexps:  make(map[string]*regexp.Regexp),
	}
	for k, v := range values {
		p.values[k] = v
	}
	return p
}

// Declare registers defaults from specs.
func (p *Params) Declare(specs []ParamSpec) {
	for _, s := range specs {
		if s.Default != "" {
			p.defaults[s.Name] = s.Default
		}
	}
}

// Has reports whether a value was given for name, even an empty one.
func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// String returns the value of name verbatim, or its default when absent.
func (p *Params) String(name string) string {
	if v, ok := p.values[name]; ok {
		return v
	}
	return p.defaults[name]
}

// given reports whether name holds a non-blank value.
func (p *Params) given(name string) bool {
	return strings.TrimSpace(p.values[name]) != ""
}

// Value returns the trimmed value of name. A blank value counts as absent
// and yields the default.
func (p *Params) Value(name string) string {
	if p.given(name) {
		return strings.TrimSpace(p.values[name])
	}
	return p.defaults[name]
}

// Bool returns the boolean value of name. A blank or unparsable value
// yields the default, or false.
func (p *Params) Bool(name string) bool {
	v, err := strconv.ParseBool(p.Value(name))
	return err == nil && v
}

// StringList returns the comma-separated values of name, trimmed, with
// empty entries dropped. A blank value yields the default list.
func (p *Params) StringList(name string) []string {
	var out []string
	for _, item := range strings.Split(p.Value(name), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// StringSet returns StringList as a set.
func (p *Params) StringSet(name string) sets.Set[string] {
	return sets.New(p.StringList(name)...)
}

// Regexp returns the compiled value of name. It returns nil when neither a
// value nor a default exists.
func (p *Params) Regexp(name string) (*regexp.Regexp, error) {
	if re, ok := p.regexps[name]; ok {
		return re, nil
	}
	src := p.Value(name)
	if src == "" {
		return nil, nil
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w: %w", name, ErrInvalidParameter, err)
	}
	p.regexps[name] = re
	return re, nil
}

// Validate checks the parameters read by the active rules: required values
// must be non-blank, booleans and regular expressions must parse. All
// problems are reported together.
func (p *Params) Validate(specs []ParamSpec, active sets.Set[Rule]) error {
	var errs []error
	for _, s := range specs {
		if !s.consumedBy(active) {
			continue
		}
		if !p.given(s.Name) {
			for _, r := range s.RequiredBy {
				if active.Has(r) {
					errs = append(errs, fmt.Errorf("parameter %s required by %s: %w", s.Name, r, ErrInvalidParameter))
					break
				}
			}
			continue
		}
		switch s.Kind {
		case ParamBool:
			if _, err := strconv.ParseBool(strings.TrimSpace(p.values[s.Name])); err != nil {
				errs = append(errs, fmt.Errorf("parameter %s: %q is not a boolean: %w", s.Name, p.values[s.Name], ErrInvalidParameter))
			}
		case ParamRegex:
			if _, err := p.Regexp(s.Name); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
