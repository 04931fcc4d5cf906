package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ProfilesTag is the tagged value carrying profile assignments in text form.
const ProfilesTag = "profiles"

// Profile is one named profile assignment with optional parameters.
type Profile struct {
	Params map[string]string
	Name   string
}

// Profiles is the ordered profile assignment of an entity. An empty
// assignment means the entity belongs to every profile.
type Profiles []Profile

// ParseProfiles parses the text form "A,B[p1=v1;p2=v2]". Parameter values
// may contain commas.
func ParseProfiles(s string) (Profiles, error) {
	var out Profiles
	for _, item := range splitTopLevel(s) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, rest, hasParams := strings.Cut(item, "[")
		p := Profile{Name: strings.TrimSpace(name)}
		if p.Name == "" {
			return nil, fmt.Errorf("profiles %q: empty profile name", s)
		}
		if hasParams {
			body, ok := strings.CutSuffix(strings.TrimSpace(rest), "]")
			if !ok {
				return nil, fmt.Errorf("profiles %q: unterminated parameters of %s", s, p.Name)
			}
			for _, kv := range strings.Split(body, ";") {
				kv = strings.TrimSpace(kv)
				if kv == "" {
					continue
				}
				k, v, _ := strings.Cut(kv, "=")
				if p.Params == nil {
					p.Params = make(map[string]string)
				}
				p.Params[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		out.Set(p)
	}
	return out, nil
}

func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// Names returns the profile names in assignment order.
func (ps Profiles) Names() []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return names
}

// Has reports whether a profile is assigned.
func (ps Profiles) Has(name string) bool {
	return ps.index(name) >= 0
}

// Get returns a profile by name.
func (ps Profiles) Get(name string) (Profile, bool) {
	if i := ps.index(name); i >= 0 {
		return ps[i], true
	}
	return Profile{}, false
}

// Set adds p or replaces the profile with the same name.
func (ps *Profiles) Set(p Profile) {
	if i := ps.index(p.Name); i >= 0 {
		(*ps)[i] = p
		return
	}
	*ps = append(*ps, p)
}

// Remove deletes a profile by name.
func (ps *Profiles) Remove(name string) {
	if i := ps.index(name); i >= 0 {
		*ps = slices.Delete(*ps, i, i+1)
		if len(*ps) == 0 {
			*ps = nil
		}
	}
}

// Clone returns a deep copy.
func (ps Profiles) Clone() Profiles {
	if ps == nil {
		return nil
	}
	out := make(Profiles, len(ps))
	for i, p := range ps {
		out[i] = Profile{Name: p.Name, Params: maps.Clone(p.Params)}
	}
	return out
}

// String renders the text form accepted by ParseProfiles.
func (ps Profiles) String() string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		if len(p.Params) == 0 {
			continue
		}
		b.WriteByte('[')
		for j, k := range slices.Sorted(maps.Keys(p.Params)) {
			if j > 0 {
				b.WriteByte(';')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(p.Params[k])
		}
		b.WriteByte(']')
	}
	return b.String()
}

func (ps Profiles) index(name string) int {
	return slices.IndexFunc(ps, func(p Profile) bool { return p.Name == name })
}
