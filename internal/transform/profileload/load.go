package profileload

import (
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/loader"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// cacheKey identifies one version of a model file. A file rewritten in
// place changes its size or modification time and misses the cache.
type cacheKey struct {
	dir     string
	name    string
	size    int64
	modTime int64
}

// modelFiles lists the regular files of fsys selected by pattern, or by
// DefaultExtensions when pattern is nil, in file name order.
func modelFiles(fsys fs.FS, pattern *regexp.Regexp) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if pattern != nil {
			if pattern.MatchString(name) {
				names = append(names, name)
			}
			continue
		}
		if slices.Contains(DefaultExtensions, strings.ToLower(path.Ext(name))) {
			names = append(names, name)
		}
	}
	return names, nil
}

// load returns the model stored in name. Failures are recorded and reported
// as false so the remaining files are still processed.
func (u *Unit) load(fsys fs.FS, dir, name string, sink *mgerrors.Sink) (*model.Model, bool) {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		sink.Errorf(mgerrors.ErrFileSkipped, name, "stat: %v", err)
		return nil, false
	}
	key := cacheKey{dir: dir, name: name, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if m, ok := u.cache.Get(key); ok {
		sink.Debugf(mgerrors.ErrTransformation, name, "model taken from cache")
		return m, true
	}

	m, err := loader.NewLoader(loader.Config{FS: fsys, Sink: sink}).Load(name)
	if err != nil {
		sink.Errorf(mgerrors.ErrFileSkipped, name, "file skipped: %v", err)
		return nil, false
	}
	u.cache.Add(key, m)
	return m, true
}
