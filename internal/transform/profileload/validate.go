package profileload

import (
	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// validateProfiles checks that the profile assignment of loaded is
// consistent: a property belongs only to profiles of its class, and a class
// only to profiles of its supertypes. An empty assignment stands for every
// profile and never restricts.
func validateProfiles(loaded *model.Model, file string, strict bool, sink *mgerrors.Sink) {
	severity := mgerrors.SeverityWarning
	if strict {
		severity = mgerrors.SeverityError
	}
	report := func(subject, format string, args ...any) {
		sink.Addf(mgerrors.ErrProfileInconsistency, severity, subject, "%s: "+format, append([]any{file}, args...)...)
	}

	for _, c := range loaded.Classes() {
		classProfiles := sets.New(c.Profiles.Names()...)
		for _, super := range loaded.Supertypes(c) {
			if len(super.Profiles) == 0 {
				continue
			}
			if extra := classProfiles.Difference(sets.New(super.Profiles.Names()...)); extra.Len() > 0 {
				report(c.Name, "profiles %v are not assigned to supertype %s", sets.List(extra), super.Name)
			}
		}
		if len(c.Profiles) == 0 {
			continue
		}
		for _, p := range loaded.PropertiesOf(c) {
			if extra := sets.New(p.Profiles.Names()...).Difference(classProfiles); extra.Len() > 0 {
				report(c.Name+"::"+p.Name, "profiles %v are not assigned to class %s", sets.List(extra), c.Name)
			}
		}
	}
}
