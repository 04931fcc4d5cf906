package parser

import (
	"errors"
	"strconv"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
	"github.com/jacoelho/modelgraph/pkg/seqkey"
)

func (b *Builder) boolValue(subject, field, s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		b.report(mgerrors.ErrInvalidValue, mgerrors.SeverityWarning, subject,
			"%s: %q is not a boolean, using %t", field, s, def)
		return def
	}
	return v
}

func (b *Builder) intValue(subject, field, s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		b.report(mgerrors.ErrInvalidValue, mgerrors.SeverityWarning, subject,
			"%s: %q is not an integer", field, s)
		return 0
	}
	return v
}

func (b *Builder) multiplicityValue(subject, s string) model.Multiplicity {
	m, err := model.ParseMultiplicity(s)
	if err != nil {
		b.report(mgerrors.ErrInvalidValue, mgerrors.SeverityWarning, subject,
			"cardinality: %v, using 1", err)
		return model.One
	}
	return m
}

func (b *Builder) sequenceValue(subject, s string) seqkey.Key {
	if s == "" {
		return seqkey.Key{}
	}
	k, err := seqkey.Parse(s)
	if err != nil {
		b.report(mgerrors.ErrInvalidValue, mgerrors.SeverityWarning, subject,
			"sequenceNumber: %v, assigning one", err)
		return seqkey.Key{}
	}
	return k
}

// registrationFailed records why an entity could not be registered.
func (b *Builder) registrationFailed(kind model.Kind, subject string, err error) {
	if errors.Is(err, model.ErrDuplicateID) {
		b.report(mgerrors.ErrDuplicateID, mgerrors.SeverityError, subject, "%s dropped: %v", kind, err)
		return
	}
	b.report(mgerrors.ErrInvalidValue, mgerrors.SeverityError, subject, "%s dropped: %v", kind, err)
}
