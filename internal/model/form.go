package model

// DerivedForm is one candidate surface form of a base verb together with
// the rules that produced it. Values are immutable once generated.
//
// Two forms with the same Surface but different tags are distinct: results
// are attributed to the rule that produced the spelling, not only to the
// spelling itself.
type DerivedForm struct {
	// Root is the base (simplex) verb the form was derived from.
	Root string

	// Stem is the surface the prefix was attached to: the root itself, or
	// stem+ending in stem/ending mode.
	Stem string

	// Ending is the inflectional ending used in stem/ending mode, or "".
	Ending string

	// Prefix is the prefix rule ID; absent for the null rule.
	Prefix Marker

	// PrefixVariant is the concrete prefix spelling ("" for the null rule).
	PrefixVariant string

	// Suffix is the optional suffix marker, e.g. "-yva-".
	Suffix Marker

	// Reflexive marks forms carrying the reflexive particle.
	Reflexive bool

	// Secondary marks secondary imperfectives.
	Secondary bool

	// Surface is the fully concatenated spelling that is queried.
	Surface string
}

// FormKey is the identity of a DerivedForm within one base verb.
type FormKey struct {
	Surface   string
	Prefix    string
	Suffix    string
	Reflexive bool
	Secondary bool
}

// Key returns the identity of f.
func (f DerivedForm) Key() FormKey {
	return FormKey{
		Surface:   f.Surface,
		Prefix:    f.Prefix.String(),
		Suffix:    f.Suffix.String(),
		Reflexive: f.Reflexive,
		Secondary: f.Secondary,
	}
}

// IsPrefixed reports whether a non-null prefix rule produced f.
func (f DerivedForm) IsPrefixed() bool {
	return f.Prefix.Valid
}
