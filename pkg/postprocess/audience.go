package postprocess

import "strings"

// Audience is the category an audience description falls into. Each
// category owns one substitution table.
type Audience int

const (
	// AudienceOther leaves text untouched.
	AudienceOther Audience = iota
	AudienceMillennials
	AudienceProfessionals
)

func (a Audience) String() string {
	switch a {
	case AudienceMillennials:
		return "millennials"
	case AudienceProfessionals:
		return "professionals"
	default:
		return "other"
	}
}

// Substitution replaces every literal, case-sensitive occurrence of Old
// with New.
type Substitution struct {
	Old string
	New string
}

// categories is checked in order; the first keyword found wins, so an
// audience naming both groups is treated as millennials.
var categories = []struct {
	keyword  string
	audience Audience
}{
	{keyword: "millennials", audience: AudienceMillennials},
	{keyword: "professionals", audience: AudienceProfessionals},
}

// Tables are applied entry by entry, each on the output of the previous one.
var substitutions = map[Audience][]Substitution{
	AudienceMillennials: {
		{Old: "technology", New: "tech"},
		{Old: "people", New: "peeps"},
	},
	AudienceProfessionals: {
		{Old: "tech", New: "technology"},
		{Old: "peeps", New: "professionals"},
	},
}

// Classify maps a free-form audience description to a category using a
// case-insensitive substring search.
func Classify(audience string) Audience {
	lower := strings.ToLower(audience)
	for _, c := range categories {
		if strings.Contains(lower, c.keyword) {
			return c.audience
		}
	}
	return AudienceOther
}

// Substitutions returns the replacement table for a category. AudienceOther
// has none.
func Substitutions(a Audience) []Substitution {
	return substitutions[a]
}

// Personalize applies the substitution table of the audience's category.
// Matching the audience ignores case; the replacements themselves do not.
func Personalize(text, audience string) string {
	for _, sub := range substitutions[Classify(audience)] {
		text = strings.ReplaceAll(text, sub.Old, sub.New)
	}
	return text
}
