package classify

// Default tier tables for child-welfare relevance. High patterns name the
// dependency/termination core; medium covers adjacent family-law matter;
// low is weak context only. Exclusions knock out the estate/probate cases
// that otherwise match on words like "minor" and "guardian".

// DefaultExclusions match decedents' estates, trusts, and probate matter.
func DefaultExclusions() []Pattern {
	return []Pattern{
		MustPattern(`\bestate\s+of\b`, "estate of"),
		MustPattern(`\btrust\b`, "trust"),
		MustPattern(`\bbankruptcy\b`, "bankruptcy"),
		MustPattern(`\bprobate\b`, "probate"),
		MustPattern(`\bdecedent\b`, "decedent"),
		MustPattern(`\binheritance\b`, "inheritance"),
		MustPattern(`\bsuccession\b`, "succession"),
		MustPattern(`\btestamentary\b`, "testamentary"),
	}
}

// DefaultExclusionReason matches the reason string recorded when an
// exclusion fires.
const DefaultExclusionReason = "Excluded: estate/trust/probate case"

// DefaultHigh matches direct child-welfare subject matter.
func DefaultHigh() []Pattern {
	return []Pattern{
		MustPattern(`\btermination\s+of\s+parental\s+rights\b`, "termination of parental rights"),
		MustPattern(`\bparental\s+rights\b`, "parental rights"),
		MustPattern(`\bdependency\b`, "dependency"),
		MustPattern(`\bdependent\s+child\b`, "dependent child"),
		MustPattern(`\bchild\s+welfare\b`, "child welfare"),
		MustPattern(`\bchild\s+abuse\b`, "child abuse"),
		MustPattern(`\bchild\s+neglect\b`, "child neglect"),
		MustPattern(`\babuse\s+(?:and|or)\s+neglect\b`, "abuse and neglect"),
		MustPattern(`\bfoster\s+care\b`, "foster care"),
		MustPattern(`\bjuvenile\s+dependency\b`, "juvenile dependency"),
		MustPattern(`\bchild\s+protecti(?:on|ve)\b`, "child protection"),
		MustPattern(`\bin\s+re\s+the\s+welfare\b`, "in re welfare"),
		MustPattern(`\bshelter\s+care\b`, "shelter care"),
		MustPattern(`\bminor\s+in\s+need\s+of\s+(?:care|supervision)\b`, "minor in need of care"),
	}
}

// DefaultMedium matches adjacent family-law matter that often touches
// child welfare without being it.
func DefaultMedium() []Pattern {
	return []Pattern{
		MustPattern(`\bcustody\b`, "custody"),
		MustPattern(`\bguardianship\b`, "guardianship"),
		MustPattern(`\badoption\b`, "adoption"),
		MustPattern(`\bvisitation\b`, "visitation"),
		MustPattern(`\bpaternity\b`, "paternity"),
		MustPattern(`\bminor\s+child(?:ren)?\b`, "minor child"),
		MustPattern(`\bbest\s+interests?\s+of\s+the\s+child\b`, "best interests of the child"),
		// The initials stay case-sensitive inside the otherwise
		// case-insensitive pattern; "in re a.b." is not a case styling.
		MustPattern(`\bin\s+re\s+(?-i:[A-Z]\.\s*[A-Z]?\.?)`, "in re initials"),
	}
}

// DefaultLow matches weak context terms.
func DefaultLow() []Pattern {
	return []Pattern{
		MustPattern(`\bjuvenile\b`, "juvenile"),
		MustPattern(`\bfamily\s+court\b`, "family court"),
		MustPattern(`\bdomestic\s+relations\b`, "domestic relations"),
		MustPattern(`\bchild\b`, "child"),
	}
}

// DefaultTiers assembles the default engine tables.
func DefaultTiers() Tiers {
	return Tiers{
		Exclusions:      DefaultExclusions(),
		ExclusionReason: DefaultExclusionReason,
		High:            DefaultHigh(),
		Medium:          DefaultMedium(),
		Low:             DefaultLow(),
	}
}
