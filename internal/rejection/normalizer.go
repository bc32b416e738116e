package rejection

import (
	"regexp"
	"strings"
)

// ReasonCategory is the closed taxonomy of rejection reasons the copilot
// knows how to argue against. The zero value means the raw reason text
// matched no rule; callers must branch on it explicitly.
type ReasonCategory string

const (
	Unclassified            ReasonCategory = ""
	NotClinicallyJustified  ReasonCategory = "not_clinically_justified"
	TherapeuticDuplication  ReasonCategory = "therapeutic_duplication"
	NotCovered              ReasonCategory = "not_covered"
	InconsistentWithAge     ReasonCategory = "inconsistent_with_age"
	SevereInteractions      ReasonCategory = "severe_interactions"
	DrugCodeNotFound        ReasonCategory = "drug_code_not_found"
)

// String returns the wire label for the category.
func (c ReasonCategory) String() string {
	if c == Unclassified {
		return "unclassified"
	}
	return string(c)
}

type reasonRule struct {
	pattern  *regexp.Regexp
	category ReasonCategory
}

// reasonRules is an ordered slice, not a map: patterns overlap (the bare
// word "age" sits inside broader clinical-justification phrasings) and
// first-match-wins is the tie-break insurers' rejection text needs.
var reasonRules = []reasonRule{
	{regexp.MustCompile(`not indicated`), NotClinicallyJustified},
	{regexp.MustCompile(`not justified`), NotClinicallyJustified},
	{regexp.MustCompile(`no necessity`), NotClinicallyJustified},
	{regexp.MustCompile(`diagnosis inconsistent`), NotClinicallyJustified},
	{regexp.MustCompile(`therapeutic duplication`), TherapeuticDuplication},
	{regexp.MustCompile(`\bage\b`), InconsistentWithAge},
	{regexp.MustCompile(`interactions`), SevereInteractions},
	{regexp.MustCompile(`contradiction`), SevereInteractions},
	{regexp.MustCompile(`code not found`), DrugCodeNotFound},
	{regexp.MustCompile(`wrong code`), DrugCodeNotFound},
	{regexp.MustCompile(`not covered`), NotCovered},
}

// NormalizeReasonText classifies a raw rejection-reason string into the
// fixed taxonomy. Classification is a pure function of the lower-cased
// input; the first matching rule wins. ok is false when no rule matches,
// and the caller must treat the reason as unclassifiable rather than
// defaulting to any category.
func NormalizeReasonText(raw string) (ReasonCategory, bool) {
	lowered := strings.ToLower(raw)
	for _, rule := range reasonRules {
		if rule.pattern.MatchString(lowered) {
			return rule.category, true
		}
	}
	return Unclassified, false
}

var labelStripper = strings.NewReplacer(" ", "", "-", "", "–", "")

// NormalizeLabelForMatching collapses a short tier label ("VIP +", "vip+",
// "VIP - Gold") to a canonical form for equality comparison. It strips
// whitespace, ASCII dashes and en-dashes, and lower-cases. It is a
// different operation from NormalizeReasonText and must stay separate.
func NormalizeLabelForMatching(label string) string {
	return strings.ToLower(labelStripper.Replace(label))
}
