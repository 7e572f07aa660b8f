package kinship

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// rule maps a relationship-code shape to a kinship term. Rules are
// evaluated top to bottom; the first match wins for a single code, and
// a rule's position doubles as the label's priority when several
// shortest codes reach the same person. Order therefore matters: the
// later, more general patterns must never shadow the earlier specific
// ones.
type rule struct {
	re    *regexp.Regexp
	label func(code string, target, self *person.Person) string
}

// fixed returns a producer for a constant term.
func fixed(term string) func(string, *person.Person, *person.Person) string {
	return func(string, *person.Person, *person.Person) string { return term }
}

// byLast picks a term by the final token of the code.
func byLast(terms map[byte]string) func(string, *person.Person, *person.Person) string {
	return func(code string, _, _ *person.Person) string {
		return terms[code[len(code)-1]]
	}
}

// lineage prefixes a term with paternal/maternal by the code's first
// token.
func lineage(code string) string {
	if code[0] == tokMother {
		return "maternal "
	}
	return "paternal "
}

// greats returns n repetitions of "great-".
func greats(n int) string {
	return strings.Repeat("great-", n)
}

var rules = []rule{
	{regexp.MustCompile(`^$`), fixed("self")},
	{regexp.MustCompile(`^F$`), fixed("father")},
	{regexp.MustCompile(`^M$`), fixed("mother")},
	{regexp.MustCompile(`^[SDC]$`), byLast(map[byte]string{tokSon: "son", tokDaughter: "daughter", tokChild: "child"})},
	{regexp.MustCompile(`^[HWP]$`), byLast(map[byte]string{tokHusband: "husband", tokWife: "wife", tokSpouse: "spouse"})},

	// Grandparents and beyond: lineage by the first hop, gender by the
	// last.
	{regexp.MustCompile(`^[FM]{2,}$`), func(code string, _, _ *person.Person) string {
		term := "grandfather"
		if code[len(code)-1] == tokMother {
			term = "grandmother"
		}
		return lineage(code) + greats(len(code)-2) + term
	}},

	// Grandchildren and beyond.
	{regexp.MustCompile(`^[SDC]{2,}$`), func(code string, _, _ *person.Person) string {
		term := map[byte]string{tokSon: "grandson", tokDaughter: "granddaughter", tokChild: "grandchild"}[code[len(code)-1]]
		return greats(len(code)-2) + term
	}},

	// Siblings: one hop up, one hop down.
	{regexp.MustCompile(`^[FM][SDC]$`), byLast(map[byte]string{tokSon: "brother", tokDaughter: "sister", tokChild: "sibling"})},

	// Parent's siblings.
	{regexp.MustCompile(`^[FM]{2}[SDC]$`), func(code string, _, _ *person.Person) string {
		term := map[byte]string{tokSon: "uncle", tokDaughter: "aunt", tokChild: "parent's sibling"}[code[len(code)-1]]
		return lineage(code) + term
	}},
	{regexp.MustCompile(`^[FM]{3}[SDC]$`), func(code string, _, _ *person.Person) string {
		term := map[byte]string{tokSon: "great-uncle", tokDaughter: "great-aunt", tokChild: "grandparent's sibling"}[code[len(code)-1]]
		return lineage(code) + term
	}},

	// Sibling's children.
	{regexp.MustCompile(`^[FM][SDC]{2}$`), byLast(map[byte]string{tokSon: "nephew", tokDaughter: "niece", tokChild: "sibling's child"})},

	{regexp.MustCompile(`^[FM]{2}[SDC]{2}$`), fixed("cousin")},

	// Spouse's ascendants.
	{regexp.MustCompile(`^[HWP][FM]$`), byLast(map[byte]string{tokFather: "father-in-law", tokMother: "mother-in-law"})},
	{regexp.MustCompile(`^[HWP][FM]{2}$`), byLast(map[byte]string{tokFather: "grandfather-in-law", tokMother: "grandmother-in-law"})},

	// Descendants' spouses.
	{regexp.MustCompile(`^[SDC][HWP]$`), byLast(map[byte]string{tokHusband: "son-in-law", tokWife: "daughter-in-law", tokSpouse: "child-in-law"})},
	{regexp.MustCompile(`^[SDC]{2}[HWP]$`), byLast(map[byte]string{tokHusband: "grandson-in-law", tokWife: "granddaughter-in-law", tokSpouse: "grandchild-in-law"})},

	// Siblings by marriage, both directions.
	{regexp.MustCompile(`^[FM][SDC][HWP]$`), byLast(map[byte]string{tokHusband: "brother-in-law", tokWife: "sister-in-law", tokSpouse: "sibling-in-law"})},
	{regexp.MustCompile(`^[HWP][FM][SDC]$`), byLast(map[byte]string{tokSon: "brother-in-law", tokDaughter: "sister-in-law", tokChild: "sibling-in-law"})},

	// Step relations: the spouse hop sits between parent and child.
	{regexp.MustCompile(`^[FM][HWP]$`), byLast(map[byte]string{tokHusband: "stepfather", tokWife: "stepmother", tokSpouse: "step-parent"})},
	{regexp.MustCompile(`^[HWP][SDC]$`), byLast(map[byte]string{tokSon: "stepson", tokDaughter: "stepdaughter", tokChild: "stepchild"})},
	{regexp.MustCompile(`^[FM][HWP][SDC]$`), byLast(map[byte]string{tokSon: "stepbrother", tokDaughter: "stepsister", tokChild: "step-sibling"})},
}

// Fallback priorities rank below every explicit rule, with the generic
// "kin" at the very bottom.
var (
	prioDegree   = len(rules)
	prioMarriage = len(rules) + 1
	prioKin      = len(rules) + 2
)

var bloodOnly = regexp.MustCompile(`^[FMSDC]+$`)

// labelFor derives the term and priority for a single relationship
// code. Unmatched blood-only codes fall back to an N-th degree
// relative label (spouse hops are excluded from the degree by
// construction); unmatched codes containing a marriage hop fall back
// to "relative by marriage"; anything else is "kin".
func labelFor(code string, target, self *person.Person) (string, int) {
	for i, r := range rules {
		if r.re.MatchString(code) {
			return r.label(code, target, self), i
		}
	}
	if bloodOnly.MatchString(code) {
		return fmt.Sprintf("%s-degree relative", ordinal(len(code))), prioDegree
	}
	if strings.ContainsAny(code, "HWP") {
		return "relative by marriage", prioMarriage
	}
	return "kin", prioKin
}

// bestLabel resolves ties between equally short codes: every code's
// label is derived and the one ranking highest in the rule order wins,
// favoring the most direct relationship when a person is reachable by
// several paths (for example as a cousin on both sides due to
// intermarriage). Codes arrive sorted, so equal priorities resolve to
// the lexicographically first code's label.
func bestLabel(codes []string, target, self *person.Person) string {
	best, bestPrio := "kin", prioKin+1
	for _, code := range codes {
		if label, prio := labelFor(code, target, self); prio < bestPrio {
			best, bestPrio = label, prio
		}
	}
	return best
}

// ordinal renders 1 → "1st", 2 → "2nd", 3 → "3rd", n → "nth".
func ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}
