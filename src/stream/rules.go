package stream

import (
	"fmt"
	"strings"
)

// MaxRuleLength is the filtered stream's limit on a single rule value
const MaxRuleLength = 512

const ruleSeparator = " OR "

// HashtagTerms prefixes each tag with '#' unless it already has one; blanks are dropped
func HashtagTerms(tags []string) []string {
	terms := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || tag == "#" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		terms = append(terms, tag)
	}
	return terms
}

// FromTerms turns user IDs into from: operators; blanks are dropped
func FromTerms(userIDs []string) []string {
	terms := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		terms = append(terms, "from:"+id)
	}
	return terms
}

// BuildRules ORs terms together, starting a new rule whenever the next term
// would push the current one past maxLen.
func BuildRules(terms []string, maxLen int) ([]string, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("no stream terms")
	}
	if maxLen <= 0 {
		maxLen = MaxRuleLength
	}

	var rules []string
	var current strings.Builder
	for _, term := range terms {
		if len(term) > maxLen {
			return nil, fmt.Errorf("term %q is longer than the %d character rule limit", term, maxLen)
		}
		if current.Len() > 0 && current.Len()+len(ruleSeparator)+len(term) > maxLen {
			rules = append(rules, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(ruleSeparator)
		}
		current.WriteString(term)
	}
	rules = append(rules, current.String())
	return rules, nil
}
