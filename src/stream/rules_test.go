package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashtagTerms(t *testing.T) {
	assert.Equal(t, []string{"#PMQs", "#golang"}, HashtagTerms([]string{"#PMQs", " golang ", "", "#"}))
}

func TestFromTerms(t *testing.T) {
	assert.Equal(t, []string{"from:27646232", "from:23009949"}, FromTerms([]string{"27646232", "", "23009949"}))
}

func TestBuildRulesSingle(t *testing.T) {
	rules, err := BuildRules([]string{"from:1", "from:2"}, MaxRuleLength)
	require.NoError(t, err)
	assert.Equal(t, []string{"from:1 OR from:2"}, rules)
}

func TestBuildRulesChunksAtLimit(t *testing.T) {
	terms := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		terms = append(terms, "from:1234567890")
	}
	rules, err := BuildRules(terms, MaxRuleLength)
	require.NoError(t, err)
	require.Greater(t, len(rules), 1)

	total := 0
	for _, r := range rules {
		assert.LessOrEqual(t, len(r), MaxRuleLength)
		total += len(strings.Split(r, " OR "))
	}
	assert.Equal(t, 100, total, "every term lands in exactly one rule")
}

func TestBuildRulesErrors(t *testing.T) {
	_, err := BuildRules(nil, MaxRuleLength)
	assert.Error(t, err)

	_, err = BuildRules([]string{strings.Repeat("x", 20)}, 10)
	assert.Error(t, err)
}
