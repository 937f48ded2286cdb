package analyzer

import (
	"regexp"
	"strings"
)

// cleanRe matches @mentions, any character outside [0-9A-Za-z \t], and URLs.
// Alternation order matters: a URL starts with word characters, so the mention
// and punctuation branches never consume its scheme.
var cleanRe = regexp.MustCompile(`(@[A-Za-z0-9]+)|([^0-9A-Za-z \t])|(\w+://\S+)`)

// CleanTweet strips mentions, punctuation and links from text and collapses
// the remaining whitespace to single spaces.
func CleanTweet(text string) string {
	return strings.Join(strings.Fields(cleanRe.ReplaceAllString(text, " ")), " ")
}

// Tokenize returns the lower-cased words of the cleaned text
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(CleanTweet(text)))
}
