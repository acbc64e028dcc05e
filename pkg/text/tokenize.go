package text

import (
	"regexp"
	"strings"
)

const minTokenLen = 2

var (
	urlRegEx       = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionRegEx   = regexp.MustCompile(`@[A-Za-z0-9_]+`)
	nonLetterRegEx = regexp.MustCompile(`[^a-z' ]+`)
	spaceRegEx     = regexp.MustCompile(`\s+`)
)

// Normalize lowercases the text and strips URLs, @mentions, and
// everything that is not a letter, collapsing the result into
// single-space separated words.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = urlRegEx.ReplaceAllString(s, " ")
	s = mentionRegEx.ReplaceAllString(s, " ")
	s = nonLetterRegEx.ReplaceAllString(s, " ")
	s = spaceRegEx.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize normalizes the text and splits it into terms, dropping
// stopwords and terms shorter than 2 characters.
func Tokenize(s string) []string {
	norm := Normalize(s)
	if norm == "" {
		return []string{}
	}

	fields := strings.Fields(norm)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if len(f) < minTokenLen {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
