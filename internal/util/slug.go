// Package util provides small helpers shared across packages.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Anything that is not a letter, digit, whitespace or dash.
	disallowedRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	dashRunRe    = regexp.MustCompile(`-{2,}`)
)

// Slugify folds s to a lowercase ASCII slug: accents are decomposed and
// dropped, punctuation removed and whitespace runs turned into dashes.
//
//	"Márai Sándor"   -> "marai-sandor"
//	"Jules S. Damji" -> "jules-s-damji"
//	"O'Reilly"        -> "oreilly"
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = dashRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BookSlug derives the stable book key from author and title.
func BookSlug(author, title string) string {
	return Slugify(author + " " + title)
}
