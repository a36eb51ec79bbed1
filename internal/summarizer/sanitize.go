package summarizer

import (
	"regexp"
	"strings"
)

var (
	numericToken  = regexp.MustCompile(`\d+(?:[.,]\d+)*%?`)
	compoundToken = regexp.MustCompile(`[A-Za-z]+(?:-[A-Za-z0-9]+)+`)
)

// SanitizeBullets removes numeric values and hyphenated compound terms that
// do not appear verbatim in the source abstract, guarding against
// fabricated specifics. Tokens present in the abstract are left untouched.
func SanitizeBullets(bullets []string, abstract string) []string {
	out := make([]string, len(bullets))
	for i, b := range bullets {
		b = stripFabricated(b, abstract, numericToken)
		b = stripFabricated(b, abstract, compoundToken)
		out[i] = strings.Join(strings.Fields(b), " ")
	}
	return out
}

func stripFabricated(bullet, abstract string, re *regexp.Regexp) string {
	return re.ReplaceAllStringFunc(bullet, func(tok string) string {
		if strings.Contains(abstract, tok) || strings.Contains(abstract, strings.TrimSuffix(tok, "%")) {
			return tok
		}
		return ""
	})
}
