package flow

import (
	"strings"
	"unicode"
)

// Slug lowercases label and collapses every run of whitespace into a single hyphen.
// Nothing else is touched: punctuation survives and an empty label yields "".
// Links are built by the web front end too, so lowercasing and the whitespace set
// follow JavaScript's toLowerCase and \s: final sigma becomes ς, U+0085 is not a space.
func Slug(label string) string {
	runes := []rune(label)
	var b strings.Builder
	b.Grow(len(label))
	inSpace := false
	for i, r := range runes {
		if isSlugSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if r == 'Σ' && finalSigma(runes, i) {
			b.WriteRune('ς')
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isSlugSpace(r rune) bool {
	return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
}

// finalSigma: перед Σ есть буква с регистром, после неё такой буквы нет
// (case-ignorable символы пропускаются в обе стороны).
func finalSigma(runes []rune, i int) bool {
	before := false
	for j := i - 1; j >= 0; j-- {
		if caseIgnorable(runes[j]) {
			continue
		}
		before = cased(runes[j])
		break
	}
	if !before {
		return false
	}
	for j := i + 1; j < len(runes); j++ {
		if caseIgnorable(runes[j]) {
			continue
		}
		return !cased(runes[j])
	}
	return true
}

func cased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

func caseIgnorable(r rune) bool {
	switch r {
	case '\'', '.', ':', '·', '’':
		return true
	}
	return unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf, unicode.Lm, unicode.Sk)
}

func DiseasePath(label string) string  { return "/diseases/" + Slug(label) }
func MedicinePath(label string) string { return "/medicines/" + Slug(label) }
