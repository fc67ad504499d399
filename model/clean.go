package model

import (
	"strings"
	"unicode"
)

// hangulFillers are invisible filler characters some channels pad titles
// with. They survive unicode.IsPrint, so they get replaced explicitly.
var hangulFillers = map[rune]bool{
	'ㅤ': true,
	'ᅟ': true,
	'ᅠ': true,
}

// CleanTitle strips characters that break terminal rendering and collapses
// runs of whitespace.
func CleanTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case hangulFillers[r]:
			b.WriteRune(' ')
		case unicode.IsPrint(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
