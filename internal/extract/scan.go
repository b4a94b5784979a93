package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// NoMatch is returned by the bracket scanners when the payload is truncated
// or otherwise unterminated.
const NoMatch = -1

// MatchBracket returns the index in s of the ']' closing an array whose
// contents begin at start (i.e. start points just past the opening '[').
// Nesting is tracked to arbitrary depth. Returns NoMatch when the array is
// unterminated. Brackets inside string literals are not special-cased;
// marketplace payloads do not carry them in practice.
func MatchBracket(s string, start int) int {
	return matchDelims(s, start, '[', ']')
}

func matchDelims(s string, start int, open, close byte) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return NoMatch
}

// Section isolates the object value of the named key, e.g. the embedded
// "item_search" object inside a listing payload, so that fields shadowed at
// two nesting levels can be extracted from the intended one.
func Section(fragment, key string) (string, bool) {
	marker := `"` + key + `":{`
	idx := strings.Index(fragment, marker)
	if idx < 0 {
		return "", false
	}
	start := idx + len(marker)
	end := matchDelims(fragment, start, '{', '}')
	if end == NoMatch {
		return "", false
	}
	return fragment[start:end], true
}

var idRun = regexp.MustCompile(`\d{6,}`)

// IDList pulls every marketplace identifier out of a fragment. Removal
// events batch plain identifier arrays, but a payload carrying objects
// would expose other numbers too; live identifiers are 6+ digits and the
// length guard keeps incidental small integers out.
func IDList(fragment string) []int64 {
	var ids []int64
	for _, tok := range idRun.FindAllString(fragment, -1) {
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, v)
	}
	return ids
}
