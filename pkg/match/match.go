// Package match resolves spoken device names against topology node names.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/urmzd/yeehome/pkg/topology"
)

// Rule is the matching rule that accepted a candidate.
type Rule int

const (
	RuleNone Rule = iota
	RuleExact
	RulePrefix
	RuleSubstring
)

func (r Rule) String() string {
	switch r {
	case RuleExact:
		return "exact"
	case RulePrefix:
		return "prefix"
	case RuleSubstring:
		return "substring"
	default:
		return "none"
	}
}

var chineseDigits = strings.NewReplacer(
	"零", "0", "一", "1", "二", "2", "三", "3", "四", "4",
	"五", "5", "六", "6", "七", "7", "八", "8", "九", "9",
)

// Full-width ASCII variants, U+FF01 through U+FF5E.
const (
	fullWidthFirst = '\uFF01'
	fullWidthLast  = '\uFF5E'
)

// Normalize folds full-width ASCII variants to ASCII, drops all whitespace and
// maps the basic Chinese numerals to ASCII digits. Katakana and CJK
// punctuation are left as they are. Normalize is idempotent.
func Normalize(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r >= fullWidthFirst && r <= fullWidthLast {
			if n := width.LookupRune(r).Narrow(); n != 0 {
				return n
			}
		}
		return r
	}, name)
	return chineseDigits.Replace(name)
}

// Classify returns the first rule, in priority order, under which device
// matches target. A target that normalizes to the empty string, such as one
// made only of whitespace, matches nothing rather than prefixing every name.
func Classify(device, target string) Rule {
	d, t := Normalize(device), Normalize(target)
	switch {
	case t == "":
		return RuleNone
	case d == t:
		return RuleExact
	case strings.HasPrefix(d, t):
		return RulePrefix
	case strings.Contains(d, t):
		return RuleSubstring
	default:
		return RuleNone
	}
}

// Matches reports whether device matches target under any rule. It is
// always false for a target that is empty after normalization.
func Matches(device, target string) bool {
	return Classify(device, target) != RuleNone
}

// FindByName returns every node whose name matches target, in input order.
// Each candidate is judged on its own; an exact hit does not exclude others.
func FindByName(nodes []topology.NodeInfo, target string) []topology.NodeInfo {
	var out []topology.NodeInfo
	for _, n := range nodes {
		if Matches(n.Name, target) {
			out = append(out, n)
		}
	}
	return out
}
