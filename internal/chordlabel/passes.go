package chordlabel

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
)

// Pass is a single rewrite step of the normalization pipeline
type Pass struct {
	Name  string
	Apply func(string) string
}

const (
	// maxParenPasses bounds parenthesis flattening on malformed input
	maxParenPasses = 5
	matchTimeout   = 100 * time.Millisecond
)

func compile(pattern string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, opts)
	re.MatchTimeout = matchTimeout
	return re
}

type rule struct {
	re   *regexp2.Regexp
	repl string
}

func newRule(pattern, repl string) rule {
	return rule{re: compile(pattern, regexp2.None), repl: repl}
}

func (r rule) apply(s string) string {
	out, err := r.re.Replace(s, r.repl, -1, -1)
	if err != nil {
		return s
	}
	return out
}

func applyRules(rules []rule, s string) string {
	for _, r := range rules {
		s = r.apply(s)
	}
	return s
}

var wordQualityRules = []rule{
	newRule(`(?i)\b([A-Ga-g][#\-]*)\s+minor\b`, "${1}m"),
	newRule(`(?i)\b([A-Ga-g][#\-]*)\s+major\b`, "${1}maj"),
	newRule(`(?i)\b([A-Ga-g][#\-]*)\s+dim\b`, "${1}dim"),
	newRule(`(?i)\b([A-Ga-g][#\-]*)\s+aug\b`, "${1}aug"),
}

var flatRules = []rule{
	newRule(`^([A-G])bb`, "${1}--"),
	newRule(`^([A-G])b(?![#b])`, "${1}-"),
	newRule(`/([A-G])bb`, "/${1}--"),
	newRule(`/([A-G])b(?![#b])`, "/${1}-"),
}

var susRules = []rule{
	newRule(`(?i)([A-G][#\-]?(?:\d+)?)(sus)(?![24\d])`, "${1}sus4"),
	newRule(`(?i)(sus)([24])`, "sus${2}"),
	newRule(`(?i)(?<!\d)(sus)(?![24])`, "sus4"),
	newRule(`(?i)sus([24])\1$`, "sus${1}"),
}

var altRule = newRule(`(?i)([A-Ga-g][#\-]?)(?:7)?alt`, "${1}7#9b13")

// Order matters: longer and more specific words are rewritten before their prefixes.
var qualityRules = []rule{
	newRule(`(?i)ø7?\b`, "m7b5"),
	newRule(`(?i)half[- ]?dim(?:inished)?\b`, "m7b5"),
	newRule(`dimished`, "dim"),
	newRule(`(?i)diminished(?!7)`, "dim"),
	newRule(`(?i)diminished7`, "dim7"),
	newRule(`domant7`, "7"),
	newRule(`(?i)dominant7?\b`, "7"),
	newRule(`(?i)major7`, "maj7"),
	newRule(`(?i)major9`, "maj9"),
	newRule(`(?i)major13`, "maj13"),
	newRule(`(?i)minor7`, "m7"),
	newRule(`(?i)minor9`, "m9"),
	newRule(`(?i)minor11`, "m11"),
	newRule(`(?i)minor13`, "m13"),
	newRule(`(?i)minor`, "m"),
	newRule(`(?i)min(?!or\b|\.|m7b5)`, "m"),
	newRule(`(?i)aug(?!mented)`, "aug"),
	newRule(`(?i)augmented`, "aug"),
	newRule(`(?i)major`, "maj"),
}

// bareNumber finds a two-digit number that is not yet an add tension, an ordinal or
// part of an alteration such as "b13"
var bareNumber = compile(
	`(?<![0-9#\-])([A-Ga-g][#\-]?(?:m(?:aj)?\d*|maj\d*|dim\d*|aug\d*|ø\d*|sus\d*|add\d*|7th|6th|5th|m7b5)?)([1-9]\d)(?!add|\d|th|nd|rd|st)`,
	regexp2.IgnoreCase,
)

var addifySuffixes = []string{"sus", "add", "maj", "m", "dim", "aug", "b5", "ø", "7", "9", "11", "13"}

var maj9Rule = newRule(`(?i)(maj)9(#\d+)`, "${1}7${2}add9")

var addCollapseRules = []rule{
	newRule(`(?i)addadd`, "add"),
	// keeps only the last occurrence of a repeated add token
	newRule(`(?i)(add\d+)(?=.*\1)`, ""),
}

var cleanupRules = []rule{
	newRule(`[,\s]`, ""),
	newRule(`[^a-zA-Z0-9#\-/ø]+$`, ""),
}

var (
	parenGroup = compile(`^(.*?)\(([^)]+)\)(.*)$`, regexp2.None)
	addNumber  = compile(`^add(\d+)`, regexp2.None)
)

// DefaultPasses returns the rewrite pipeline in the order it must run
func DefaultPasses() []Pass {
	return []Pass{
		{Name: "word_quality", Apply: normalizeWordQualities},
		{Name: "flats", Apply: func(s string) string { return applyRules(flatRules, s) }},
		{Name: "sus", Apply: func(s string) string { return applyRules(susRules, s) }},
		{Name: "alt", Apply: expandAlt},
		{Name: "parentheses", Apply: flattenParentheses},
		{Name: "quality", Apply: func(s string) string { return applyRules(qualityRules, s) }},
		{Name: "bare_numbers", Apply: promoteBareNumbers},
		{Name: "maj9", Apply: maj9Rule.apply},
		{Name: "add_collapse", Apply: func(s string) string { return applyRules(addCollapseRules, s) }},
		{Name: "cleanup", Apply: func(s string) string { return applyRules(cleanupRules, s) }},
	}
}

func normalizeWordQualities(s string) string {
	s = applyRules(wordQualityRules, s)
	if s != "" && s[0] >= 'a' && s[0] <= 'g' {
		s = strings.ToUpper(s[:1]) + s[1:]
	}
	return s
}

// expandAlt rewrites "7alt"/"alt" to 7#9b13. Only the literal "badd13" and "#add13"
// leftovers are folded back; other redundant add tokens are left in place.
func expandAlt(s string) string {
	s = altRule.apply(s)
	s = strings.ReplaceAll(s, "badd13", "b13")
	return strings.ReplaceAll(s, "#add13", "#13")
}

func flattenParentheses(s string) string {
	if strings.Contains(s, "(") && !strings.Contains(s, ")") {
		base, tail, _ := strings.Cut(s, "(")
		if strings.TrimSpace(tail) != "" {
			s = base + expandTensionList(tail)
		} else {
			s = base
		}
	}

	prev := ""
	for i := 0; i < maxParenPasses; i++ {
		if !strings.Contains(s, "(") || !strings.Contains(s, ")") || s == prev {
			break
		}
		prev = s
		m, err := parenGroup.FindStringMatch(s)
		if err != nil || m == nil {
			break
		}
		s = m.GroupByNumber(1).String() + expandTensionList(m.GroupByNumber(2).String()) + m.GroupByNumber(3).String()
	}
	return s
}

func expandTensionList(list string) string {
	var b strings.Builder
	for _, seg := range strings.Split(list, ",") {
		b.WriteString(expandTension(seg))
	}
	return b.String()
}

// expandTension turns one token of a parenthesized tension list into a tension token:
// "9" -> "add9", "#11" and "omit5" unchanged, anything unknown passes through
func expandTension(seg string) string {
	seg = strings.ToLower(strings.TrimSpace(seg))
	switch {
	case seg == "":
		return ""
	case strings.HasPrefix(seg, "#") || strings.HasPrefix(seg, "b"):
		return seg
	case strings.HasPrefix(seg, "add"):
		m, err := addNumber.FindStringMatch(seg)
		if err != nil || m == nil {
			return ""
		}
		return "add" + m.GroupByNumber(1).String()
	case isDigits(seg):
		return "add" + seg
	case seg == "omit3" || seg == "omit5" || seg == "omitroot":
		return seg
	}
	logger.Debug("Unknown tension token, passing through", logger.Fields{"token": seg})
	return seg
}

func promoteBareNumbers(s string) string {
	out, err := bareNumber.ReplaceFunc(s, addify, -1, -1)
	if err != nil {
		logger.Warn("Bare number promotion failed", logger.Fields{"label": s, "error": err.Error()})
		return s
	}
	return out
}

func addify(m regexp2.Match) string {
	prefix := m.GroupByNumber(1).String()
	number := m.GroupByNumber(2).String()

	lower := strings.ToLower(prefix)
	for _, suffix := range addifySuffixes {
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		if prefix == "" || !isDigit(prefix[len(prefix)-1]) {
			return prefix + "add" + number
		}
		return m.String()
	}
	return prefix + "add" + number
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
