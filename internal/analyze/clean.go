package analyze

import (
	"regexp"
	"strings"
	"unicode"
)

// Cleaning is expressed as ordered rule data rather than inline code so the
// rule set can be tested and extended without touching control flow.

type rewriteRule struct {
	pattern *regexp.Regexp
	replace string
}

// disfluencyRules strip filler words and informal discourse markers.
var disfluencyRules = []rewriteRule{
	{regexp.MustCompile(`(?i)\bum\b`), ""},
	{regexp.MustCompile(`(?i)\buh\b`), ""},
	{regexp.MustCompile(`(?i)\byou know\b`), ""},
	{regexp.MustCompile(`(?i)\bi mean\b`), ""},
	{regexp.MustCompile(`(?i)\bkind of\b`), ""},
	{regexp.MustCompile(`(?i)\bsort of\b`), ""},
	{regexp.MustCompile(`(?i)\bbasically\b`), ""},
	{regexp.MustCompile(`(?i)\bactually\b`), ""},
	{regexp.MustCompile(`(?i)\bliterally\b`), ""},
	{regexp.MustCompile(`(?i)\breally\b`), ""},
	{regexp.MustCompile(`(?i)\bvery\b`), ""},
	{regexp.MustCompile(`(?i)\bquite\b`), ""},
	{regexp.MustCompile(`(?i)\bjust\b`), ""},
	{regexp.MustCompile(`(?i)\btotally\b`), ""},
}

// introRules strip generic sentence openers before scoring.
var introRules = []rewriteRule{
	{regexp.MustCompile(`(?i)^(so|well|okay|ok|now|anyway|alright)[,\s]+`), ""},
	{regexp.MustCompile(`(?i)^(you see|like|i mean|basically|actually)[,\s]+`), ""},
	{regexp.MustCompile(`(?i)^(what i'?m (saying|trying to say) is)[,\s]+`), ""},
	{regexp.MustCompile(`(?i)^(the (point|thing) is)[,\s]+`), ""},
	{regexp.MustCompile(`(?i)^(in other words)[,\s]+`), ""},
	{regexp.MustCompile(`(?i)^(as (you can see|we know))[,\s]+`), ""},
}

// contractionRules normalize the contractions speech-to-text produces most.
var contractionRules = []rewriteRule{
	{regexp.MustCompile(`(?i)\bcan'?t\b`), "cannot"},
	{regexp.MustCompile(`(?i)\bwon'?t\b`), "will not"},
	{regexp.MustCompile(`(?i)\bdon'?t\b`), "do not"},
	{regexp.MustCompile(`(?i)\bdoesn'?t\b`), "does not"},
	{regexp.MustCompile(`(?i)\bdidn'?t\b`), "did not"},
	{regexp.MustCompile(`(?i)\bisn'?t\b`), "is not"},
	{regexp.MustCompile(`(?i)\baren'?t\b`), "are not"},
	{regexp.MustCompile(`(?i)\bwasn'?t\b`), "was not"},
	{regexp.MustCompile(`(?i)\bit'?s\b`), "it is"},
	{regexp.MustCompile(`(?i)\bthat'?s\b`), "that is"},
	{regexp.MustCompile(`(?i)\bthere'?s\b`), "there is"},
	{regexp.MustCompile(`(?i)\bwe'?re\b`), "we are"},
	{regexp.MustCompile(`(?i)\bthey'?re\b`), "they are"},
	{regexp.MustCompile(`(?i)\byou'?re\b`), "you are"},
	{regexp.MustCompile(`(?i)\bi'?ve\b`), "i have"},
	{regexp.MustCompile(`(?i)\bwe'?ve\b`), "we have"},
	{regexp.MustCompile(`(?i)\bcouldn'?t\b`), "could not"},
	{regexp.MustCompile(`(?i)\bshouldn'?t\b`), "should not"},
	{regexp.MustCompile(`(?i)\bwouldn'?t\b`), "would not"},
}

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	spaceBeforeP  = regexp.MustCompile(`\s+([.,!?;:])`)
	repeatedP     = regexp.MustCompile(`([.!?])[.!?]+`)
	clauseSplitRe = regexp.MustCompile(`[,;]`)

	// maxPointWords caps a single cleaned sentence; anything longer is cut
	// back to its longest independent clause, then hard-truncated.
	maxPointWords = 12
)

// CleanSentence applies the full cleaning sub-contract: collapse whitespace,
// strip disfluencies and generic intros, normalize contractions, enforce
// terminal punctuation, and truncate over-long sentences by keeping the
// longest independent clause.
func CleanSentence(text string) string {
	text = spaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return ""
	}

	for _, rule := range introRules {
		text = strings.TrimSpace(rule.pattern.ReplaceAllString(text, ""))
	}
	for _, rule := range disfluencyRules {
		text = rule.pattern.ReplaceAllString(text, "")
	}
	for _, rule := range contractionRules {
		text = rule.pattern.ReplaceAllString(text, rule.replace)
	}

	text = spaceRun.ReplaceAllString(text, " ")
	text = spaceBeforeP.ReplaceAllString(text, "$1")
	text = repeatedP.ReplaceAllString(text, "$1")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if len(strings.Fields(text)) > maxPointWords {
		text = longestClause(text)
	}
	if words := strings.Fields(text); len(words) > maxPointWords {
		text = strings.Join(words[:maxPointWords], " ")
	}

	text = strings.Trim(text, " ,;")
	if text == "" {
		return ""
	}

	// Capitalize and ensure terminal punctuation.
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	text = string(runes)
	if !strings.ContainsAny(text[len(text)-1:], ".!?") {
		text += "."
	}
	return text
}

// longestClause splits on commas/semicolons and keeps the longest clause,
// provided it is substantial enough to stand alone.
func longestClause(text string) string {
	clauses := clauseSplitRe.Split(text, -1)
	best := text
	bestLen := 0
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		n := len(strings.Fields(clause))
		if n > bestLen {
			best = clause
			bestLen = n
		}
	}
	if bestLen >= 5 {
		return best
	}
	return text
}
