package classify

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// normalize folds compatibility characters (non-breaking spaces, full-width
// digits) and lower-cases s so the pattern scans see plain ASCII wording.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// joinFields normalizes and space-joins the non-empty values.
func joinFields(values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, normalize(v))
		}
	}
	return strings.Join(parts, " ")
}

const contextWindow = 60

var (
	repairVerbRe   = regexp.MustCompile(`repair|replac|reconstruct|refinish|restor|rebuild`)
	constructionRe = regexp.MustCompile(`\b(?:new|construct(?:ion|ed|ing)?|build(?:ing)?)\b`)
)

// RepairContext reports whether the text around the first whole-word
// occurrence of keyword (or its plural) describes repair work: a
// 60-character window centered on the match contains a repair verb and no
// construction verb.
func RepairContext(text, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	return repairAround(normalize(text), keywordRe(kw))
}

var keywordRes sync.Map // keyword -> *regexp.Regexp

func keywordRe(kw string) *regexp.Regexp {
	if re, ok := keywordRes.Load(kw); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := keywordRes.LoadOrStore(kw, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`(?:e?s)?\b`))
	return re.(*regexp.Regexp)
}

// repairAround applies the repair window to the first match of re in the
// normalized text.
func repairAround(lower string, re *regexp.Regexp) bool {
	loc := re.FindStringIndex(lower)
	if loc == nil {
		return false
	}

	center := (loc[0] + loc[1]) / 2
	start := max(0, center-contextWindow/2)
	end := min(len(lower), center+contextWindow/2)
	window := lower[start:end]

	return repairVerbRe.MatchString(window) && !constructionRe.MatchString(window)
}

var (
	digitStoreyRe    = regexp.MustCompile(`\b(\d{1,2})\s*-?\s*(?:storey|story|stories|storeys)\b`)
	cardinalStoreyRe = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine|ten)[\s-]*(?:storey|story|stories|storeys)\b`)
	singleStoreyRe   = regexp.MustCompile(`\bsingle[\s-]*(?:storey|story)\b`)
)

var cardinals = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// ExtractStoreys reads a storey count from free text. Digit forms
// ("2 storey") take priority over cardinal words ("two storey"), then
// "single storey". It returns 0 when no count is present.
func ExtractStoreys(text string) int {
	lower := normalize(text)
	if m := digitStoreyRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := cardinalStoreyRe.FindStringSubmatch(lower); m != nil {
		return cardinals[m[1]]
	}
	if singleStoreyRe.MatchString(lower) {
		return 1
	}
	return 0
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
