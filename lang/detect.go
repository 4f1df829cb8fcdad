// Package lang provides a cheap best-guess language classifier for post
// text. It is heuristic by design: good enough to prefill the language
// selector, never authoritative. Authors can always override the guess.
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

type scriptRange struct {
	table *unicode.RangeTable
	tag   string
}

// Script presence is a much stronger signal than any word statistics, so
// non-Latin scripts are checked first.
var scriptTags = []scriptRange{
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Han, "zh"},
	{unicode.Cyrillic, "ru"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Greek, "el"},
	{unicode.Devanagari, "hi"},
	{unicode.Thai, "th"},
}

// Tiny stop-word tables for Latin-script languages. Counting hits on
// high-frequency function words separates these well enough for a
// composer default.
var stopWords = map[string][]string{
	"es": {"el", "la", "los", "las", "es", "que", "de", "un", "una", "por", "para", "como", "pero"},
	"pt": {"o", "os", "uma", "que", "de", "um", "para", "com", "não", "em", "mas", "você"},
	"fr": {"le", "la", "les", "est", "que", "de", "un", "une", "pour", "avec", "mais", "dans", "je"},
	"de": {"der", "die", "das", "ist", "und", "ein", "eine", "nicht", "mit", "auf", "ich", "sie"},
	"it": {"il", "lo", "gli", "che", "di", "un", "una", "per", "con", "ma", "sono", "non"},
	"en": {"the", "is", "and", "a", "an", "of", "to", "in", "that", "it", "for", "not", "you", "i"},
}

// Detect returns a best-guess BCP-47 tag for the text, or the empty
// string for empty/whitespace input. Latin-script text with no stop-word
// signal falls back to "en".
func Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	counts := make(map[string]int, len(scriptTags))
	total := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		for _, sr := range scriptTags {
			if unicode.Is(sr.table, r) {
				counts[sr.tag]++
				break
			}
		}
	}
	if total == 0 {
		return ""
	}

	// Japanese text mixes kana and Han; kana presence wins over a raw Han
	// majority, which the ordering of scriptTags already handles because
	// kana runes count toward "ja" before the Han check.
	bestTag, bestCount := "", 0
	for tag, n := range counts {
		if n > bestCount {
			bestTag, bestCount = tag, n
		}
	}
	if bestTag != "" && bestCount*2 >= total {
		return canonical(bestTag)
	}

	return canonical(detectLatin(text))
}

// Fixed iteration order keeps ties deterministic; "en" first so it wins
// any dead heat.
var latinOrder = []string{"en", "es", "pt", "fr", "de", "it"}

func detectLatin(text string) string {
	words := strings.Fields(strings.ToLower(text))
	bestTag, bestScore := "en", 0
	for _, tag := range latinOrder {
		stops := stopWords[tag]
		score := 0
		for _, w := range words {
			w = strings.Trim(w, ".,;:!?\"'()[]")
			for _, s := range stops {
				if w == s {
					score++
					break
				}
			}
		}
		if score > bestScore {
			bestTag, bestScore = tag, score
		}
	}
	return bestTag
}

func canonical(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return "en"
	}
	return t.String()
}
