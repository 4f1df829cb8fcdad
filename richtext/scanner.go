// Package richtext detects mentions, URLs, and hashtags in post text and
// turns them into byte-offset facets.
//
// All offsets are byte offsets into the UTF-8 encoding of the input text,
// which is what the facet wire format requires. Go strings are UTF-8, so
// regexp match indices are already byte offsets; no separate
// character-to-byte conversion pass is needed, but callers must never
// confuse these with rune or UTF-16 indices.
package richtext

import (
	"regexp"
	"strings"
)

var (
	mentionRegex = regexp.MustCompile(`@([a-zA-Z0-9.-]+)`)
	urlRegex     = regexp.MustCompile(`https?://[^\s]+`)
	tagRegex     = regexp.MustCompile(`#(\w+)`)
)

// Span is one scanner match: the matched substring and its UTF-8 byte
// range within the scanned text. For mentions and tags the span covers
// the body only, excluding the leading sigil.
type Span struct {
	Text  string
	Start int
	End   int
}

// ScanMentions returns every @handle match in textual order. The span
// covers the handle characters (alphanumerics, dots, hyphens) and excludes
// the leading @.
func ScanMentions(text string) []Span {
	var out []Span
	for _, m := range mentionRegex.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Span{
			Text:  text[m[2]:m[3]],
			Start: m[2],
			End:   m[3],
		})
	}
	return out
}

// ScanURLs returns every bare http(s) URL in textual order, with trailing
// punctuation trimmed so "see https://x.com." links https://x.com.
func ScanURLs(text string) []Span {
	var out []Span
	for _, m := range urlRegex.FindAllStringIndex(text, -1) {
		raw := text[m[0]:m[1]]
		trimmed := trimTrailingPunct(raw)
		if trimmed == "" {
			continue
		}
		out = append(out, Span{
			Text:  trimmed,
			Start: m[0],
			End:   m[0] + len(trimmed),
		})
	}
	return out
}

// ScanTags returns every #hashtag match in textual order. The span covers
// the tag word (alphanumerics and underscore) and excludes the leading #.
func ScanTags(text string) []Span {
	var out []Span
	for _, m := range tagRegex.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Span{
			Text:  text[m[2]:m[3]],
			Start: m[2],
			End:   m[3],
		})
	}
	return out
}

// DetectURLs returns the deduplicated URL set for the text, preserving
// first-seen order. This is the key set the URL card cache syncs against.
func DetectURLs(text string) []string {
	spans := ScanURLs(text)
	seen := make(map[string]struct{}, len(spans))
	var out []string
	for _, s := range spans {
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s.Text)
	}
	return out
}

// DetectTags returns the hashtag words in textual order, deduplicated
// case-sensitively as typed.
func DetectTags(text string) []string {
	spans := ScanTags(text)
	seen := make(map[string]struct{}, len(spans))
	var out []string
	for _, s := range spans {
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s.Text)
	}
	return out
}

// TypingMention extracts the partial mention currently being typed: the
// text after the last '@', provided it contains no whitespace. A space or
// newline after the '@' means the author has moved on. The empty query
// (text ending in a bare '@') reports ok with an empty string.
func TypingMention(text string) (string, bool) {
	idx := strings.LastIndexByte(text, '@')
	if idx < 0 {
		return "", false
	}
	query := text[idx+1:]
	if strings.ContainsAny(query, " \t\n\r") {
		return "", false
	}
	return query, true
}

// trimTrailingPunct strips sentence punctuation that trails a URL match,
// keeping closing parens/brackets that balance an open one inside the URL.
func trimTrailingPunct(u string) string {
	for {
		prev := u
		if strings.HasSuffix(u, ")") && strings.Count(u, ")") > strings.Count(u, "(") {
			u = u[:len(u)-1]
			continue
		}
		if strings.HasSuffix(u, "]") && strings.Count(u, "]") > strings.Count(u, "[") {
			u = u[:len(u)-1]
			continue
		}
		u = strings.TrimRight(u, `.,;:!?'"`)
		if u == prev {
			return u
		}
	}
}
