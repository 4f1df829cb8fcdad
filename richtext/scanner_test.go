package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanMentionsByteOffsets(t *testing.T) {
	assert := assert.New(t)

	// multi-byte char before the mention shifts byte offsets vs rune offsets
	text := "héllo @bob"
	spans := ScanMentions(text)
	assert.Len(spans, 1)
	assert.Equal("bob", spans[0].Text)
	assert.Equal(8, spans[0].Start)
	assert.Equal(11, spans[0].End)
	assert.Equal("bob", text[spans[0].Start:spans[0].End])
}

func TestScanMentionsMultiByteHeavy(t *testing.T) {
	assert := assert.New(t)

	text := "🙂🙂 @alice.bsky.social ok"
	spans := ScanMentions(text)
	assert.Len(spans, 1)
	assert.Equal("alice.bsky.social", spans[0].Text)
	assert.Equal(text[spans[0].Start:spans[0].End], spans[0].Text)
	// two 4-byte emoji plus a space precede the '@'
	assert.Equal(10, spans[0].Start)
}

func TestScanURLs(t *testing.T) {
	assert := assert.New(t)

	spans := ScanURLs("see https://example.com/a. and http://foo.bar")
	assert.Len(spans, 2)
	assert.Equal("https://example.com/a", spans[0].Text)
	assert.Equal("http://foo.bar", spans[1].Text)
	for _, s := range spans {
		assert.Equal(s.Text, "see https://example.com/a. and http://foo.bar"[s.Start:s.End])
	}
}

func TestScanURLsBalancedParens(t *testing.T) {
	assert := assert.New(t)

	spans := ScanURLs("(https://en.wikipedia.org/wiki/Go_(programming_language))")
	assert.Len(spans, 1)
	assert.Equal("https://en.wikipedia.org/wiki/Go_(programming_language)", spans[0].Text)
}

func TestScanTags(t *testing.T) {
	assert := assert.New(t)

	spans := ScanTags("#go and #golang_v2, plus #go")
	assert.Len(spans, 3)
	assert.Equal("go", spans[0].Text)
	assert.Equal("golang_v2", spans[1].Text)

	tags := DetectTags("#go and #golang_v2, plus #go")
	assert.Equal([]string{"go", "golang_v2"}, tags)
}

func TestScannerIdempotent(t *testing.T) {
	assert := assert.New(t)

	text := "héllo @bob check https://x.com #tag 🙂 @alice"
	assert.Equal(ScanMentions(text), ScanMentions(text))
	assert.Equal(ScanURLs(text), ScanURLs(text))
	assert.Equal(ScanTags(text), ScanTags(text))
}

func TestDetectURLsDedupes(t *testing.T) {
	assert := assert.New(t)

	urls := DetectURLs("https://a.com https://b.com https://a.com")
	assert.Equal([]string{"https://a.com", "https://b.com"}, urls)
}

func TestTypingMention(t *testing.T) {
	assert := assert.New(t)

	q, ok := TypingMention("hello @al")
	assert.True(ok)
	assert.Equal("al", q)

	// whitespace after the '@' ends mention-typing mode
	_, ok = TypingMention("hello @alice how are")
	assert.False(ok)

	_, ok = TypingMention("hello @alice\nnew line")
	assert.False(ok)

	// bare trailing '@' is an empty, still-active query
	q, ok = TypingMention("hello @")
	assert.True(ok)
	assert.Equal("", q)

	_, ok = TypingMention("no mention here")
	assert.False(ok)

	// only the last '@' counts
	q, ok = TypingMention("cc @bob and @car")
	assert.True(ok)
	assert.Equal("car", q)
}
