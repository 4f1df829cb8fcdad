package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		text string
		want string
	}{
		{"", ""},
		{"   \n ", ""},
		{"the quick brown fox is in the garden", "en"},
		{"el perro es grande y la casa es bonita", "es"},
		{"der Hund ist nicht klein und die Katze auch", "de"},
		{"こんにちは世界", "ja"},
		{"안녕하세요", "ko"},
		{"你好世界很高兴", "zh"},
		{"привет мир как дела", "ru"},
		{"שלום עולם", "he"},
		{"12345 !!!", ""},
	}
	for _, c := range cases {
		assert.Equal(c.want, Detect(c.text), "text: %q", c.text)
	}
}

func TestDetectLatinFallback(t *testing.T) {
	// no stop-word hits at all still yields a usable default
	assert.Equal(t, "en", Detect("zxqv wvvb gkkr"))
}
