package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveMarkdownLinks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "inline link",
			in:   "an [inline](http://x) link",
			want: "an inline link",
		},
		{
			name: "image and reference links",
			in:   "This is an [inline link](https://www.example.com), an ![image](https://www.example.com/image.png), and a [reference link][1].\n\n[1]: https://www.example.org",
			want: "This is an inline link, an !image, and a [reference link][1].\n\n[1]: https://www.example.org",
		},
		{
			name: "no links",
			in:   "plain text [not a link]",
			want: "plain text [not a link]",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveMarkdownLinks(tt.in))
		})
	}
}

func TestReplaceMultipleSpaces(t *testing.T) {
	assert.Equal(t, "a b c", ReplaceMultipleSpaces("a   b  c"))
	assert.Equal(t, "a b", ReplaceMultipleSpaces("a b"))
	assert.Equal(t, "a\n\nb \t c", ReplaceMultipleSpaces("a\n\nb   \t c"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "", Truncate("hello", 0))
	assert.Equal(t, "", Truncate("hello", -4))

	// "é" is two bytes, a cut inside it backs off
	assert.Equal(t, "ab", Truncate("abé", 3))
	assert.Equal(t, "abé", Truncate("abé", 4))
}

func TestLeft(t *testing.T) {
	assert.Equal(t, "ab", Left("abc", 2))
	assert.Equal(t, "héé", Left("hééllo", 3))
	assert.Equal(t, "abc", Left("abc", 10))
	assert.Equal(t, "", Left("abc", 0))
}
