package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary_EmptyData(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte{}))
}

func TestIsBinary_PureText(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary([]byte("hello world\n")))
}

func TestIsBinary_NullByte(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBinary([]byte("hello\x00world")))
}

func TestIsBinary_NullBeyondSniff(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat("a", BinarySniffLength) + "\x00")
	assert.False(t, IsBinary(data))
}

func TestLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single_newline", input: "\n", expected: []string{""}},
		{name: "no_trailing_newline", input: "a\nb", expected: []string{"a", "b"}},
		{name: "trailing_newline", input: "a\nb\n", expected: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", expected: []string{"a", "b"}},
		{name: "cr", input: "a\rb", expected: []string{"a", "b"}},
		{name: "blank_lines", input: "a\n\n\nb\n", expected: []string{"a", "", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Lines([]byte(tt.input)))
		})
	}
}
