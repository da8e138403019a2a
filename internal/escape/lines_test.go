package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected TextBlock
	}{
		{"Empty", "", nil},
		{"Single line", "hello", TextBlock{"hello"}},
		{"Trailing newline", "hello\n", TextBlock{"hello"}},
		{"CRLF", "one\r\ntwo\r\n", TextBlock{"one", "two"}},
		{"Bare CR", "one\rtwo", TextBlock{"one", "two"}},
		{"Blank middle line", "a\n\nb", TextBlock{"a", "", "b"}},
		{"Two trailing newlines", "a\n\n", TextBlock{"a", ""}},
		{"Tab expansion", "a\tb", TextBlock{"a       b"}},
		{"Tab at stop", "12345678\tx", TextBlock{"12345678        x"}},
		{"Tab after wide chars", "世界\tx", TextBlock{"世界    x"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Lines(tc.input))
		})
	}
}

func TestTextBlock_Dimensions(t *testing.T) {
	cols, rows := TextBlock{"ab", "abcd", ""}.Dimensions()
	assert.Equal(t, 4, cols)
	assert.Equal(t, 3, rows)

	cols, rows = TextBlock{"世界"}.Dimensions()
	assert.Equal(t, 4, cols, "wide characters occupy two columns")
	assert.Equal(t, 1, rows)

	cols, rows = TextBlock(nil).Dimensions()
	assert.Zero(t, cols)
	assert.Zero(t, rows)
}

func TestTextBlock_String(t *testing.T) {
	assert.Equal(t, "a\nb", TextBlock{"a", "b"}.String())
}
