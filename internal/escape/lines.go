package escape

import (
	"strings"

	"github.com/rivo/uniseg"
)

// tabWidth is the distance between tab stops, in display columns.
const tabWidth = 8

// TextBlock is an ordered sequence of plain text lines, top to bottom.
type TextBlock []string

// Lines splits plain text into a TextBlock. Lines are separated by "\r\n",
// "\n" or "\r"; a single trailing separator does not produce an empty last
// line, and empty text yields an empty block. Tabs are expanded to spaces.
func Lines(text string) TextBlock {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")
	block := make(TextBlock, len(parts))
	for i, line := range parts {
		block[i] = expandTabs(line)
	}
	return block
}

// expandTabs replaces each tab with spaces up to the next tab stop, counting
// display columns by grapheme cluster.
func expandTabs(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var (
		b   strings.Builder
		col int
	)
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		cluster := g.Str()
		if cluster == "\t" {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteString(cluster)
		col += g.Width()
	}
	return b.String()
}

// Dimensions returns the width of the widest line in display columns, and
// the number of lines.
func (b TextBlock) Dimensions() (columns, rows int) {
	for _, line := range b {
		columns = max(columns, uniseg.StringWidth(line))
	}
	return columns, len(b)
}

// String joins the block with "\n".
func (b TextBlock) String() string {
	return strings.Join(b, "\n")
}
