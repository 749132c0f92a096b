package vm

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// PreviewString renders a wisp String object's content for diagnostics,
// truncated to maxCells display columns rather than maxCells bytes or
// runes: a string full of wide CJK characters or combining marks must
// not blow past a terminal's column budget just because byte-truncation
// looked short enough.
func PreviewString(o *Object, maxCells int) string {
	if o.class != ClassString {
		panic("vm: PreviewString on a non-string object")
	}
	content := string(o.StringBytes())
	if runewidth.StringWidth(content) <= maxCells {
		return content
	}

	var b strings.Builder
	cells := 0
	seg := graphemes.FromString(content)
	for seg.Next() {
		g := seg.Value()
		w := runewidth.StringWidth(g)
		if cells+w > maxCells {
			break
		}
		b.WriteString(g)
		cells += w
	}
	b.WriteString("...")
	return b.String()
}
