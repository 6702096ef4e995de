package backend

import (
	"math"
	"strings"
)

// run is one positioned string from a page content stream.
type run struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

// joinRuns rebuilds lines from content-stream runs in drawing order. A baseline
// move of more than half the font size starts a new line; a horizontal gap wider
// than a fifth of the font size inserts a space.
func joinRuns(runs []run) string {
	var b strings.Builder
	var prev *run
	for i := range runs {
		r := &runs[i]
		if r.S == "" {
			continue
		}
		if prev != nil {
			size := math.Max(prev.FontSize, r.FontSize)
			if size <= 0 {
				size = 1
			}
			switch {
			case math.Abs(r.Y-prev.Y) > size/2:
				b.WriteByte('\n')
			case r.X-(prev.X+prev.W) > size/5:
				b.WriteByte(' ')
			}
		}
		b.WriteString(r.S)
		prev = r
	}
	return b.String()
}
