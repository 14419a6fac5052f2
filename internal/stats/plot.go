package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named line on a chart.
type Series struct {
	Name   string
	Values []float64
	// Invert draws smaller values higher, as for ranks.
	Invert bool
}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	fallbackTermWidth  = 80
	chartGutter        = " │ "
	colorReset         = "\x1b[0m"
)

var seriesColors = []string{"\x1b[36m", "\x1b[33m", "\x1b[35m", "\x1b[32m"}

// dot bit for a (column, row) position inside a 2x4 braille cell.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// PlotSeries draws each series scaled to its own range as braille lines.
// width <= 0 fits the chart to the terminal.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	lines := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	if width <= 0 {
		width = ChartWidthFor(terminalWidth())
	}
	if width < minChartWidth {
		width = minChartWidth
	}

	canvas := make([][][]uint8, len(lines))
	for i, s := range lines {
		canvas[i] = drawSeries(resample(s.Values, width), s.Invert, width, height)
	}

	color := useColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for _, s := range lines {
		lo, hi := valueRange(s.Values)
		fmt.Fprintf(&b, "%s: %.1f .. %.1f\n", s.Name, lo, hi)
	}
	for y := 0; y < height; y++ {
		b.WriteString(strings.Repeat(" ", 2) + chartGutter)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i := range canvas {
				if m := canvas[i][y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			ch := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				b.WriteString(seriesColors[owner%len(seriesColors)] + string(ch) + colorReset)
			} else {
				b.WriteRune(ch)
			}
		}
		b.WriteByte('\n')
	}
	legend := make([]string, 0, len(lines))
	for i, s := range lines {
		label := s.Name
		if color {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		legend = append(legend, label)
	}
	b.WriteString("Legend: " + strings.Join(legend, "  ") + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ChartWidthFor returns the plot area width that fits a line of totalWidth cells.
func ChartWidthFor(totalWidth int) int {
	width := totalWidth - 2 - runewidth.StringWidth(chartGutter)
	if width < minChartWidth {
		return minChartWidth
	}
	return width
}

func drawSeries(values []float64, invert bool, width, height int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	lo, hi := valueRange(values)
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}
	dots := height * 4
	prevX, prevY := -1, -1
	for i, v := range values {
		pos := (v - lo) / (hi - lo)
		if invert {
			pos = 1 - pos
		}
		x := i * 2
		y := clampInt(int(math.Round((1-pos)*float64(dots-1))), 0, dots-1)
		if prevX < 0 {
			setDot(cells, x, y)
		} else {
			line(prevX, prevY, x, y, func(px, py int) { setDot(cells, px, py) })
		}
		prevX, prevY = x, y
	}
	return cells
}

func setDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if cy < 0 || cy >= len(cells) || cx < 0 || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleBits[x%2][y%4]
}

// line walks the Bresenham path between two dot positions.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// resample stretches or averages values into width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(max(width-1, 1))
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func valueRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

func useColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
