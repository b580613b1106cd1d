package textlayout

import (
	"fmt"
	"strings"

	"github.com/dshills/ocrsynth/pkg/config"
)

// BreakIntoLines splits text into exactly numLines lines, per mode. A
// numLines of 1 returns the input unchanged as the sole line. Empty text
// always returns a single empty line, regardless of numLines.
func BreakIntoLines(text string, numLines int, mode config.LineBreakMode) ([]string, error) {
	if numLines < 1 {
		return nil, fmt.Errorf("textlayout: numLines must be >= 1, got %d", numLines)
	}
	if text == "" {
		return []string{""}, nil
	}
	if numLines == 1 {
		return []string{text}, nil
	}
	switch mode {
	case config.BreakWord:
		return breakByWord(text, numLines), nil
	case config.BreakCharacter:
		return breakByCharacter(text, numLines), nil
	default:
		return nil, fmt.Errorf("textlayout: unknown line break mode %q", mode)
	}
}

// breakByWord distributes whitespace-delimited words across numLines as
// evenly as possible, never splitting a word across a line boundary.
func breakByWord(text string, numLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		lines := make([]string, numLines)
		return lines
	}
	if len(words) <= numLines {
		lines := make([]string, numLines)
		for i, w := range words {
			lines[i] = w
		}
		return lines
	}

	totalLen := 0
	for _, w := range words {
		totalLen += len(w) + 1
	}
	targetPerLine := totalLen / numLines

	lines := make([]string, 0, numLines)
	var current []string
	currentLen := 0
	for i, w := range words {
		remainingLines := numLines - len(lines)
		remainingWords := len(words) - i
		current = append(current, w)
		currentLen += len(w) + 1
		atLastLine := remainingLines == 1
		mustFlushForWordBudget := remainingWords <= remainingLines-1 // keep enough words for remaining lines
		if !atLastLine && (currentLen >= targetPerLine || mustFlushForWordBudget) && len(lines) < numLines-1 {
			lines = append(lines, strings.Join(current, " "))
			current = nil
			currentLen = 0
		}
	}
	lines = append(lines, strings.Join(current, " "))
	for len(lines) < numLines {
		lines = append(lines, "")
	}
	return lines
}

// breakByCharacter distributes the runes of text as evenly as possible
// across numLines, with any remainder going to earlier lines.
func breakByCharacter(text string, numLines int) []string {
	runes := []rune(text)
	n := len(runes)
	base := n / numLines
	remainder := n % numLines

	lines := make([]string, numLines)
	pos := 0
	for i := 0; i < numLines; i++ {
		count := base
		if i < remainder {
			count++
		}
		end := pos + count
		if end > n {
			end = n
		}
		lines[i] = string(runes[pos:end])
		pos = end
	}
	return lines
}

// FontMetrics reports the height (ascent+descent) and, for a given line,
// the advance width (horizontal layouts) or advance height (vertical
// layouts) that the shaper would produce for that line's text. It lets
// this package stay decoupled from the font engine contract.
type FontMetrics func(line string) (advance, lineHeight float64)

// MultilineDimensions computes the overall (width, height) of num lines
// stacked with the given spacing multiplier. For horizontal directions
// height accumulates across lines; for vertical directions width
// accumulates instead.
func MultilineDimensions(lines []string, metrics FontMetrics, spacing float64, dir config.Direction) (width, height float64) {
	if len(lines) == 0 {
		return 0, 0
	}
	if dir.Horizontal() {
		maxAdvance := 0.0
		lineHeight := 0.0
		for _, l := range lines {
			adv, lh := metrics(l)
			if adv > maxAdvance {
				maxAdvance = adv
			}
			if lh > lineHeight {
				lineHeight = lh
			}
		}
		height = lineHeight * (1 + spacing*float64(len(lines)-1))
		return maxAdvance, height
	}
	maxAdvance := 0.0
	lineWidth := 0.0
	for _, l := range lines {
		adv, lh := metrics(l)
		if adv > maxAdvance {
			maxAdvance = adv
		}
		if lh > lineWidth {
			lineWidth = lh
		}
	}
	width = lineWidth * (1 + spacing*float64(len(lines)-1))
	return width, maxAdvance
}

// Offset is the top-left placement delta for one line relative to the
// multi-line surface's origin.
type Offset struct {
	DX, DY float64
}

// LinePositions computes the per-line offsets implementing alignment for
// the given direction. It returns an error if alignment is not valid for
// dir (see config.Alignment.ValidForDirection).
func LinePositions(lines []string, metrics FontMetrics, spacing float64, alignment config.Alignment, dir config.Direction) ([]Offset, error) {
	if !alignment.ValidForDirection(dir) {
		return nil, fmt.Errorf("textlayout: alignment %q invalid for direction %q", alignment, dir)
	}
	offsets := make([]Offset, len(lines))
	if len(lines) == 0 {
		return offsets, nil
	}

	if dir.Horizontal() {
		_, lineHeight := metrics(lines[0])
		maxAdvance := 0.0
		advances := make([]float64, len(lines))
		for i, l := range lines {
			adv, lh := metrics(l)
			advances[i] = adv
			if lh > lineHeight {
				lineHeight = lh
			}
			if adv > maxAdvance {
				maxAdvance = adv
			}
		}
		y := 0.0
		for i := range lines {
			x := 0.0
			switch alignment {
			case config.AlignCenter:
				x = (maxAdvance - advances[i]) / 2
			case config.AlignRight:
				x = maxAdvance - advances[i]
			}
			offsets[i] = Offset{DX: x, DY: y}
			y += lineHeight * spacing
		}
		return offsets, nil
	}

	maxWidth := 0.0
	heights := make([]float64, len(lines))
	lineWidth := 0.0
	for i, l := range lines {
		adv, lh := metrics(l)
		heights[i] = adv
		if lh > lineWidth {
			lineWidth = lh
		}
		if adv > maxWidth {
			maxWidth = adv
		}
	}
	x := 0.0
	for i := range lines {
		y := 0.0
		switch alignment {
		case config.AlignCenter:
			y = (maxWidth - heights[i]) / 2
		case config.AlignBottom:
			y = maxWidth - heights[i]
		}
		offsets[i] = Offset{DX: x, DY: y}
		x += lineWidth * spacing
	}
	return offsets, nil
}
