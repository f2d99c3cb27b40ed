package tui

const (
	headerHeight    = 3
	statusHeight    = 1
	footerHeight    = 1
	inputBorder     = 2
	minInputLines   = 1
	maxInputLines   = 6
	minViewport     = 3
	compactWidth    = 70
	wideWidth       = 120
	sidebarNarrow   = 30
	sidebarWide     = 38
	dialogWidth     = 64
	markdownPadding = 4
)

// layout is the computed geometry for a terminal size.
type layout struct {
	width          int
	height         int
	mainWidth      int
	sidebarWidth   int
	viewportHeight int
}

// sidebarWidth is zero below the compact breakpoint, where the link panel is
// hidden and only a count is shown in the footer.
func sidebarWidth(width int) int {
	switch {
	case width < compactWidth:
		return 0
	case width >= wideWidth:
		return sidebarWide
	default:
		return sidebarNarrow
	}
}

func computeLayout(width, height, inputLines int) layout {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	side := sidebarWidth(width)
	vh := height - headerHeight - statusHeight - (inputLines + inputBorder) - footerHeight
	if vh < minViewport {
		vh = minViewport
	}
	return layout{
		width:          width,
		height:         height,
		mainWidth:      width - side,
		sidebarWidth:   side,
		viewportHeight: vh,
	}
}

func clampInputLines(n int) int {
	if n < minInputLines {
		return minInputLines
	}
	if n > maxInputLines {
		return maxInputLines
	}
	return n
}
