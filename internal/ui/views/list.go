package views

// cursorList tracks the selected row and the first visible row
type cursorList struct {
	cursor int
	offset int
}

func (l *cursorList) move(delta, n, visible int) {
	if n == 0 {
		l.cursor, l.offset = 0, 0
		return
	}
	l.cursor = clamp(l.cursor+delta, 0, n-1)
	l.ensureVisible(visible)
}

// fit keeps the cursor in range after the rows change
func (l *cursorList) fit(n, visible int) {
	if l.cursor >= n {
		l.cursor = max(0, n-1)
	}
	l.ensureVisible(visible)
}

func (l *cursorList) ensureVisible(visible int) {
	visible = max(visible, 1)
	if l.cursor < l.offset {
		l.offset = l.cursor
	} else if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
}

// window returns the [start, end) slice bounds of rows to draw
func (l *cursorList) window(n, visible int) (int, int) {
	visible = max(visible, 1)
	start := clamp(l.offset, 0, max(0, n-1))
	return start, min(n, start+visible)
}
