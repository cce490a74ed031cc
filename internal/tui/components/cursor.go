package components

// Cursor tracks a selection and scroll window over a list whose items are
// owned elsewhere
type Cursor struct {
	index      int
	offset     int
	maxVisible int
}

// Index returns the selected position
func (c Cursor) Index() int { return c.index }

// SetVisible sets how many rows fit on screen
func (c *Cursor) SetVisible(n int) {
	c.maxVisible = max(n, 1)
	c.ensureVisible()
}

// Move shifts the selection by delta, clamped to [0, count)
func (c *Cursor) Move(delta, count int) {
	c.index += delta
	c.Clamp(count)
}

// Page moves half a screen in direction dir (+1 or -1)
func (c *Cursor) Page(dir, count int) {
	c.Move(dir*max(c.maxVisible/2, 1), count)
}

// Top selects the first item
func (c *Cursor) Top() {
	c.index = 0
	c.offset = 0
}

// Bottom selects the last item
func (c *Cursor) Bottom(count int) {
	c.index = count - 1
	c.Clamp(count)
}

// Clamp keeps the selection inside a list of count items, e.g. after the
// list shrank
func (c *Cursor) Clamp(count int) {
	if c.index >= count {
		c.index = count - 1
	}
	if c.index < 0 {
		c.index = 0
	}
	c.ensureVisible()
}

// Window returns the [start, end) range of rows to render
func (c Cursor) Window(count int) (int, int) {
	start := min(c.offset, max(count-1, 0))
	end := min(start+max(c.maxVisible, 1), count)
	return start, end
}

// NearEnd reports whether the selection is within margin rows of the end
func (c Cursor) NearEnd(count, margin int) bool {
	return count == 0 || c.index >= count-1-margin
}

func (c *Cursor) ensureVisible() {
	// Don't adjust offset if size hasn't been set yet
	if c.maxVisible <= 0 {
		return
	}
	if c.index < c.offset {
		c.offset = c.index
	}
	if c.index >= c.offset+c.maxVisible {
		c.offset = c.index - c.maxVisible + 1
	}
}
