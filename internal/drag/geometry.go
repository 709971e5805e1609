package drag

// Element is the vertical extent of one book card in a column.
type Element struct {
	BookID   string  `json:"bookId"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	Dragging bool    `json:"dragging,omitempty"`
}

// InsertionIndex returns the index of the element the placeholder goes before:
// the first element, skipping the dragged one, whose midpoint lies below
// pointerY. Elements are expected in display order. When the pointer is
// below every midpoint the result is len(elements).
func InsertionIndex(elements []Element, pointerY float64) int {
	best := len(elements)
	var closest float64
	found := false

	for i, el := range elements {
		if el.Dragging {
			continue
		}
		offset := pointerY - (el.Top + el.Height/2)
		if offset < 0 && (!found || offset > closest) {
			closest = offset
			best = i
			found = true
		}
	}
	return best
}
