package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertionIndex(t *testing.T) {
	// three cards, 100px tall, midpoints at 50, 150 and 250
	elements := []Element{
		{BookID: "a", Top: 0, Height: 100},
		{BookID: "b", Top: 100, Height: 100},
		{BookID: "c", Top: 200, Height: 100},
	}

	tests := []struct {
		name     string
		pointerY float64
		want     int
	}{
		{"above everything", -20, 0},
		{"upper half of first", 30, 0},
		{"exactly on first midpoint", 50, 1},
		{"lower half of first", 70, 1},
		{"upper half of second", 149, 1},
		{"lower half of last", 260, 3},
		{"below everything", 1000, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InsertionIndex(elements, tt.pointerY))
		})
	}
}

func TestInsertionIndexSkipsDraggedElement(t *testing.T) {
	elements := []Element{
		{BookID: "a", Top: 0, Height: 100},
		{BookID: "b", Top: 100, Height: 100, Dragging: true},
		{BookID: "c", Top: 200, Height: 100},
	}

	assert.Equal(t, 2, InsertionIndex(elements, 120))
	assert.Equal(t, 0, InsertionIndex(elements, 10))
}

func TestInsertionIndexEmptyColumn(t *testing.T) {
	assert.Equal(t, 0, InsertionIndex(nil, 42))
}

func TestInsertionIndexDeterministic(t *testing.T) {
	elements := []Element{
		{BookID: "a", Top: 0, Height: 40},
		{BookID: "b", Top: 40, Height: 80},
		{BookID: "c", Top: 120, Height: 20},
	}
	for y := -10.0; y < 200; y += 7 {
		first := InsertionIndex(elements, y)
		assert.Equal(t, first, InsertionIndex(elements, y))
	}
}
