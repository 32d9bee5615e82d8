package main

import (
	"fmt"
	"strings"
)

// SelectWindow is a scrolling, selectable list of items
type SelectWindow[T any] struct {
	Width      int
	Height     int
	Items      []T
	MaxVisible int
}

// NewSelectWindow creates a new generic select window
func NewSelectWindow[T any]() SelectWindow[T] {
	return SelectWindow[T]{
		Width:      30,
		Height:     15,
		MaxVisible: 14,
	}
}

// SetSize updates the dimensions
func (s *SelectWindow[T]) SetSize(width, height int) {
	s.Width = width
	s.Height = height
	// title and footer lines
	s.MaxVisible = height - 2
	if s.MaxVisible < 1 {
		s.MaxVisible = 1
	}
}

// SetItems updates the items list
func (s *SelectWindow[T]) SetItems(items []T) {
	s.Items = items
}

// Clamp keeps the selection inside the list and scrolls it into view
func (s *SelectWindow[T]) Clamp(selected, offset int) (int, int) {
	if len(s.Items) == 0 {
		return 0, 0
	}
	if selected < 0 {
		selected = 0
	}
	if selected >= len(s.Items) {
		selected = len(s.Items) - 1
	}
	if selected < offset {
		offset = selected
	}
	if selected >= offset+s.MaxVisible {
		offset = selected - s.MaxVisible + 1
	}
	if offset < 0 {
		offset = 0
	}
	return selected, offset
}

// IndexAt maps a row of the rendered window to an item index
func (s *SelectWindow[T]) IndexAt(row, offset int) (int, bool) {
	// row 0 is the title
	i := offset + row - 1
	if row < 1 || row > s.MaxVisible || i < 0 || i >= len(s.Items) {
		return 0, false
	}
	return i, true
}

// RenderConfig holds callbacks for customization
type RenderConfig[T any] struct {
	Title   string
	Footer  string
	OnEmpty func(sb *strings.Builder)

	// RenderItem renders a single item, i is the absolute index in Items
	RenderItem func(i int, item T, isSelected bool, sb *strings.Builder)
}

// Render renders the visible part of the list
func (s *SelectWindow[T]) Render(selectedIndex, scrollOffset int, config RenderConfig[T]) string {
	var sb strings.Builder
	sb.WriteString(config.Title)
	sb.WriteString("\n")

	rows := 0
	if len(s.Items) == 0 {
		if config.OnEmpty != nil {
			config.OnEmpty(&sb)
		} else {
			sb.WriteString("No items found.\n")
		}
		rows++
	}

	end := scrollOffset + s.MaxVisible
	if end > len(s.Items) {
		end = len(s.Items)
	}
	for i := scrollOffset; i < end; i++ {
		if config.RenderItem != nil {
			config.RenderItem(i, s.Items[i], i == selectedIndex, &sb)
		} else {
			prefix := "  "
			if i == selectedIndex {
				prefix = "▶ "
			}
			sb.WriteString(fmt.Sprintf("%s%v\n", prefix, s.Items[i]))
		}
		rows++
	}

	for ; rows < s.MaxVisible; rows++ {
		sb.WriteString("\n")
	}
	sb.WriteString(config.Footer)
	return sb.String()
}
