package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectWindowClamp(t *testing.T) {
	w := NewSelectWindow[string]()
	w.SetSize(20, 5) // three visible rows
	w.SetItems([]string{"a", "b", "c", "d", "e", "f"})

	tests := []struct {
		selected, offset         int
		wantSelected, wantOffset int
	}{
		{selected: -1, offset: 0, wantSelected: 0, wantOffset: 0},
		{selected: 2, offset: 0, wantSelected: 2, wantOffset: 0},
		{selected: 3, offset: 0, wantSelected: 3, wantOffset: 1},
		{selected: 9, offset: 0, wantSelected: 5, wantOffset: 3},
		{selected: 1, offset: 3, wantSelected: 1, wantOffset: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.selected, tt.offset), func(t *testing.T) {
			selected, offset := w.Clamp(tt.selected, tt.offset)
			assert.Equal(t, tt.wantSelected, selected)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}

	w.SetItems(nil)
	selected, offset := w.Clamp(4, 2)
	assert.Zero(t, selected)
	assert.Zero(t, offset)
}

func TestSelectWindowIndexAt(t *testing.T) {
	w := NewSelectWindow[string]()
	w.SetSize(20, 5)
	w.SetItems([]string{"a", "b", "c", "d", "e"})

	_, ok := w.IndexAt(0, 0)
	assert.False(t, ok, "title row")

	i, ok := w.IndexAt(1, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = w.IndexAt(3, 2)
	assert.True(t, ok)
	assert.Equal(t, 4, i)

	_, ok = w.IndexAt(4, 0)
	assert.False(t, ok, "footer row")
}

func TestSelectWindowRender(t *testing.T) {
	w := NewSelectWindow[string]()
	w.SetSize(20, 6)
	w.SetItems([]string{"a", "b", "c", "d", "e", "f"})

	out := w.Render(2, 1, RenderConfig[string]{Title: "T", Footer: "F"})

	assert.Equal(t, "T\n  b\n▶ c\n  d\n  e\nF", out)
}

func TestSelectWindowRenderPadsAndEmpty(t *testing.T) {
	w := NewSelectWindow[string]()
	w.SetSize(20, 6)

	out := w.Render(0, 0, RenderConfig[string]{Title: "T", Footer: "F"})
	assert.Equal(t, "T\nNo items found.\n\n\n\nF", out)

	out = w.Render(0, 0, RenderConfig[string]{
		Title:   "T",
		Footer:  "F",
		OnEmpty: func(sb *strings.Builder) { sb.WriteString("nothing\n") },
	})
	assert.Equal(t, 6, len(strings.Split(out, "\n")))
	assert.Contains(t, out, "nothing")
}
