package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_Scrolling(t *testing.T) {
	v := NewViewport(20, 3)
	v.SetContent("a\nb\nc\nd\ne")

	assert.True(t, strings.HasPrefix(v.Render(), "a\nb\nc\n"))

	v.ScrollDown(1)
	assert.Equal(t, 1, v.Offset())
	v.End()
	assert.Equal(t, 2, v.Offset())
	assert.True(t, strings.HasPrefix(v.Render(), "c\nd\ne\n"))

	v.ScrollDown(10)
	assert.Equal(t, 2, v.Offset())
	v.PageUp()
	assert.Equal(t, 0, v.Offset())
	v.PageDown()
	v.Home()
	assert.Equal(t, 0, v.Offset())
}

func TestViewport_ShortContentIsPadded(t *testing.T) {
	v := NewViewport(10, 3)
	v.SetContent("only")
	assert.Equal(t, "only\n\n", v.Render())

	v.SetContent("")
	assert.Equal(t, "", v.Render())
}

func TestViewport_TruncatesToWidth(t *testing.T) {
	v := NewViewport(4, 1)
	v.SetContent("abcdefgh")
	assert.Equal(t, "abcd", v.Render())
}
