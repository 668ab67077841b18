package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ConfirmClosesThenRuns(t *testing.T) {
	r := NewRecorder()
	var openDuringAction bool
	r.ShowMessage(Message{Text: "hi", Button: "Proceed", OnConfirm: func() {
		_, openDuringAction = r.Modal()
	}})

	require.True(t, r.Confirm())
	assert.False(t, openDuringAction)
	_, open := r.Modal()
	assert.False(t, open)
	assert.False(t, r.Confirm())
}

func TestRecorder_HiddenButtonCannotConfirm(t *testing.T) {
	r := NewRecorder()
	r.ShowMessage(Message{Text: "Game starting in... 3"})

	assert.False(t, r.Confirm())
	msg, open := r.Modal()
	require.True(t, open)
	assert.Equal(t, "Game starting in... 3", msg.Text)
}

func TestRecorder_ScrollIgnoresUnknown(t *testing.T) {
	r := NewRecorder()
	r.SetScroll("nope", 5)
	_, ok := r.ScrollExtent("nope")
	assert.False(t, ok)

	r.AddScrollable("g", 10, 30)
	r.SetScroll("g", 7)
	e, ok := r.ScrollExtent("g")
	require.True(t, ok)
	assert.Equal(t, Extent{Offset: 7, Viewport: 10, Content: 30}, e)
}

func TestExtent(t *testing.T) {
	assert.False(t, Extent{Viewport: 10, Content: 10}.Overflows())
	assert.True(t, Extent{Viewport: 10, Content: 11}.Overflows())
	assert.False(t, Extent{Offset: 18, Viewport: 10, Content: 30}.AtEnd())
	assert.True(t, Extent{Offset: 19, Viewport: 10, Content: 30}.AtEnd())
	assert.True(t, Extent{Offset: 20, Viewport: 10, Content: 30}.AtEnd())
	assert.True(t, Extent{Offset: 19, Viewport: 10, Content: 29}.AtEnd())
}

func TestIDs(t *testing.T) {
	assert.Equal(t, ElementID("stage-3"), StageID(3))
	assert.Equal(t, ElementID("tab-letter"), TabID("letter"))
	assert.Equal(t, "#000000", ThemeDark.Hex())
	assert.Equal(t, "#fffafa", ThemeLight.Hex())
}
