package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

func loadScene(t *testing.T, id string) *domain.Scene {
	t.Helper()
	scene, err := cardService.Load(context.Background(), id, domain.Size{})
	require.NoError(t, err)
	return scene
}

func TestEdit_AddText(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	out, _, err := execute(t, "edit", id, "--add-text", "Hi there")

	require.NoError(t, err)
	assert.Contains(t, out, "Added text ")
	assert.Contains(t, out, "History: 2 undo, 0 redo")
	assert.Contains(t, out, "Saved card "+id)

	scene := loadScene(t, id)
	require.Len(t, scene.Primitives, 3)
	added := scene.Ordered()[2]
	assert.Equal(t, "Hi there", added.Text)
	assert.Equal(t, 2, added.ZIndex)
}

func TestEdit_AddRectAndImage(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	out, _, err := execute(t, "edit", id,
		"--add-rect", "10,20,30,40",
		"--add-image", "https://example.com/a.png,1,2,3,4")

	require.NoError(t, err)
	assert.Contains(t, out, "Added rect ")
	assert.Contains(t, out, "Added image ")

	scene := loadScene(t, id)
	require.Len(t, scene.Primitives, 4)
	img := scene.Ordered()[3]
	assert.Equal(t, domain.KindImage, img.Kind)
	assert.Equal(t, "https://example.com/a.png", img.Src)
}

func TestEdit_InvalidAddRect(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	_, _, err := execute(t, "edit", id, "--add-rect", "1,2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --add-rect")
}

func TestEdit_SetSkipsLockedObjects(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	out, _, err := execute(t, "edit", id,
		"--set", "title.fill=#ff0000",
		"--set", "title.fontSize=48",
		"--set", "frame.fill=#000000")

	require.NoError(t, err)
	assert.Contains(t, out, "Skipped frame: not found or locked")
	assert.Contains(t, out, "History: 2 undo, 0 redo")

	scene := loadScene(t, id)
	title, ok := scene.Get("title")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", title.Fill)
	assert.Equal(t, 48.0, title.FontSize)
	frame, _ := scene.Get("frame")
	assert.NotEqual(t, "#000000", frame.Fill)
}

func TestEdit_InvalidSet(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	_, _, err := execute(t, "edit", id, "--set", "nodot=1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --set")
}

func TestEdit_DuplicateAndFront(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	out, _, err := execute(t, "edit", id,
		"--duplicate", "title",
		"--duplicate", "frame",
		"--front", "title")

	require.NoError(t, err)
	assert.Contains(t, out, "Duplicated title as ")
	assert.Contains(t, out, "Skipped duplicate of frame")

	scene := loadScene(t, id)
	require.Len(t, scene.Primitives, 3)
	ordered := scene.Ordered()
	assert.Equal(t, "title", ordered[2].ID)
	assert.Equal(t, 120.0, ordered[1].Left)
}

func TestEdit_RemoveKeepsLockedFrame(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	out, _, err := execute(t, "edit", id, "--remove", "title", "--remove", "frame")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 objects")

	scene := loadScene(t, id)
	assert.False(t, scene.Has("title"))
	assert.True(t, scene.Has("frame"))
}

func TestEdit_Background(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	_, _, err := execute(t, "edit", id, "--background", "#123456")

	require.NoError(t, err)
	assert.Equal(t, "#123456", loadScene(t, id).Background)
}

func TestEdit_UndoAndRedo(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	out, _, err := execute(t, "edit", id, "--add-text", "a", "--add-text", "b", "--undo", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "History: 1 undo, 2 redo")
	assert.Len(t, loadScene(t, id).Primitives, 2)

	out, _, err = execute(t, "edit", id, "--remove", "title", "--undo", "1", "--redo", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "History: 2 undo, 0 redo")
	assert.False(t, loadScene(t, id).Has("title"))
}

func TestEdit_AddSlide(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	_, _, err := execute(t, "edit", id, "--add-slide", "Extra", "--add-text", "More")
	require.NoError(t, err)

	slides, err := cardService.LoadDeck(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "Extra", slides[1].Name)
	require.Len(t, slides[1].Scene.Primitives, 1)
	assert.Equal(t, "More", slides[1].Scene.Primitives[0].Text)
	assert.Len(t, slides[0].Scene.Primitives, 2)

	record, err := env.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Greeting", record.Metadata["title"])
}

func TestEdit_SlideOutOfRange(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)

	_, _, err := execute(t, "edit", id, "--slide", "5")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open slide 5")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEdit_UnknownCard(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "edit", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParseSets(t *testing.T) {
	updates, order, err := parseSets([]string{"b.left=10", "a.text=hi", "b.selectable=false"})

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, domain.Fields{"left": 10.0, "selectable": false}, updates["b"])
	assert.Equal(t, domain.Fields{"text": "hi"}, updates["a"])

	for _, bad := range []string{"noequals", "nodot=1", ".field=1", "id.=1"} {
		_, _, err := parseSets([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"48", 48.0},
		{"-1.5", -1.5},
		{"true", true},
		{"null", nil},
		{`"quoted"`, "quoted"},
		{"#ff0000", "#ff0000"},
		{"[1,2]", "[1,2]"},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.raw))
		})
	}
}

func TestParseNumbers(t *testing.T) {
	v, err := parseNumbers("1, 2,3.5 ,4", 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3.5, 4}, v)

	_, err = parseNumbers("1,2", 4)
	assert.Error(t, err)

	_, err = parseNumbers("a,b,c,d", 4)
	assert.Error(t, err)
}
