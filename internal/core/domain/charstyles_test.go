package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfillCharStyles(t *testing.T) {
	t.Run("nil map is created", func(t *testing.T) {
		styles := BackfillCharStyles(nil, "ab\ncde")

		require.Len(t, styles, 2)
		assert.Len(t, styles[0], 2)
		assert.Len(t, styles[1], 3)
		assert.NotNil(t, styles[1][2])
	})

	t.Run("existing entries are preserved", func(t *testing.T) {
		styles := CharStyles{0: {1: CharStyle{"fill": "red"}}}

		styles = BackfillCharStyles(styles, "xyz")

		assert.Equal(t, "red", styles[0][1]["fill"])
		assert.Empty(t, styles[0][0])
		assert.Empty(t, styles[0][2])
	})

	t.Run("multibyte characters count as one column", func(t *testing.T) {
		styles := BackfillCharStyles(nil, "héé")
		assert.Len(t, styles[0], 3)
	})

	t.Run("empty line gets an empty row", func(t *testing.T) {
		styles := BackfillCharStyles(nil, "a\n\nb")
		require.Contains(t, styles, 1)
		assert.Empty(t, styles[1])
	})
}

func TestCharStyles_Prune(t *testing.T) {
	styles := BackfillCharStyles(CharStyles{0: {1: CharStyle{"fill": "red"}}}, "abc\ndef")

	styles.Prune()

	assert.Equal(t, 1, styles.Len())
	assert.NotContains(t, styles, 1)
	assert.Equal(t, "red", styles[0][1]["fill"])
}

func TestCharStyles_CloneNil(t *testing.T) {
	var styles CharStyles
	assert.Nil(t, styles.Clone())
}
