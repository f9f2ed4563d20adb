package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	assert.Equal(t, 5, Int(5))
	assert.Equal(t, 5, Int(int64(5)))
	assert.Equal(t, 5, Int(5.9))
	assert.Equal(t, 0, Int("5"))
	assert.Equal(t, 0, Int(nil))
}

func TestFloat(t *testing.T) {
	assert.Equal(t, 2.5, Float(2.5))
	assert.Equal(t, 800.0, Float(int64(800)))
	assert.Equal(t, 3.0, Float(3))
	assert.Equal(t, 0.0, Float(true))
}

func TestStringAndBool(t *testing.T) {
	assert.Equal(t, "x", String("x"))
	assert.Equal(t, "", String(1))
	assert.True(t, Bool(true))
	assert.False(t, Bool("true"))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"a"}, Strings([]string{"a"}))
	assert.Equal(t, []string{"a", "b"}, Strings([]any{"a", 1, "b"}))
	assert.Nil(t, Strings("a"))
}
