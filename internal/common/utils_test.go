package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("Fresh POWDER on the upper slopes", "powder"))
	assert.False(t, HasAny("groomed pistes", "icy", "hard"))
	assert.False(t, HasAny("anything"))
}

func TestFirstInt(t *testing.T) {
	n, ok := FirstInt("base depth: 120 cm")
	assert.True(t, ok)
	assert.Equal(t, 120, n)

	_, ok = FirstInt("no data")
	assert.False(t, ok)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, SplitList(" http://a, ,http://b "))
	assert.Nil(t, SplitList(""))
}
