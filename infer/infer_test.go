package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPitchForIndex(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(36, PitchForIndex(0))
	assert.Equal(37, PitchForIndex(1))
	assert.Equal(96, PitchForIndex(60))
	// wraps past the top of the range
	assert.Equal(36, PitchForIndex(61))
	assert.Equal(40, PitchForIndex(65))
}
