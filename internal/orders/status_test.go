package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusProgression(t *testing.T) {
	assert.Equal(t, 0, StatusPlaced.Rank())
	assert.Equal(t, 5, StatusDone.Rank())

	prev := -1
	for _, s := range progression {
		assert.True(t, s.Known())
		assert.Greater(t, s.Rank(), prev)
		prev = s.Rank()
	}

	assert.False(t, Status("Hilang").Known())
	assert.Equal(t, -1, Status("Hilang").Rank())
}
