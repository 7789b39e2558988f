package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBarTracksOutcomes(t *testing.T) {
	bar := NewProgressBar(3)

	bar.Update(1, "Declaring star schema", true)
	bar.Update(2, "Staging remote extracts", true)
	bar.Update(3, "Loading dimensions", false)

	assert.Equal(t, 3, bar.current)
	assert.Equal(t, 2, bar.successCount)
	assert.Equal(t, 1, bar.failureCount)
	assert.Equal(t, "Loading dimensions", bar.currentStage)

	bar.Finish()
}
