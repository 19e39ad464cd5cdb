package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	// Magnitude does not affect the ranking.
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
}

func TestCosineDegenerateVectorsScoreZero(t *testing.T) {
	assert.Zero(t, Cosine(nil, nil))
	assert.Zero(t, Cosine([]float64{1, 0}, []float64{1, 0, 0}))
	assert.Zero(t, Cosine([]float64{0, 0}, []float64{1, 0}))
}

func TestProfileText(t *testing.T) {
	text := ProfileText("Bar Isabel", "Toronto",
		[]string{"spanish", "tapas"}, []string{"octopus"}, "lively")
	assert.Equal(t,
		"Bar Isabel restaurant in Toronto. cuisine: spanish, tapas. known for: octopus. vibe: lively",
		text)

	assert.Equal(t, "Grey Gardens restaurant in Toronto",
		ProfileText("Grey Gardens", "Toronto", nil, nil, ""))
}
