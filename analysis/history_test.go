package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(100)

	_, ok := h.Latest()
	assert.False(t, ok)

	for i := 0; i < 150; i++ {
		h.Append(SpectralAnalysis{RMSEnergy: float64(i)})
	}

	require.Equal(t, 100, h.Len())
	all := h.All()
	require.Len(t, all, 100)
	assert.Equal(t, 50.0, all[0].RMSEnergy, "oldest retained entry")
	assert.Equal(t, 149.0, all[99].RMSEnergy, "newest entry")

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 149.0, latest.RMSEnergy)
}

func TestHistoryPartialFill(t *testing.T) {
	h := NewHistory(4)
	h.Append(SpectralAnalysis{RMSEnergy: 1})
	h.Append(SpectralAnalysis{RMSEnergy: 2})

	all := h.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1.0, all[0].RMSEnergy)
	assert.Equal(t, 2.0, all[1].RMSEnergy)
	assert.Equal(t, 4, h.Cap())
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Append(SpectralAnalysis{RMSEnergy: 1})
	h.Append(SpectralAnalysis{RMSEnergy: 2})
	assert.Equal(t, 1, h.Len())
	latest, _ := h.Latest()
	assert.Equal(t, 2.0, latest.RMSEnergy)
}
