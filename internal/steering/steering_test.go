package steering

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestNewStateDefaults(t *testing.T) {
	t.Parallel()

	s := NewState()
	require.Equal(t, 1.0, s.Mean)
	_, ok := s.CentroidCount()
	require.False(t, ok, "no status received yet")
	require.Empty(t, s.Weights())
	require.False(t, s.AssetsAvailable())
	require.Equal(t, "", s.WeightsCSV())
}

func TestSetCentroidCountResizeResets(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(5)
	s.SelectCompactCentroid(4)
	s.CompactIntensity = 1.5
	s.ApplyCompactMixer()
	require.Equal(t, 1.5, s.WeightAt(4))

	// A different count is a full reset: new length, all zero, index clamped.
	s.SetCentroidCount(3)
	k, ok := s.CentroidCount()
	require.True(t, ok)
	require.Equal(t, 3, k)
	require.Equal(t, []float64{0, 0, 0}, s.Weights())
	require.Equal(t, 2, s.CompactIndex)
}

func TestSetCentroidCountIdempotent(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(4)
	s.SelectCompactCentroid(1)
	s.CompactIntensity = 0.75
	s.ApplyCompactMixer()

	// Same count again must not touch the weights.
	s.SetCentroidCount(4)
	require.Equal(t, []float64{0, 0.75, 0, 0}, s.Weights())
	require.Equal(t, 1, s.CompactIndex)
}

func TestSetCentroidCountZeroClears(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(6)
	s.SelectCompactCentroid(3)
	s.CompactIntensity = 2.0
	s.ApplyCompactMixer()

	s.SetCentroidCount(0)
	require.Empty(t, s.Weights())
	require.Equal(t, 0, s.CompactIndex)
	require.Equal(t, 0.0, s.CompactIntensity)
	k, ok := s.CentroidCount()
	require.True(t, ok)
	require.Equal(t, 0, k)
}

func TestCompactMixerPushPull(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(3)

	s.SelectCompactCentroid(1)
	s.CompactIntensity = 1.25
	s.ApplyCompactMixer()

	// Moving to an untouched centroid pulls its (zero) weight.
	s.SelectCompactCentroid(2)
	require.Equal(t, 0.0, s.CompactIntensity)

	// Coming back pulls the pushed value.
	s.SelectCompactCentroid(1)
	require.Equal(t, 1.25, s.CompactIntensity)

	// Only index 1 was ever written.
	require.Equal(t, []float64{0, 1.25, 0}, s.Weights())
}

func TestSelectCompactCentroidClamps(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(3)

	s.SelectCompactCentroid(99)
	require.Equal(t, 2, s.CompactIndex)

	s.SelectCompactCentroid(-7)
	require.Equal(t, 0, s.CompactIndex)
}

func TestCompactOpsNoopWithoutCentroids(t *testing.T) {
	t.Parallel()

	s := NewState()

	// No status yet: both operations are no-ops.
	s.CompactIntensity = 1.0
	s.ApplyCompactMixer()
	s.SelectCompactCentroid(2)
	require.Empty(t, s.Weights())
	require.Equal(t, 0, s.CompactIndex)

	s.SetCentroidCount(0)
	s.ApplyCompactMixer()
	s.SelectCompactCentroid(1)
	require.Empty(t, s.Weights())
}

func TestApplyAssetsStatus(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.ApplyAssetsStatus(AssetsStatus{
		RepoID:          strPtr("assets/v2"),
		MeanLoaded:      true,
		CentroidsLoaded: true,
		CentroidCount:   intPtr(8),
		EmbeddingDim:    intPtr(512),
	})

	require.Equal(t, "assets/v2", s.AssetsRepo)
	require.True(t, s.MeanAvailable)
	k, ok := s.CentroidCount()
	require.True(t, ok)
	require.Equal(t, 8, k)
	require.Len(t, s.Weights(), 8)
	require.True(t, s.AssetsAvailable())
}

func TestApplyAssetsStatusCentroidsNotLoaded(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(4)
	s.SelectCompactCentroid(2)
	s.CompactIntensity = 1.0
	s.ApplyCompactMixer()

	// centroids_loaded=false forces a reset even when a count is present.
	s.ApplyAssetsStatus(AssetsStatus{
		MeanLoaded:      false,
		CentroidsLoaded: false,
		CentroidCount:   intPtr(4),
	})

	k, ok := s.CentroidCount()
	require.True(t, ok)
	require.Equal(t, 0, k)
	require.Empty(t, s.Weights())
	require.Equal(t, "", s.AssetsRepo)
	require.False(t, s.AssetsAvailable())
}

func TestApplyAssetsStatusPartial(t *testing.T) {
	t.Parallel()

	s := NewState()
	// Entirely empty status: everything reads as unavailable, no panic.
	s.ApplyAssetsStatus(AssetsStatus{})
	k, ok := s.CentroidCount()
	require.True(t, ok)
	require.Equal(t, 0, k)
	require.False(t, s.AssetsAvailable())
}

func TestAssetsAvailable(t *testing.T) {
	t.Parallel()

	s := NewState()
	require.False(t, s.AssetsAvailable(), "nil count, no mean")

	s.MeanAvailable = true
	require.True(t, s.AssetsAvailable(), "mean alone suffices")

	s.MeanAvailable = false
	s.SetCentroidCount(2)
	require.True(t, s.AssetsAvailable(), "centroids alone suffice")
}

func TestCountChangeDoesNotRefreshCompactIntensity(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(3)
	s.SelectCompactCentroid(1)
	s.CompactIntensity = 1.8
	s.ApplyCompactMixer()

	// The count change zeroes the vector but leaves the compact field stale
	// until the caller re-selects. Intentional; see SetCentroidCount docs.
	s.SetCentroidCount(5)
	require.Equal(t, 1.8, s.CompactIntensity)

	s.SelectCompactCentroid(s.CompactIndex)
	require.Equal(t, 0.0, s.CompactIntensity)
}

func TestWeightsCSV(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetCentroidCount(3)
	s.SelectCompactCentroid(0)
	s.CompactIntensity = 0.5
	s.ApplyCompactMixer()
	s.SelectCompactCentroid(1)
	s.CompactIntensity = 1.25
	s.ApplyCompactMixer()

	require.Equal(t, "0.5000,1.2500,0.0000", s.WeightsCSV())
}

func TestOnChangeFires(t *testing.T) {
	t.Parallel()

	s := NewState()
	var calls int
	s.OnChange = func() { calls++ }

	s.ApplyAssetsStatus(AssetsStatus{CentroidsLoaded: true, CentroidCount: intPtr(2)})
	s.SelectCompactCentroid(1)
	s.ApplyCompactMixer()
	s.SetCentroidCount(3)
	require.Equal(t, 4, calls, "one event per public mutating operation")
}
