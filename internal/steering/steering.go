// Package steering holds the latent-steering state for a live generation
// session: the per-centroid weight vector reported-against by the backend,
// the global mean-steering scalar, and the compact single-centroid mixer
// projection the UI edits.
//
// The package is deliberately never-fail: boundary inputs are clamped,
// truncated, or defaulted rather than rejected, so the state is consistent
// after every operation. All mutation is expected to happen on one event
// loop; ApplyAssetsStatus is the single externally-driven entry point.
package steering

import (
	"strconv"
	"strings"
)

// AssetsStatus is the backend's snapshot of which steering assets are loaded.
// Shape is fixed by the backend wire protocol; nullable fields are pointers
// and absent means unavailable.
type AssetsStatus struct {
	RepoID          *string `json:"repo_id"`
	MeanLoaded      bool    `json:"mean_loaded"`
	CentroidsLoaded bool    `json:"centroids_loaded"`
	CentroidCount   *int    `json:"centroid_count"`
	EmbeddingDim    *int    `json:"embedding_dim"`
}

// State is the steering state manager.
//
// Three views of the same data have to stay in sync: the authoritative
// weight vector (one float per backend centroid), the compact mixer
// (CompactIndex/CompactIntensity, a "pick one centroid and adjust it"
// control), and the asynchronously reported centroid count, which can change
// the vector's length at any time. SelectCompactCentroid pulls from the
// vector into the compact fields; ApplyCompactMixer pushes back. Nothing
// else moves data between the two, so UI code must bracket selection changes
// with those calls.
type State struct {
	// Mean is the global steering scalar, intended domain [0,2].
	// Meaningful even when no centroids are loaded.
	Mean float64

	// AssetsRepo is the backend-reported asset bundle id. Informational.
	AssetsRepo string

	// MeanAvailable reports whether the backend has a mean vector loaded.
	MeanAvailable bool

	// CompactIndex is the centroid selected by the compact mixer.
	// Always within [0, count-1] while centroids are loaded, 0 otherwise.
	CompactIndex int

	// CompactIntensity mirrors weights[CompactIndex], intended domain [0,2].
	// It is a separate field: SelectCompactCentroid pulls it from the
	// vector, ApplyCompactMixer pushes it back.
	CompactIntensity float64

	// ShowAdvancedCentroids toggles the full per-centroid readout in the UI.
	// No invariant ties it to the rest of the state.
	ShowAdvancedCentroids bool

	// OnChange, if set, is called after every public mutating operation.
	// UI binding hook; the core never depends on it.
	OnChange func()

	weights []float64
	count   *int // nil until the first assets status arrives
}

// NewState returns steering state with the mean at its neutral default and
// no assets reported yet.
func NewState() *State {
	return &State{Mean: 1.0}
}

// CentroidCount returns the backend-reported centroid count and whether a
// status has been received at all. Zero and "never received" both mean no
// usable centroids.
func (s *State) CentroidCount() (int, bool) {
	if s.count == nil {
		return 0, false
	}
	return *s.count, true
}

// Weights returns a copy of the centroid weight vector.
func (s *State) Weights() []float64 {
	out := make([]float64, len(s.weights))
	copy(out, s.weights)
	return out
}

// WeightAt returns the weight for centroid i, or 0 if i is out of range.
func (s *State) WeightAt(i int) float64 {
	if i < 0 || i >= len(s.weights) {
		return 0
	}
	return s.weights[i]
}

// AssetsAvailable reports whether any steering asset is usable: at least one
// centroid, or a loaded mean vector.
func (s *State) AssetsAvailable() bool {
	return (s.count != nil && *s.count > 0) || s.MeanAvailable
}

// ApplyAssetsStatus folds a backend status report into the state. This is
// the only path that changes the centroid count. Partial or malformed
// status never errors: absent fields read as unavailable.
func (s *State) ApplyAssetsStatus(st AssetsStatus) {
	if st.RepoID != nil {
		s.AssetsRepo = *st.RepoID
	} else {
		s.AssetsRepo = ""
	}
	s.MeanAvailable = st.MeanLoaded

	if st.CentroidsLoaded && st.CentroidCount != nil && *st.CentroidCount > 0 {
		s.setCentroidCount(*st.CentroidCount)
	} else {
		s.setCentroidCount(0)
	}
	s.changed()
}

// SetCentroidCount resizes the weight vector for a new backend-reported
// count. A changed count discards all weights (centroid identity is not
// stable across a reload); an unchanged count leaves them alone. k <= 0 is a
// full reset of vector, compact index and compact intensity.
//
// Note the asymmetry: a count change does NOT refresh CompactIntensity from
// the (possibly just zeroed) vector. Callers that need the compact view
// current must follow up with SelectCompactCentroid.
func (s *State) SetCentroidCount(k int) {
	s.setCentroidCount(k)
	s.changed()
}

func (s *State) setCentroidCount(k int) {
	s.count = &k
	if k <= 0 {
		s.weights = nil
		s.CompactIndex = 0
		s.CompactIntensity = 0
		return
	}
	s.ensureWeights(k)
	s.CompactIndex = clampIndex(s.CompactIndex, k)
}

// ApplyCompactMixer pushes the compact intensity into the authoritative
// vector at the selected index. Exactly one index is written; every other
// weight is untouched. No-op while no centroids are loaded.
func (s *State) ApplyCompactMixer() {
	k, ok := s.CentroidCount()
	if !ok || k <= 0 {
		return
	}
	// Reconcile length before the indexed write, never after.
	s.ensureWeights(k)
	s.CompactIndex = clampIndex(s.CompactIndex, k)
	s.weights[s.CompactIndex] = s.CompactIntensity
	s.changed()
}

// SelectCompactCentroid moves the compact mixer to idx (clamped into range)
// and pulls that centroid's weight into CompactIntensity. This is the only
// operation that reads the vector back into the compact view. No-op while
// no centroids are loaded.
func (s *State) SelectCompactCentroid(idx int) {
	k, ok := s.CentroidCount()
	if !ok || k <= 0 {
		return
	}
	s.CompactIndex = clampIndex(idx, k)
	s.ensureWeights(k)
	s.CompactIntensity = s.weights[s.CompactIndex]
	s.changed()
}

// ensureWeights resizes the vector to k entries. A length mismatch is a full
// reset to zero; a matching length is left untouched.
func (s *State) ensureWeights(k int) {
	if len(s.weights) != k {
		s.weights = make([]float64, k)
	}
}

// WeightsCSV renders the weight vector as fixed 4-decimal values joined with
// commas, in centroid order. Empty vector renders as the empty string.
func (s *State) WeightsCSV() string {
	if len(s.weights) == 0 {
		return ""
	}
	parts := make([]string, len(s.weights))
	for i, w := range s.weights {
		parts[i] = strconv.FormatFloat(w, 'f', 4, 64)
	}
	return strings.Join(parts, ",")
}

func (s *State) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func clampIndex(idx, k int) int {
	if idx < 0 {
		return 0
	}
	if idx > k-1 {
		return k - 1
	}
	return idx
}
