// Package session holds the user-adjustable generation parameters for a
// jam session: the ordered style-prompt list and the scalar sampling knobs,
// plus conversion to and from the request value handed to the backend.
package session

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// StyleEntry is one style prompt slot: free text plus a blend weight.
// Identity is the ID, not the content — two slots with the same text are
// still distinct slots, and edits mutate a slot in place.
type StyleEntry struct {
	ID     string
	Text   string
	Weight float64
}

// NewStyleEntry returns a style slot with a fresh identity.
func NewStyleEntry(text string, weight float64) *StyleEntry {
	return &StyleEntry{ID: uuid.NewString(), Text: text, Weight: weight}
}

// PendingRequest is the parameter bundle handed to the backend to start or
// restart a generation session. BPM is supplied by the caller at build time;
// everything else comes from Parameters.
type PendingRequest struct {
	BPM            int
	BarsPerChunk   int
	Styles         []string
	StyleWeights   []float64
	LoopWeight     float64
	Temperature    float64
	TopK           int
	GuidanceWeight float64
}

// Parameters is the session parameter state.
//
// Scalar fields document their intended domains but assignment does not
// clamp; keeping values in range is the caller's job (the TUI clamps at the
// key-handling layer). The zero-ish defaults below match what the backend
// treats as neutral.
type Parameters struct {
	// Styles is the ordered prompt list. Order is significant: it defines
	// prompt order and the column order of the CSV accessors.
	Styles []*StyleEntry

	LoopWeight     float64 // [0,1]
	Bars           int     // 4 or 8
	Temperature    float64 // [0,4]
	TopK           int     // [0,1024]
	GuidanceWeight float64 // [0,10]

	// OnChange, if set, is called by the mutating helpers below. Direct
	// field edits (scalar adjustments in a tight UI loop) don't fire it.
	OnChange func()
}

// NewParameters returns session parameters with one empty style slot at
// weight 1.0 and neutral sampling defaults.
func NewParameters() *Parameters {
	return &Parameters{
		Styles:         []*StyleEntry{NewStyleEntry("", 1.0)},
		LoopWeight:     1.0,
		Bars:           4,
		Temperature:    1.1,
		TopK:           40,
		GuidanceWeight: 4.0,
	}
}

// AddStyle appends a new style slot and returns it.
func (p *Parameters) AddStyle(text string, weight float64) *StyleEntry {
	e := NewStyleEntry(text, weight)
	p.Styles = append(p.Styles, e)
	p.changed()
	return e
}

// RemoveStyle removes the slot with the given id. Unknown ids are ignored.
func (p *Parameters) RemoveStyle(id string) {
	for i, e := range p.Styles {
		if e.ID == id {
			p.Styles = append(p.Styles[:i], p.Styles[i+1:]...)
			p.changed()
			return
		}
	}
}

// FromPendingRequest rebuilds the parameter state from a previously built
// request. Styles and weights are paired positionally; a length mismatch
// truncates to the shorter sequence rather than erroring. Every rebuilt slot
// gets a fresh identity. Scalars are copied verbatim, no clamping.
func (p *Parameters) FromPendingRequest(req PendingRequest) {
	n := len(req.Styles)
	if len(req.StyleWeights) < n {
		n = len(req.StyleWeights)
	}
	styles := make([]*StyleEntry, 0, n)
	for i := 0; i < n; i++ {
		styles = append(styles, NewStyleEntry(req.Styles[i], req.StyleWeights[i]))
	}
	p.Styles = styles

	p.LoopWeight = req.LoopWeight
	p.Bars = req.BarsPerChunk
	p.Temperature = req.Temperature
	p.TopK = req.TopK
	p.GuidanceWeight = req.GuidanceWeight
	p.changed()
}

// ToPendingRequest builds the request value for the backend. bpm is owned by
// the caller, not by this state. Pure: no fields are modified.
func (p *Parameters) ToPendingRequest(bpm int) PendingRequest {
	styles := make([]string, len(p.Styles))
	weights := make([]float64, len(p.Styles))
	for i, e := range p.Styles {
		styles[i] = e.Text
		weights[i] = e.Weight
	}
	return PendingRequest{
		BPM:            bpm,
		BarsPerChunk:   p.Bars,
		Styles:         styles,
		StyleWeights:   weights,
		LoopWeight:     p.LoopWeight,
		Temperature:    p.Temperature,
		TopK:           p.TopK,
		GuidanceWeight: p.GuidanceWeight,
	}
}

// StylesCSV joins the style texts with commas, in slot order, verbatim.
// Embedded commas in a prompt are not escaped; the wire format has no
// escaping scheme.
func (p *Parameters) StylesCSV() string {
	parts := make([]string, len(p.Styles))
	for i, e := range p.Styles {
		parts[i] = e.Text
	}
	return strings.Join(parts, ",")
}

// StyleWeightsCSV renders the slot weights as fixed 4-decimal values joined
// with commas, in slot order.
func (p *Parameters) StyleWeightsCSV() string {
	parts := make([]string, len(p.Styles))
	for i, e := range p.Styles {
		parts[i] = strconv.FormatFloat(e.Weight, 'f', 4, 64)
	}
	return strings.Join(parts, ",")
}

func (p *Parameters) changed() {
	if p.OnChange != nil {
		p.OnChange()
	}
}
