package repository

import "time"

// SessionRecord is one sent session request, snapshotted in wire-ready form:
// styles and weights are the comma-joined text fields that went to the
// backend, not re-parsed structures.
type SessionRecord struct {
	ID              string
	BPM             int
	BarsPerChunk    int
	Styles          string
	StyleWeights    string
	LoopWeight      float64
	Temperature     float64
	TopK            int
	GuidanceWeight  float64
	MeanSteering    float64
	CentroidWeights string
	AssetsRepo      string
	StartedAt       time.Time
}
