// Package service holds the application services that sit between the state
// cores, the backend client, and the sqlite history log.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/jamdeck/internal/backend"
	"github.com/jask/jamdeck/internal/database"
	"github.com/jask/jamdeck/internal/database/repository"
	"github.com/jask/jamdeck/internal/session"
	"github.com/jask/jamdeck/internal/steering"
)

// Snapshot is a request-build snapshot of the live state. It must be taken
// on the event loop that owns the state (BuildSnapshot), so that the send can
// run on a background command without racing in-flight user edits.
type Snapshot struct {
	Req                session.PendingRequest
	StylesCSV          string
	StyleWeightsCSV    string
	Mean               float64
	CentroidWeightsCSV string
	AssetsRepo         string
}

// BuildSnapshot serializes the current parameter and steering state for the
// given tempo. Call only from the owning event loop.
func BuildSnapshot(params *session.Parameters, steer *steering.State, bpm int) Snapshot {
	return Snapshot{
		Req:                params.ToPendingRequest(bpm),
		StylesCSV:          params.StylesCSV(),
		StyleWeightsCSV:    params.StyleWeightsCSV(),
		Mean:               steer.Mean,
		CentroidWeightsCSV: steer.WeightsCSV(),
		AssetsRepo:         steer.AssetsRepo,
	}
}

// Conductor sends session requests to the backend and records each sent
// request in the history log. The single request-build code path.
type Conductor struct {
	Backend backend.Service
	History *repository.SessionRepo
}

// Start sends the snapshotted session request and, on success, appends a
// wire-ready record to history. Failed sends are not recorded.
func (c *Conductor) Start(ctx context.Context, snap Snapshot) (repository.SessionRecord, error) {
	if err := c.Backend.StartSession(ctx, snap.Req, snap.Mean, snap.CentroidWeightsCSV); err != nil {
		return repository.SessionRecord{}, fmt.Errorf("start session: %w", err)
	}

	rec := repository.SessionRecord{
		ID:              uuid.NewString(),
		BPM:             snap.Req.BPM,
		BarsPerChunk:    snap.Req.BarsPerChunk,
		Styles:          snap.StylesCSV,
		StyleWeights:    snap.StyleWeightsCSV,
		LoopWeight:      snap.Req.LoopWeight,
		Temperature:     snap.Req.Temperature,
		TopK:            snap.Req.TopK,
		GuidanceWeight:  snap.Req.GuidanceWeight,
		MeanSteering:    snap.Mean,
		CentroidWeights: snap.CentroidWeightsCSV,
		AssetsRepo:      snap.AssetsRepo,
		StartedAt:       database.Now(),
	}
	if err := c.History.Insert(ctx, rec); err != nil {
		return repository.SessionRecord{}, fmt.Errorf("record session: %w", err)
	}
	return rec, nil
}
