package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/jamdeck/internal/database"
	"github.com/jask/jamdeck/internal/database/repository"
	"github.com/jask/jamdeck/internal/session"
	"github.com/jask/jamdeck/internal/steering"
)

// fakeBackend records the last StartSession call.
type fakeBackend struct {
	err         error
	lastReq     session.PendingRequest
	lastMean    float64
	lastWeights string
	calls       int
}

func (f *fakeBackend) FetchAssetsStatus(ctx context.Context) (steering.AssetsStatus, error) {
	return steering.AssetsStatus{}, nil
}

func (f *fakeBackend) StartSession(ctx context.Context, req session.PendingRequest, mean float64, weightsCSV string) error {
	f.calls++
	f.lastReq = req
	f.lastMean = mean
	f.lastWeights = weightsCSV
	return f.err
}

func newHistoryRepo(t *testing.T) *repository.SessionRepo {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewSessionRepo(db)
}

func TestConductorStartSendsAndRecords(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	params := session.NewParameters()
	params.Styles = nil
	params.AddStyle("detroit techno", 1.0)
	params.AddStyle("vinyl crackle", 0.5)
	params.Bars = 8

	steer := steering.NewState()
	steer.SetCentroidCount(2)
	steer.SelectCompactCentroid(1)
	steer.CompactIntensity = 1.25
	steer.ApplyCompactMixer()
	steer.AssetsRepo = "assets/v1"
	steer.Mean = 1.5

	fb := &fakeBackend{}
	repo := newHistoryRepo(t)
	c := &Conductor{Backend: fb, History: repo}

	rec, err := c.Start(ctx, BuildSnapshot(params, steer, 126))
	require.NoError(t, err)
	require.Equal(t, 1, fb.calls)
	require.Equal(t, 126, fb.lastReq.BPM)
	require.Equal(t, 1.5, fb.lastMean)
	require.Equal(t, "0.0000,1.2500", fb.lastWeights)

	// Recorded snapshot matches what was sent.
	require.Equal(t, "detroit techno,vinyl crackle", rec.Styles)
	require.Equal(t, "1.0000,0.5000", rec.StyleWeights)
	require.Equal(t, "0.0000,1.2500", rec.CentroidWeights)
	require.Equal(t, "assets/v1", rec.AssetsRepo)

	stored, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, rec.ID, stored[0].ID)
	require.Equal(t, rec.Styles, stored[0].Styles)
}

func TestConductorStartBackendFailureNotRecorded(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fb := &fakeBackend{err: errors.New("assets not ready")}
	repo := newHistoryRepo(t)
	c := &Conductor{Backend: fb, History: repo}

	_, err := c.Start(ctx, BuildSnapshot(session.NewParameters(), steering.NewState(), 120))
	require.Error(t, err)

	stored, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, stored, "failed sends stay out of history")
}
