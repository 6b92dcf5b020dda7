package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/jamdeck/internal/session"
)

func TestFetchAssetsStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/assets/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"repo_id":"assets/v3","mean_loaded":true,"centroids_loaded":true,"centroid_count":12,"embedding_dim":768}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := NewClient(srv.URL).FetchAssetsStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.RepoID)
	require.Equal(t, "assets/v3", *st.RepoID)
	require.True(t, st.MeanLoaded)
	require.True(t, st.CentroidsLoaded)
	require.NotNil(t, st.CentroidCount)
	require.Equal(t, 12, *st.CentroidCount)
}

func TestFetchAssetsStatusNullFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"repo_id":null,"mean_loaded":false,"centroids_loaded":false,"centroid_count":null,"embedding_dim":null}`))
	}))
	defer srv.Close()

	st, err := NewClient(srv.URL).FetchAssetsStatus(context.Background())
	require.NoError(t, err)
	require.Nil(t, st.RepoID)
	require.Nil(t, st.CentroidCount)
	require.False(t, st.CentroidsLoaded)
}

func TestStartSessionEncoding(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/session", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pr := session.PendingRequest{
		BPM:            120,
		BarsPerChunk:   8,
		Styles:         []string{"minimal techno", "warm pads"},
		StyleWeights:   []float64{1.0, 0.25},
		LoopWeight:     0.8,
		Temperature:    1.1,
		TopK:           40,
		GuidanceWeight: 4.0,
	}
	err := NewClient(srv.URL).StartSession(context.Background(), pr, 1.5, "0.5000,1.2500,0.0000")
	require.NoError(t, err)

	require.Equal(t, float64(120), got["bpm"])
	require.Equal(t, float64(8), got["bars_per_chunk"])
	require.Equal(t, "minimal techno,warm pads", got["styles"])
	require.Equal(t, "1.0000,0.2500", got["style_weights"])
	require.Equal(t, 1.5, got["mean"])
	require.Equal(t, "0.5000,1.2500,0.0000", got["centroid_weights"])
}

func TestStartSessionServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "assets not ready", http.StatusConflict)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).StartSession(context.Background(), session.PendingRequest{}, 1.0, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "409")
	require.Contains(t, err.Error(), "assets not ready")
}
