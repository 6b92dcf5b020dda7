// Package backend talks to the generation service over HTTP/JSON: assets
// status polling and session start/restart.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jask/jamdeck/internal/session"
	"github.com/jask/jamdeck/internal/steering"
)

// Service is what the rest of the app needs from the backend.
type Service interface {
	FetchAssetsStatus(ctx context.Context) (steering.AssetsStatus, error)
	StartSession(ctx context.Context, req session.PendingRequest, mean float64, centroidWeightsCSV string) error
}

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the given base URL, e.g.
// "http://localhost:8590".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchAssetsStatus retrieves the current steering-assets snapshot.
func (c *Client) FetchAssetsStatus(ctx context.Context) (steering.AssetsStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/assets/status", nil)
	if err != nil {
		return steering.AssetsStatus{}, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return steering.AssetsStatus{}, fmt.Errorf("fetch assets status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return steering.AssetsStatus{}, httpError("assets status", resp)
	}

	var st steering.AssetsStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return steering.AssetsStatus{}, fmt.Errorf("decode assets status: %w", err)
	}
	return st, nil
}

// sessionPayload is the wire shape for session start. The steering fields
// travel as comma-joined text (weights fixed to 4 decimals), matching what
// the service's request decoder expects.
type sessionPayload struct {
	BPM             int     `json:"bpm"`
	BarsPerChunk    int     `json:"bars_per_chunk"`
	Styles          string  `json:"styles"`
	StyleWeights    string  `json:"style_weights"`
	LoopWeight      float64 `json:"loop_weight"`
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"top_k"`
	GuidanceWeight  float64 `json:"guidance_weight"`
	MeanSteering    float64 `json:"mean"`
	CentroidWeights string  `json:"centroid_weights"`
}

// StartSession posts a session request built from the pending request plus
// the steering fields.
func (c *Client) StartSession(ctx context.Context, pr session.PendingRequest, mean float64, centroidWeightsCSV string) error {
	payload := sessionPayload{
		BPM:             pr.BPM,
		BarsPerChunk:    pr.BarsPerChunk,
		Styles:          joinCSV(pr.Styles),
		StyleWeights:    joinWeightsCSV(pr.StyleWeights),
		LoopWeight:      pr.LoopWeight,
		Temperature:     pr.Temperature,
		TopK:            pr.TopK,
		GuidanceWeight:  pr.GuidanceWeight,
		MeanSteering:    mean,
		CentroidWeights: centroidWeightsCSV,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/session", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError("start session", resp)
	}
	return nil
}

func joinCSV(parts []string) string {
	return strings.Join(parts, ",")
}

func joinWeightsCSV(ws []float64) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = strconv.FormatFloat(w, 'f', 4, 64)
	}
	return strings.Join(parts, ",")
}

func httpError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("%s: backend returned %s: %s", op, resp.Status, bytes.TrimSpace(snippet))
}
