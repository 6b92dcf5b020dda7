// Package repository holds the sqlite data access layer.
package repository

import (
	"context"
	"database/sql"
)

// SessionRepo handles the session-history log.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Insert(ctx context.Context, rec SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO session_history(
	 id, bpm, bars_per_chunk, styles, style_weights, loop_weight, temperature,
	 top_k, guidance_weight, mean_steering, centroid_weights, assets_repo, started_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		rec.ID, rec.BPM, rec.BarsPerChunk, rec.Styles, rec.StyleWeights,
		rec.LoopWeight, rec.Temperature, rec.TopK, rec.GuidanceWeight,
		rec.MeanSteering, rec.CentroidWeights, rec.AssetsRepo, rec.StartedAt)
	return err
}

// Recent returns the most recent records, newest first. limit <= 0 returns
// everything.
func (r *SessionRepo) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	query := `SELECT id, bpm, bars_per_chunk, styles, style_weights, loop_weight,
	 temperature, top_k, guidance_weight, mean_steering, centroid_weights,
	 assets_repo, started_at
	 FROM session_history ORDER BY started_at DESC, id`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.ID, &rec.BPM, &rec.BarsPerChunk, &rec.Styles,
			&rec.StyleWeights, &rec.LoopWeight, &rec.Temperature, &rec.TopK,
			&rec.GuidanceWeight, &rec.MeanSteering, &rec.CentroidWeights,
			&rec.AssetsRepo, &rec.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DistinctStyles returns every distinct styles field seen in the log,
// newest first. Feeds prompt recall.
func (r *SessionRepo) DistinctStyles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT styles FROM session_history GROUP BY styles ORDER BY MAX(started_at) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
