package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fundfinder-engine/internal/domain"
)

const (
	SubmissionPending = "pending"
)

// Submission is a community contribution waiting for moderation. Approval
// happens outside the engine; the engine only records and expires them.
type Submission struct {
	ID          int64          `json:"id"`
	Kind        domain.Kind    `json:"kind"`
	Name        string         `json:"name"`
	Payload     map[string]any `json:"payload"`
	Status      string         `json:"status"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

func (d *DB) InsertSubmission(ctx context.Context, s Submission) (Submission, error) {
	if _, err := tablesFor(s.Kind); err != nil {
		return Submission{}, err
	}
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return Submission{}, fmt.Errorf("encode submission: %w", err)
	}
	s.Status = SubmissionPending
	s.SubmittedAt = time.Now().UTC().Truncate(time.Second)

	err = d.Pool.QueryRowContext(ctx, d.q(`
INSERT INTO submissions (kind, name, payload, status, submitted_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id;`),
		string(s.Kind), s.Name, string(payload), s.Status, s.SubmittedAt.Format(time.RFC3339),
	).Scan(&s.ID)
	if err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return s, nil
}

// ListSubmissions returns newest first; an empty status lists all.
func (d *DB) ListSubmissions(ctx context.Context, status string, limit int) ([]Submission, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	query := `
SELECT id, kind, name, payload, status, submitted_at
FROM submissions
WHERE (? = '' OR status = ?)
ORDER BY submitted_at DESC, id DESC
LIMIT ?;`
	rows, err := d.Pool.QueryContext(ctx, d.q(query), status, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		var kind, payload, at string
		if err := rows.Scan(&s.ID, &kind, &s.Name, &payload, &s.Status, &at); err != nil {
			return nil, err
		}
		s.Kind = domain.Kind(kind)
		if err := json.Unmarshal([]byte(payload), &s.Payload); err != nil {
			return nil, fmt.Errorf("scan submission %d payload: %w", s.ID, err)
		}
		if s.SubmittedAt, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, fmt.Errorf("scan submission %d submitted_at: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CleanupStaleSubmissions deletes pending submissions older than maxAge.
func (d *DB) CleanupStaleSubmissions(ctx context.Context, maxAge time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	// RFC3339 UTC strings order lexically.
	res, err := d.Pool.ExecContext(ctx, d.q(`
DELETE FROM submissions
WHERE status = ? AND submitted_at < ?;`), SubmissionPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup submissions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
