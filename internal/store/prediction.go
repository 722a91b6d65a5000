package store

import (
	"database/sql"
	"image"
	"time"
)

// Prediction is one recognized sign.
type Prediction struct {
	ID         int64           `json:"id"`
	SessionID  string          `json:"session_id"`
	Label      string          `json:"label"`
	Confidence float32         `json:"confidence"`
	Handedness string          `json:"handedness,omitempty"`
	Box        image.Rectangle `json:"box"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PredictionRepository stores recognized signs.
type PredictionRepository struct {
	db *sql.DB
}

// Predictions returns the prediction repository for this store.
func (s *Store) Predictions() *PredictionRepository {
	return &PredictionRepository{db: s.db}
}

// Create inserts p and sets its ID.
func (r *PredictionRepository) Create(p *Prediction) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Exec(
		`INSERT INTO predictions (session_id, label, confidence, handedness, box_x1, box_y1, box_x2, box_y2, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SessionID, p.Label, p.Confidence, p.Handedness,
		p.Box.Min.X, p.Box.Min.Y, p.Box.Max.X, p.Box.Max.Y, p.CreatedAt,
	)
	if err != nil {
		return err
	}

	p.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's predictions in the order they were made.
func (r *PredictionRepository) ListBySession(sessionID string) ([]*Prediction, error) {
	return r.query(
		`SELECT id, session_id, label, confidence, handedness, box_x1, box_y1, box_x2, box_y2, created_at
		 FROM predictions WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
}

// Recent returns up to limit predictions across all sessions, newest first.
func (r *PredictionRepository) Recent(limit int) ([]*Prediction, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(
		`SELECT id, session_id, label, confidence, handedness, box_x1, box_y1, box_x2, box_y2, created_at
		 FROM predictions ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

func (r *PredictionRepository) query(q string, args ...any) ([]*Prediction, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Prediction
	for rows.Next() {
		p := &Prediction{}
		if err := rows.Scan(
			&p.ID, &p.SessionID, &p.Label, &p.Confidence, &p.Handedness,
			&p.Box.Min.X, &p.Box.Min.Y, &p.Box.Max.X, &p.Box.Max.Y, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
