package store

import (
	"database/sql"
	"fmt"
	"slices"
)

// LabelRepository records the class ordering the classifier was run with.
type LabelRepository struct {
	db *sql.DB
}

// Labels returns the label repository for this store.
func (s *Store) Labels() *LabelRepository {
	return &LabelRepository{db: s.db}
}

// List returns the stored classes ordered by position.
func (r *LabelRepository) List() ([]string, error) {
	rows, err := r.db.Query(`SELECT label FROM labels ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// Sync replaces the stored ordering with classes. It reports whether a
// previous, different ordering was overwritten.
func (r *LabelRepository) Sync(classes []string) (changed bool, err error) {
	prev, err := r.List()
	if err != nil {
		return false, err
	}
	if slices.Equal(prev, classes) {
		return false, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM labels`); err != nil {
		return false, err
	}
	for i, label := range classes {
		if _, err := tx.Exec(`INSERT INTO labels (position, label) VALUES (?, ?)`, i, label); err != nil {
			return false, fmt.Errorf("insert label %q: %w", label, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	return len(prev) > 0, nil
}
