package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const sampleColumns = "id, path, language, hash, line_count, syntax_errors, last_indexed"

// InsertSample inserts a sample record and sets its ID.
func (s *Store) InsertSample(smp *Sample) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO samples (path, language, hash, line_count, syntax_errors, last_indexed) VALUES (?, ?, ?, ?, ?, ?)",
		smp.Path, smp.Language, smp.Hash, smp.LineCount, smp.SyntaxErrors, smp.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert sample %q: %w", smp.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	smp.ID = id
	return id, nil
}

// SampleByPath returns the sample stored under path, or nil if none.
func (s *Store) SampleByPath(path string) (*Sample, error) {
	return s.sampleWhere("path = ?", path)
}

// SampleByID returns the sample with the given ID, or nil if none.
func (s *Store) SampleByID(id int64) (*Sample, error) {
	return s.sampleWhere("id = ?", id)
}

func (s *Store) sampleWhere(cond string, arg any) (*Sample, error) {
	smp := &Sample{}
	err := s.db.QueryRow("SELECT "+sampleColumns+" FROM samples WHERE "+cond, arg).Scan(
		&smp.ID, &smp.Path, &smp.Language, &smp.Hash, &smp.LineCount, &smp.SyntaxErrors, &smp.LastIndexed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: sample lookup: %w", err)
	}
	return smp, nil
}

// Samples returns every sample ordered by path.
func (s *Store) Samples() ([]*Sample, error) {
	return s.querySamples("SELECT " + sampleColumns + " FROM samples ORDER BY path")
}

func (s *Store) querySamples(query string, args ...any) ([]*Sample, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query samples: %w", err)
	}
	defer rows.Close()
	var out []*Sample
	for rows.Next() {
		smp := &Sample{}
		if err := rows.Scan(&smp.ID, &smp.Path, &smp.Language, &smp.Hash, &smp.LineCount, &smp.SyntaxErrors, &smp.LastIndexed); err != nil {
			return nil, fmt.Errorf("store: scan sample: %w", err)
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

// UpdateSampleHash records a new content hash and line count after a sample
// was re-extracted in place.
func (s *Store) UpdateSampleHash(id int64, hash string, lineCount int) error {
	_, err := s.db.Exec("UPDATE samples SET hash = ?, line_count = ? WHERE id = ?", hash, lineCount, id)
	if err != nil {
		return fmt.Errorf("store: update sample %d: %w", id, err)
	}
	return nil
}
