package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jward/paradigm/internal/features"
)

const featureColumns = `f.language, f.has_threads, f.has_locks, f.has_channels, f.has_actors, f.has_async,
	f.lock_density, f.channel_density, f.actor_density, f.async_density, f.concurrency_score`

// InsertFeatures stores the feature row for a sample, replacing any previous
// row.
func (s *Store) InsertFeatures(sampleID int64, v features.Vector) error {
	if err := insertFeaturesExec(s.db, sampleID, v); err != nil {
		return fmt.Errorf("store: insert features for sample %d: %w", sampleID, err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertFeaturesExec(db execer, sampleID int64, v features.Vector) error {
	_, err := db.Exec(
		`INSERT OR REPLACE INTO features (sample_id, language, has_threads, has_locks, has_channels, has_actors, has_async,
			lock_density, channel_density, actor_density, async_density, concurrency_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sampleID, v.Language, v.HasThreads, v.HasLocks, v.HasChannels, v.HasActors, v.HasAsync,
		v.LockDensity, v.ChannelDensity, v.ActorDensity, v.AsyncDensity, v.ConcurrencyScore,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVector(row scanner, prefix ...any) (features.Vector, error) {
	var v features.Vector
	dest := append(prefix,
		&v.Language, &v.HasThreads, &v.HasLocks, &v.HasChannels, &v.HasActors, &v.HasAsync,
		&v.LockDensity, &v.ChannelDensity, &v.ActorDensity, &v.AsyncDensity, &v.ConcurrencyScore,
	)
	err := row.Scan(dest...)
	return v, err
}

// FeaturesBySample returns the feature row of a sample, or nil if none.
func (s *Store) FeaturesBySample(sampleID int64) (*features.Vector, error) {
	v, err := scanVector(s.db.QueryRow("SELECT "+featureColumns+" FROM features f WHERE f.sample_id = ?", sampleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: features for sample %d: %w", sampleID, err)
	}
	return &v, nil
}

// FeatureRows returns the feature rows of all samples, or only those declared
// with one of languages (case-insensitive), ordered by sample path.
func (s *Store) FeatureRows(languages ...string) ([]FeatureRow, error) {
	query := "SELECT s.id, s.path, " + featureColumns + " FROM features f JOIN samples s ON s.id = f.sample_id"
	var args []any
	if len(languages) > 0 {
		query += " WHERE lower(f.language) IN (" + placeholderList(len(languages)) + ")"
		args = lowerArgs(languages)
	}
	query += " ORDER BY s.path"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: feature rows: %w", err)
	}
	defer rows.Close()

	var out []FeatureRow
	for rows.Next() {
		var r FeatureRow
		v, err := scanVector(rows, &r.SampleID, &r.Path)
		if err != nil {
			return nil, fmt.Errorf("store: scan feature row: %w", err)
		}
		r.Vector = v
		out = append(out, r)
	}
	return out, rows.Err()
}

// LanguageCounts returns the number of feature rows per declared language,
// ordered by count descending then language.
func (s *Store) LanguageCounts() ([]LanguageCount, error) {
	rows, err := s.db.Query(
		"SELECT language, COUNT(*) AS n FROM features GROUP BY language ORDER BY n DESC, language",
	)
	if err != nil {
		return nil, fmt.Errorf("store: language counts: %w", err)
	}
	defer rows.Close()
	var out []LanguageCount
	for rows.Next() {
		var lc LanguageCount
		if err := rows.Scan(&lc.Language, &lc.Count); err != nil {
			return nil, fmt.Errorf("store: scan language count: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}
