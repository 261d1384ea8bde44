package store

import (
	"fmt"
)

// CommitBatch writes all buffered data from a BatchedStore within a single
// transaction. Replaced samples are deleted first; fake (negative) sample IDs
// are then remapped to real AUTOINCREMENT IDs and every buffered feature row
// is rewritten to reference the real ID.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range batch.Replaced {
		if err := deleteSampleTx(tx, id); err != nil {
			return fmt.Errorf("store: commit batch: %w", err)
		}
	}

	fakeToReal := make(map[int64]int64, len(batch.Samples))
	for _, smp := range batch.Samples {
		res, err := tx.Exec(
			"INSERT INTO samples (path, language, hash, line_count, syntax_errors, last_indexed) VALUES (?, ?, ?, ?, ?, ?)",
			smp.Path, smp.Language, smp.Hash, smp.LineCount, smp.SyntaxErrors, smp.LastIndexed,
		)
		if err != nil {
			return fmt.Errorf("store: commit batch: sample %q: %w", smp.Path, err)
		}
		realID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("store: commit batch: last insert id: %w", err)
		}
		fakeToReal[smp.ID] = realID
	}

	for _, f := range batch.Features {
		id := f.SampleID
		if id < 0 {
			realID, ok := fakeToReal[id]
			if !ok {
				return fmt.Errorf("store: commit batch: features reference sample_id=%d not in batch (have %d samples)", id, len(batch.Samples))
			}
			id = realID
		}
		if err := insertFeaturesExec(tx, id, f.Vector); err != nil {
			return fmt.Errorf("store: commit batch: features for sample %d: %w", id, err)
		}
	}

	return tx.Commit()
}
