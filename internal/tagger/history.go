package tagger

import (
	"fmt"

	"iqdbtag/internal/database/sqlc"
)

// GetHistory returns the most recent operations, newest first.
func (s *TaggerService) GetHistory(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// GetStats returns the number of cached rows per table.
func (s *TaggerService) GetStats() (map[string]int64, error) {
	counts, err := s.database.Counts()
	if err != nil {
		return nil, fmt.Errorf("counting cache rows: %w", err)
	}
	return counts, nil
}
