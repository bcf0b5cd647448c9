package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LogAI records one assistant exchange.
func (s *Store) LogAI(ctx context.Context, userID int64, request, response string) error {
	_, err := s.insert(ctx,
		`INSERT INTO ai_logs (user_id, request, response, created_at) VALUES (?, ?, ?, ?)`,
		userID, request, response, s.timestamp())
	if err != nil {
		return fmt.Errorf("log ai exchange: %w", err)
	}
	return nil
}

// CountAILogs reports how many exchanges userID has had.
func (s *Store) CountAILogs(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_logs WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ai logs: %w", err)
	}
	return n, nil
}

// SaveSummary stores a new history summary for userID.
func (s *Store) SaveSummary(ctx context.Context, userID int64, text string) error {
	_, err := s.insert(ctx,
		`INSERT INTO ai_summaries (user_id, summary_text, created_at) VALUES (?, ?, ?)`,
		userID, text, s.timestamp())
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

// LatestSummary returns the newest summary of userID or "" when none exists.
func (s *Store) LatestSummary(ctx context.Context, userID int64) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary_text FROM ai_summaries WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest summary: %w", err)
	}
	return text, nil
}
