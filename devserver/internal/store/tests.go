package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Cowspump/some-diploma-stuff/client"
)

// AddQuestion stores a question; options are kept as a JSON array.
func (s *Store) AddQuestion(ctx context.Context, text string, options []client.AnswerOption) (int64, error) {
	raw, err := json.Marshal(options)
	if err != nil {
		return 0, fmt.Errorf("encode options: %w", err)
	}
	id, err := s.insert(ctx, `INSERT INTO questions (text, options) VALUES (?, ?)`, text, string(raw))
	if err != nil {
		return 0, fmt.Errorf("add question: %w", err)
	}
	return id, nil
}

// Questions returns all questions in insertion order.
func (s *Store) Questions(ctx context.Context) ([]client.Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, options FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := []client.Question{}
	for rows.Next() {
		var (
			q   client.Question
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &q.Text, &raw); err != nil {
			return nil, err
		}
		q.ID = int(id)
		if err := json.Unmarshal([]byte(raw), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options of question %d: %w", id, err)
		}
		if q.Options == nil {
			q.Options = []client.AnswerOption{}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// CountQuestions reports how many questions exist.
func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// DeleteQuestion removes a question by id.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "questions", id)
}

// AddTestResult stores a computed test total for userID.
func (s *Store) AddTestResult(ctx context.Context, userID int64, total int) (int64, error) {
	id, err := s.insert(ctx,
		`INSERT INTO test_results (user_id, total_score, created_at) VALUES (?, ?, ?)`,
		userID, total, s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("add test result: %w", err)
	}
	return id, nil
}

// TestResults returns all results of userID, newest first.
func (s *Store) TestResults(ctx context.Context, userID int64) ([]client.TestResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, total_score, created_at FROM test_results
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	defer rows.Close()

	out := []client.TestResult{}
	for rows.Next() {
		var (
			r       client.TestResult
			id      int64
			created string
		)
		if err := rows.Scan(&id, &r.TotalScore, &created); err != nil {
			return nil, err
		}
		r.ID = int(id)
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
