package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Cowspump/some-diploma-stuff/client"
)

// Journal is a mood entry together with its owner.
type Journal struct {
	client.JournalEntry
	UserID int64
}

// AddJournal stores a mood entry for userID.
func (s *Store) AddJournal(ctx context.Context, userID int64, score int, note *string) (int64, error) {
	id, err := s.insert(ctx,
		`INSERT INTO journals (user_id, wellbeing_score, note_text, created_at) VALUES (?, ?, ?, ?)`,
		userID, score, note, s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("add journal: %w", err)
	}
	return id, nil
}

// RecentJournals returns up to limit entries of userID, newest first.
func (s *Store) RecentJournals(ctx context.Context, userID int64, limit int) ([]client.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, wellbeing_score, note_text, created_at FROM journals
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	out := []client.JournalEntry{}
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j.JournalEntry)
	}
	return out, rows.Err()
}

// JournalByID returns one entry regardless of owner.
func (s *Store) JournalByID(ctx context.Context, id int64) (*Journal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, wellbeing_score, note_text, created_at FROM journals WHERE id = ?`, id)
	j, err := scanJournal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

// DeleteJournal removes an entry by id.
func (s *Store) DeleteJournal(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "journals", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJournal(sc scanner) (*Journal, error) {
	var (
		j       Journal
		id      int64
		note    sql.NullString
		created string
	)
	if err := sc.Scan(&id, &j.UserID, &j.Score, &note, &created); err != nil {
		return nil, err
	}
	j.ID = int(id)
	if note.Valid {
		j.Note = &note.String
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	j.CreatedAt = t
	return &j, nil
}
