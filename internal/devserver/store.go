// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/helix-tui/internal/model"
)

// ErrNotFound is returned when a sequence id is unknown.
var ErrNotFound = errors.New("not found")

// Store persists chat history and sequences in SQLite.
type Store struct {
	db *sql.DB

	// writeMu serializes read-modify-write step updates.
	writeMu sync.Mutex

	now func() time.Time
}

// OpenStore opens (creating if needed) the database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		sender TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id);

	CREATE TABLE IF NOT EXISTS sequences (
		sequence_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		steps_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sequences_user ON sequences(user_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendMessages stores msgs for userID in order, in one transaction.
func (s *Store) AppendMessages(ctx context.Context, userID string, msgs ...model.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UnixNano()
	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (user_id, message, sender, created_at) VALUES (?, ?, ?, ?)`,
			userID, m.Text, m.Sender.String(), now,
		); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return tx.Commit()
}

// Messages returns the stored history for userID, oldest first.
func (s *Store) Messages(ctx context.Context, userID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message, sender FROM messages WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	out := []model.Message{}
	for rows.Next() {
		var text, sender string
		if err := rows.Scan(&text, &sender); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, model.Message{Text: text, Sender: model.ParseSender(sender)})
	}
	return out, rows.Err()
}

// SaveSequence inserts or replaces a sequence owned by userID.
func (s *Store) SaveSequence(ctx context.Context, userID string, seq model.Sequence) error {
	data, err := json.Marshal(seq.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sequences (sequence_id, user_id, steps_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sequence_id) DO UPDATE SET
			steps_json = excluded.steps_json,
			updated_at = excluded.updated_at
	`, seq.ID, userID, string(data), now, now)
	if err != nil {
		return fmt.Errorf("save sequence: %w", err)
	}
	return nil
}

// Sequences returns userID's sequences, newest first. The first one is the
// active sequence.
func (s *Store) Sequences(ctx context.Context, userID string) ([]model.Sequence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence_id, steps_json FROM sequences
		WHERE user_id = ? ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	out := []model.Sequence{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		var steps []model.Step
		if err := json.Unmarshal([]byte(data), &steps); err != nil {
			return nil, fmt.Errorf("decode steps of %s: %w", id, err)
		}
		out = append(out, model.NewSequence(id, steps))
	}
	return out, rows.Err()
}

// ActiveSequence returns the newest sequence for userID.
func (s *Store) ActiveSequence(ctx context.Context, userID string) (model.Sequence, bool, error) {
	seqs, err := s.Sequences(ctx, userID)
	if err != nil || len(seqs) == 0 {
		return model.Sequence{}, false, err
	}
	return seqs[0], true, nil
}

// UpdateStep sets one field of one step in a stored sequence.
func (s *Store) UpdateStep(ctx context.Context, sequenceID string, stepNumber int, field model.StepField, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var userID, data string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, steps_json FROM sequences WHERE sequence_id = ?`, sequenceID,
	).Scan(&userID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sequence %s: %w", sequenceID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get sequence: %w", err)
	}

	var steps []model.Step
	if err := json.Unmarshal([]byte(data), &steps); err != nil {
		return fmt.Errorf("decode steps: %w", err)
	}
	seq, err := model.NewSequence(sequenceID, steps).WithEdit(stepNumber, field, value)
	if err != nil {
		return err
	}
	return s.SaveSequence(ctx, userID, seq)
}

// DeleteHistory removes every message and sequence owned by userID.
func (s *Store) DeleteHistory(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sequences WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete sequences: %w", err)
	}
	return tx.Commit()
}
