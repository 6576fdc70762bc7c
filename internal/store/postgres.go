package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists session and user documents in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			session_date TIMESTAMPTZ NOT NULL,
			therapist_id TEXT NOT NULL,
			patient_id TEXT NOT NULL,
			session_type TEXT NOT NULL DEFAULT '',
			transcript TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			key_points TEXT[] NOT NULL DEFAULT '{}',
			insights TEXT[] NOT NULL DEFAULT '{}',
			mood TEXT NOT NULL DEFAULT '',
			progress TEXT NOT NULL DEFAULT '',
			goals TEXT[] NOT NULL DEFAULT '{}',
			warnings TEXT[] NOT NULL DEFAULT '{}',
			journaling_prompt TEXT NOT NULL DEFAULT '',
			journaling_response TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'scheduled',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_therapist_date ON sessions (therapist_id, session_date);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT ''
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, record SessionRecord) (string, error) {
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (
			id, session_date, therapist_id, patient_id, session_type,
			transcript, summary, key_points, insights,
			mood, progress, goals, warnings,
			journaling_prompt, journaling_response, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		record.ID,
		record.SessionDate,
		record.TherapistID,
		record.PatientID,
		record.Type,
		record.Transcript,
		record.Summary,
		record.KeyPoints,
		record.Insights,
		record.Mood,
		record.Progress,
		record.Goals,
		record.Warnings,
		record.JournalingPrompt,
		record.JournalingResponse,
		record.Status,
		record.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return record.ID, nil
}

func (s *PostgresStore) SessionsByTherapist(ctx context.Context, therapistID string) ([]SessionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_date, therapist_id, patient_id, session_type,
			transcript, summary, key_points, insights,
			mood, progress, goals, warnings,
			journaling_prompt, journaling_response, status, created_at
		 FROM sessions WHERE therapist_id=$1`,
		therapistID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(
			&r.ID, &r.SessionDate, &r.TherapistID, &r.PatientID, &r.Type,
			&r.Transcript, &r.Summary, &r.KeyPoints, &r.Insights,
			&r.Mood, &r.Progress, &r.Goals, &r.Warnings,
			&r.JournalingPrompt, &r.JournalingResponse, &r.Status, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.FirstName, &u.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) PutUser(ctx context.Context, user User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name`,
		user.ID, user.FirstName, user.LastName,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
