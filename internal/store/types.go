package store

import (
	"context"
	"errors"
	"time"
)

// SessionRecord is the persisted document for one therapy session and its
// derived artifacts. List fields are always non-nil, even when empty.
type SessionRecord struct {
	ID                 string    `json:"id"`
	SessionDate        time.Time `json:"session_date"`
	TherapistID        string    `json:"therapist_id"`
	PatientID          string    `json:"patient_id"`
	Type               string    `json:"type"`
	Transcript         string    `json:"transcript"`
	Summary            string    `json:"summary"`
	KeyPoints          []string  `json:"key_points"`
	Insights           []string  `json:"insights"`
	Mood               string    `json:"mood"`
	Progress           string    `json:"progress"`
	Goals              []string  `json:"goals"`
	Warnings           []string  `json:"warnings"`
	JournalingPrompt   string    `json:"journaling_prompt"`
	JournalingResponse string    `json:"journaling_response"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// User is the patient/therapist document referenced by session records.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

var ErrUserNotFound = errors.New("user not found")

// Store persists session records and resolves user documents.
type Store interface {
	// CreateSession assigns a fresh id to the record and persists it.
	CreateSession(ctx context.Context, record SessionRecord) (string, error)
	SessionsByTherapist(ctx context.Context, therapistID string) ([]SessionRecord, error)
	GetUser(ctx context.Context, id string) (User, error)
	PutUser(ctx context.Context, user User) error
	Close() error
}
