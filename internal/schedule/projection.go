package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lcavaliere/horizon/internal/store"
)

const unknownPatient = "Unknown Patient"

// Entry is the read-time projection of a session record shown on the
// therapist's schedule. It is recomputed on every read, never stored.
type Entry struct {
	ID          string    `json:"id"`
	SessionDate time.Time `json:"session_date"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Time        string    `json:"time"`
}

// Filter narrows a therapist's schedule. Zero values are no-ops and the three
// predicates combine with AND.
type Filter struct {
	Status string
	Search string
	Day    *time.Time
}

// Service builds schedule projections from the session store.
type Service struct {
	sessions store.Store
}

func NewService(sessions store.Store) *Service {
	return &Service{sessions: sessions}
}

// List returns the therapist's sessions, filtered and sorted ascending by
// session timestamp.
func (s *Service) List(ctx context.Context, therapistID string, filter Filter) ([]Entry, error) {
	records, err := s.sessions.SessionsByTherapist(ctx, therapistID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entry := Entry{
			ID:          r.ID,
			SessionDate: r.SessionDate,
			PatientID:   r.PatientID,
			PatientName: s.patientName(ctx, r.PatientID),
			Type:        r.Type,
			Status:      r.Status,
			Time:        r.SessionDate.Format("15:04"),
		}
		if entry.Type == "" {
			entry.Type = "Video Session"
		}
		if entry.Status == "" {
			entry.Status = "upcoming"
		}
		if matches(entry, filter) {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SessionDate.Before(entries[j].SessionDate)
	})
	return entries, nil
}

func (s *Service) patientName(ctx context.Context, patientID string) string {
	user, err := s.sessions.GetUser(ctx, patientID)
	if err != nil {
		// A degraded lookup renders the same as a missing patient.
		return unknownPatient
	}
	if user.FirstName == "" || user.LastName == "" {
		return unknownPatient
	}
	return user.FirstName + " " + user.LastName
}

func matches(e Entry, f Filter) bool {
	if f.Status != "" && f.Status != "all" && e.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		name := strings.ToLower(e.PatientName)
		kind := strings.ToLower(e.Type)
		if !strings.Contains(name, q) && !strings.Contains(kind, q) {
			return false
		}
	}
	if f.Day != nil {
		y1, m1, d1 := e.SessionDate.Date()
		y2, m2, d2 := f.Day.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	return true
}
