package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lcavaliere/horizon/internal/store"
	"github.com/lcavaliere/horizon/internal/summarize"
)

// Request carries everything one ingestion run needs: the recording's object
// key plus the caller-supplied scheduling and identity fields.
type Request struct {
	S3Key             string `json:"s3_key"`
	SelectedDate      string `json:"selected_date"`
	SelectedHour      string `json:"selected_hour"`
	SelectedMinute    string `json:"selected_minute"`
	SelectedTherapist string `json:"selected_therapist"`
	UserID            string `json:"user_id"`
}

// Validate checks all required fields and schedule parseability before any
// external call is made.
func (r Request) Validate() error {
	required := []struct {
		name, value string
	}{
		{"s3_key", r.S3Key},
		{"selected_date", r.SelectedDate},
		{"selected_hour", r.SelectedHour},
		{"selected_minute", r.SelectedMinute},
		{"selected_therapist", r.SelectedTherapist},
		{"user_id", r.UserID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &Error{
				Stage: StageValidating,
				Kind:  KindValidation,
				Err:   fmt.Errorf("missing required field %s", f.name),
			}
		}
	}
	if _, _, _, err := r.schedule(); err != nil {
		return &Error{Stage: StageValidating, Kind: KindValidation, Err: err}
	}
	return nil
}

func (r Request) schedule() (time.Time, int, int, error) {
	day, err := parseDay(r.SelectedDate)
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	hour, err := strconv.Atoi(strings.TrimSpace(r.SelectedHour))
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, 0, 0, fmt.Errorf("selected_hour %q is not a valid hour", r.SelectedHour)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(r.SelectedMinute))
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, 0, 0, fmt.Errorf("selected_minute %q is not a valid minute", r.SelectedMinute)
	}
	return day, hour, minute, nil
}

func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("selected_date %q is not a valid date", value)
}

// BuildRecord assembles the persistable session document plus the zero-padded
// display time. The authoritative timestamp is built from the numeric hour and
// minute, never from the padded string.
func BuildRecord(r Request, transcript string, summary summarize.Summary) (store.SessionRecord, string, error) {
	day, hour, minute, err := r.schedule()
	if err != nil {
		return store.SessionRecord{}, "", &Error{Stage: StageValidating, Kind: KindValidation, Err: err}
	}

	sessionDate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	displayTime := fmt.Sprintf("%02d:%02d", hour, minute)

	keyPoints := summary.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}
	insights := summary.Insights
	if insights == nil {
		insights = []string{}
	}

	record := store.SessionRecord{
		SessionDate:        sessionDate,
		TherapistID:        r.SelectedTherapist,
		PatientID:          r.UserID,
		Transcript:         transcript,
		Summary:            summary.Text,
		KeyPoints:          keyPoints,
		Insights:           insights,
		Mood:               "Neutral",
		Progress:           "Upcoming",
		Goals:              []string{},
		Warnings:           []string{},
		JournalingPrompt:   "",
		JournalingResponse: "",
		Status:             "scheduled",
	}
	return record, displayTime, nil
}
