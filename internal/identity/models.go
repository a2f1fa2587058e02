package identity

import (
	"time"

	id "certdedup/pkg/domain"
)

// Record holds one learner's canonical identity fields as stored. Values are
// always written pre-normalized (see internal/normalize); records are never
// deleted, only superseded through the profile-update path.
type Record struct {
	SubjectID        id.SubjectID
	IDCardNormalized string
	NameNormalized   string
	DateOfBirth      time.Time // calendar date; zero when unknown
	PhoneE164        string
	UpdatedAt        time.Time
}

// HasDateOfBirth reports whether the record carries a date of birth.
func (r *Record) HasDateOfBirth() bool { return !r.DateOfBirth.IsZero() }

// Candidate is a raw identity submission to check for collisions. Fields are
// normalized by the engine before any lookup.
type Candidate struct {
	IDCard      string
	Name        string
	DateOfBirth time.Time
	Phone       string
}

// Reason explains which signal produced a duplicate verdict.
type Reason string

const (
	ReasonNone         Reason = "NONE"
	ReasonIDCardMatch  Reason = "ID_CARD_MATCH"
	ReasonNameDOBPhone Reason = "NAME_DOB_PHONE_MATCH"
)

// Outcome is the exact-match verdict for one candidate.
type Outcome struct {
	Duplicate      bool         `json:"duplicate"`
	Reason         Reason       `json:"reason"`
	MatchedSubject id.SubjectID `json:"matched_subject,omitempty"`
}

// DateKey truncates t to its UTC calendar date. Combo matching compares
// dates of birth at day granularity regardless of the wall clock or zone the
// value arrived with.
func DateKey(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
