// Package domain defines typed identifiers shared across modules.
//
// Each ID is a distinct uuid-backed type so that a subject ID can never be
// passed where a course ID is expected. Conversions to and from uuid.UUID
// are explicit.
package domain

import "github.com/google/uuid"

// SubjectID identifies a learner account whose identity fields are tracked
// for deduplication.
type SubjectID uuid.UUID

// CourseID identifies the course a certificate candidate belongs to.
type CourseID uuid.UUID

// CheckID identifies one persisted dedup adjudication result.
type CheckID uuid.UUID

func (id SubjectID) String() string { return uuid.UUID(id).String() }
func (id CourseID) String() string  { return uuid.UUID(id).String() }
func (id CheckID) String() string   { return uuid.UUID(id).String() }

func (id SubjectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CourseID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CheckID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// ParseSubjectID parses the canonical string form of a SubjectID.
func ParseSubjectID(s string) (SubjectID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SubjectID{}, err
	}
	return SubjectID(u), nil
}

// ParseCourseID parses the canonical string form of a CourseID.
func ParseCourseID(s string) (CourseID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CourseID{}, err
	}
	return CourseID(u), nil
}

// ParseCheckID parses the canonical string form of a CheckID.
func ParseCheckID(s string) (CheckID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CheckID{}, err
	}
	return CheckID(u), nil
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as their
// canonical uuid string in JSON payloads.
func (id SubjectID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id CourseID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id CheckID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *SubjectID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = SubjectID(u)
	return nil
}

func (id *CourseID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = CourseID(u)
	return nil
}

func (id *CheckID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = CheckID(u)
	return nil
}
