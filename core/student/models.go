package student

import (
	"errors"
	"time"

	"github.com/Jomilqt/student-portal/core"
)

var (
	ErrNotFound           = errors.New("student not found")
	ErrIDExists           = errors.New("a student with this ID already exists")
	ErrGradeNotFound      = errors.New("grade record not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// Grade is a single graded subject, embedded in its owning Student.
// Each record carries its own generated ID so deletion targets a stable
// identity rather than a position in the slice.
type Grade struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Grade    string    `json:"grade"`
	Semester string    `json:"semester"`
	Date     time.Time `json:"date"` // UTC
}

// Attendance is a single attendance entry, embedded in its owning Student.
type Attendance struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recordedAt"` // UTC
}

// Student is an enrolled student. The ID is supplied at enrollment (a school
// registration number, not generated) and must be unique across the roster.
type Student struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Course         string       `json:"course"`
	EnrollmentDate time.Time    `json:"enrollmentDate"`
	Grades         []Grade      `json:"grades"`
	Attendance     []Attendance `json:"attendance"`
	ProfilePic     string       `json:"profilePic,omitempty"` // base64 data URI
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	ID             string    `json:"id" validate:"required,alphanum_"`
	Name           string    `json:"name" validate:"required"`
	Email          string    `json:"email" validate:"required,email"`
	Course         string    `json:"course" validate:"required"`
	EnrollmentDate time.Time `json:"enrollmentDate" validate:"required"`
	ProfilePic     []byte    `json:"-"`
}

func (ns *NewStudent) Validate() error {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Course = core.CleanString(ns.Course)
	return core.Validate.Struct(ns)
}

// NewGrade contains information needed to record a Grade.
type NewGrade struct {
	Subject  string `json:"subject" validate:"required"`
	Grade    string `json:"grade" validate:"required,lettergrade"`
	Semester string `json:"semester" validate:"required"`
}

func (ng *NewGrade) Validate() error {
	ng.Subject = core.CleanString(ng.Subject)
	ng.Grade = core.CleanString(ng.Grade)
	ng.Semester = core.CleanString(ng.Semester)
	return core.Validate.Struct(ng)
}

// NewAttendance contains information needed to record an Attendance entry.
// Status is free text by design; "present", "absent" and "late" are the
// conventional values.
type NewAttendance struct {
	Date   time.Time `json:"date" validate:"required"`
	Status string    `json:"status" validate:"required"`
	Notes  string    `json:"notes"`
}

func (na *NewAttendance) Validate() error {
	na.Status = core.CleanString(na.Status, true /* lower */)
	na.Notes = core.CleanString(na.Notes)
	return core.Validate.Struct(na)
}
