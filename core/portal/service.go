package portal

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Jomilqt/student-portal/core"
	"github.com/Jomilqt/student-portal/core/student"
	"github.com/Jomilqt/student-portal/core/user"
)

// Views switchable from the presentation layer.
const (
	ViewEnrollment  = "enrollment"
	ViewGrades      = "grades"
	ViewAttendance  = "attendance"
	ViewReports     = "reports"
	ViewManageUsers = "manageUsers"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAccessDenied     = errors.New("access denied: students can only access enrollment")
)

type (
	// Store is the durable mirror of the in-memory collections. There are no
	// partial updates: every mutation rewrites the affected collection in
	// full, and ReplaceAll* must be all-or-nothing.
	Store interface {
		LoadAllUsers() ([]user.User, error)
		ReplaceAllUsers(users []user.User) error
		LoadAllStudents() ([]student.Student, error)
		ReplaceAllStudents(students []student.Student) error

		// The session slot lives outside the two collections and survives
		// process restarts.
		SaveSession(usr user.User) error
		LoadSession() (user.User, bool, error)
		ClearSession() error
	}

	// Service owns the in-memory users and students collections and the
	// current session. It is the single entry point for every mutation; role
	// restrictions are enforced here, not only at the view switch.
	Service struct {
		store Store
		log   core.Logger

		mu       sync.Mutex
		users    []user.User
		students []student.Student
		current  *user.User
	}
)

// NewService loads both collections from the store and restores any session
// left by a previous run.
func NewService(store Store, log core.Logger) (*Service, error) {
	svc := &Service{store: store, log: log}

	var err error
	if svc.users, err = store.LoadAllUsers(); err != nil {
		return nil, err
	}
	if svc.students, err = store.LoadAllStudents(); err != nil {
		return nil, err
	}
	if _, err = svc.RestoreSession(); err != nil {
		return nil, err
	}
	return svc, nil
}

// RestoreSession re-hydrates the session from the durable slot. The stored
// snapshot is trusted as-is; credentials are not re-validated.
func (svc *Service) RestoreSession() (bool, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	usr, ok, err := svc.store.LoadSession()
	if err != nil {
		return false, err
	}
	if ok {
		svc.current = &usr
	}
	return ok, nil
}

// CurrentUser returns the authenticated user, if any.
func (svc *Service) CurrentUser() (user.User, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.current == nil {
		return user.User{}, false
	}
	return *svc.current, true
}

// Login scans the users collection for an exact match on both username and
// password. Unknown usernames and wrong passwords fail the same way.
func (svc *Service) Login(username, password string) (user.User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	username = core.CleanString(username)
	for _, usr := range svc.users {
		if usr.Username == username && usr.CheckPassword(password) {
			if err := svc.store.SaveSession(usr); err != nil {
				return user.User{}, err
			}
			svc.current = &usr
			svc.log.Info("user logged in", usr)
			return usr, nil
		}
	}
	return user.User{}, user.ErrInvalidCredentials
}

// Signup creates a new account. It does not log the new user in.
func (svc *Service) Signup(nu user.NewUser) (user.User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if nu.Password != nu.PasswordConfirm {
		return user.User{}, core.NewValidationError(
			user.ErrPasswordMismatch,
			core.FieldError{Field: "password_confirm", Error: user.ErrPasswordMismatch.Error()},
		)
	}
	if err := nu.Validate(); err != nil {
		return user.User{}, err
	}
	for _, usr := range svc.users {
		if usr.Username == nu.Username {
			return user.User{}, core.NewValidationError(
				user.ErrUsernameExists,
				core.FieldError{Field: "username", Error: user.ErrUsernameExists.Error()},
			)
		}
	}

	usr := user.User{
		ID:        uuid.NewString(),
		Username:  nu.Username,
		Email:     nu.Email,
		Password:  nu.Password,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	svc.users = append(svc.users, usr)
	if err := svc.store.ReplaceAllUsers(svc.users); err != nil {
		svc.users = svc.users[:len(svc.users)-1]
		return user.User{}, err
	}
	svc.log.Info("user created", usr)
	return usr, nil
}

// Logout clears the session and its durable slot.
func (svc *Service) Logout() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.store.ClearSession(); err != nil {
		return err
	}
	svc.current = nil
	return nil
}

// Authorize gates access to a view: the student role is permitted only the
// enrollment view, every other role is permitted everything.
func (svc *Service) Authorize(view string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.authorize(view)
}

func (svc *Service) authorize(view string) error {
	if svc.current == nil {
		return ErrNotAuthenticated
	}
	if svc.current.IsStudent() && view != ViewEnrollment {
		return ErrAccessDenied
	}
	return nil
}

// requireStaff gates the mutations students must never perform, independently
// of the view they were reached from.
func (svc *Service) requireStaff() error {
	if svc.current == nil {
		return ErrNotAuthenticated
	}
	if svc.current.IsStudent() {
		return ErrAccessDenied
	}
	return nil
}

// Enroll registers a new student. An optional profile image is embedded as a
// data URI before the record is constructed.
func (svc *Service) Enroll(ns student.NewStudent) (student.Student, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.authorize(ViewEnrollment); err != nil {
		return student.Student{}, err
	}
	if err := ns.Validate(); err != nil {
		return student.Student{}, err
	}
	for _, st := range svc.students {
		if st.ID == ns.ID {
			return student.Student{}, core.NewValidationError(
				student.ErrIDExists,
				core.FieldError{Field: "id", Error: student.ErrIDExists.Error()},
			)
		}
	}

	st := student.Student{
		ID:             ns.ID,
		Name:           ns.Name,
		Email:          ns.Email,
		Course:         ns.Course,
		EnrollmentDate: ns.EnrollmentDate,
		Grades:         []student.Grade{},
		Attendance:     []student.Attendance{},
	}
	if len(ns.ProfilePic) > 0 {
		st.ProfilePic = core.DataURI(ns.ProfilePic)
	}
	svc.students = append(svc.students, st)
	if err := svc.store.ReplaceAllStudents(svc.students); err != nil {
		svc.students = svc.students[:len(svc.students)-1]
		return student.Student{}, err
	}
	svc.log.Info("student enrolled", map[string]interface{}{"id": st.ID, "course": st.Course})
	return st, nil
}

// AddGrade appends a grade record to the student's grade list.
func (svc *Service) AddGrade(studentID string, ng student.NewGrade) (student.Grade, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStaff(); err != nil {
		return student.Grade{}, err
	}
	if err := ng.Validate(); err != nil {
		return student.Grade{}, err
	}
	idx := svc.findStudent(studentID)
	if idx < 0 {
		return student.Grade{}, student.ErrNotFound
	}

	grade := student.Grade{
		ID:       uuid.NewString(),
		Subject:  ng.Subject,
		Grade:    ng.Grade,
		Semester: ng.Semester,
		Date:     time.Now().UTC(),
	}
	orig := svc.students[idx].Grades
	svc.students[idx].Grades = append(orig, grade)
	if err := svc.store.ReplaceAllStudents(svc.students); err != nil {
		svc.students[idx].Grades = orig
		return student.Grade{}, err
	}
	return grade, nil
}

// AddAttendance appends an attendance record to the student's attendance list.
func (svc *Service) AddAttendance(studentID string, na student.NewAttendance) (student.Attendance, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStaff(); err != nil {
		return student.Attendance{}, err
	}
	if err := na.Validate(); err != nil {
		return student.Attendance{}, err
	}
	idx := svc.findStudent(studentID)
	if idx < 0 {
		return student.Attendance{}, student.ErrNotFound
	}

	rec := student.Attendance{
		ID:         uuid.NewString(),
		Date:       na.Date,
		Status:     na.Status,
		Notes:      na.Notes,
		RecordedAt: time.Now().UTC(),
	}
	orig := svc.students[idx].Attendance
	svc.students[idx].Attendance = append(orig, rec)
	if err := svc.store.ReplaceAllStudents(svc.students); err != nil {
		svc.students[idx].Attendance = orig
		return student.Attendance{}, err
	}
	return rec, nil
}

// DeleteStudent removes a student and all embedded records.
func (svc *Service) DeleteStudent(studentID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStaff(); err != nil {
		return err
	}
	idx := svc.findStudent(studentID)
	if idx < 0 {
		return student.ErrNotFound
	}

	orig := svc.students
	svc.students = append(append([]student.Student{}, orig[:idx]...), orig[idx+1:]...)
	if err := svc.store.ReplaceAllStudents(svc.students); err != nil {
		svc.students = orig
		return err
	}
	svc.log.Info("student deleted", map[string]interface{}{"id": studentID})
	return nil
}

// DeleteUser removes a user account by ID. Deleting the currently
// authenticated user terminates the session.
func (svc *Service) DeleteUser(userID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStaff(); err != nil {
		return err
	}
	idx := -1
	for i, usr := range svc.users {
		if usr.ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return user.ErrNotFound
	}

	orig := svc.users
	svc.users = append(append([]user.User{}, orig[:idx]...), orig[idx+1:]...)
	if err := svc.store.ReplaceAllUsers(svc.users); err != nil {
		svc.users = orig
		return err
	}
	if svc.current != nil && svc.current.ID == userID {
		// drop the in-memory session first: even if clearing the durable slot
		// fails, the session must not keep referencing a deleted account
		svc.current = nil
		svc.log.Warn("current user deleted; session terminated", map[string]interface{}{"id": userID})
		if err := svc.store.ClearSession(); err != nil {
			return err
		}
	}
	return nil
}

// DeleteGrade removes the identified grade record from the student's list.
func (svc *Service) DeleteGrade(studentID, gradeID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStaff(); err != nil {
		return err
	}
	idx := svc.findStudent(studentID)
	if idx < 0 {
		return student.ErrNotFound
	}

	orig := svc.students[idx].Grades
	kept := make([]student.Grade, 0, len(orig))
	for _, g := range orig {
		if g.ID != gradeID {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(orig) {
		return student.ErrGradeNotFound
	}
	svc.students[idx].Grades = kept
	if err := svc.store.ReplaceAllStudents(svc.students); err != nil {
		svc.students[idx].Grades = orig
		return err
	}
	return nil
}

// DeleteAttendance removes the identified attendance record from the
// student's list.
func (svc *Service) DeleteAttendance(studentID, recordID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStaff(); err != nil {
		return err
	}
	idx := svc.findStudent(studentID)
	if idx < 0 {
		return student.ErrNotFound
	}

	orig := svc.students[idx].Attendance
	kept := make([]student.Attendance, 0, len(orig))
	for _, rec := range orig {
		if rec.ID != recordID {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(orig) {
		return student.ErrAttendanceNotFound
	}
	svc.students[idx].Attendance = kept
	if err := svc.store.ReplaceAllStudents(svc.students); err != nil {
		svc.students[idx].Attendance = orig
		return err
	}
	return nil
}

// Students returns a copy of the in-memory students collection.
func (svc *Service) Students() []student.Student {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]student.Student(nil), svc.students...)
}

// Users returns a copy of the in-memory users collection.
func (svc *Service) Users() []user.User {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]user.User(nil), svc.users...)
}

func (svc *Service) findStudent(id string) int {
	for i, st := range svc.students {
		if st.ID == id {
			return i
		}
	}
	return -1
}
