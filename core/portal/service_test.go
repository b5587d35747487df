package portal

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jomilqt/student-portal/core"
	"github.com/Jomilqt/student-portal/core/student"
	"github.com/Jomilqt/student-portal/core/user"
	logsvc "github.com/Jomilqt/student-portal/services/logger"
	"github.com/Jomilqt/student-portal/storage/boltdb"
)

func setup(t *testing.T) (*Service, *boltdb.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.db")
	store, err := boltdb.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, err := NewService(store, testLogger())
	require.NoError(t, err)
	return svc, store, path
}

func testLogger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))
}

var errPersist = errors.New("disk full")

// flakyStore wraps a healthy store and fails selected operations on demand.
type flakyStore struct {
	Store
	failUsers    bool
	failStudents bool
	failSession  bool
}

func (fs *flakyStore) ReplaceAllUsers(users []user.User) error {
	if fs.failUsers {
		return errPersist
	}
	return fs.Store.ReplaceAllUsers(users)
}

func (fs *flakyStore) ReplaceAllStudents(students []student.Student) error {
	if fs.failStudents {
		return errPersist
	}
	return fs.Store.ReplaceAllStudents(students)
}

func (fs *flakyStore) ClearSession() error {
	if fs.failSession {
		return errPersist
	}
	return fs.Store.ClearSession()
}

func setupFlaky(t *testing.T) (*Service, *flakyStore, *boltdb.Store) {
	t.Helper()
	store, err := boltdb.Open(filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fs := &flakyStore{Store: store}
	svc, err := NewService(fs, testLogger())
	require.NoError(t, err)
	return svc, fs, store
}

func newUser(uname, role string) user.NewUser {
	return user.NewUser{
		Username:        uname,
		Email:           uname + "@test.test",
		Password:        "s3cret",
		PasswordConfirm: "s3cret",
		Role:            role,
	}
}

func newStudent(id string) student.NewStudent {
	return student.NewStudent{
		ID:             id,
		Name:           "Student " + id,
		Email:          id + "@test.test",
		Course:         "Biology",
		EnrollmentDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func loginStaff(t *testing.T, svc *Service) user.User {
	t.Helper()
	usr, err := svc.Signup(newUser("staff_1", user.RoleTeacher))
	require.NoError(t, err)
	_, err = svc.Login("staff_1", "s3cret")
	require.NoError(t, err)
	return usr
}

func TestService_signupAndLogin(t *testing.T) {
	svc, _, _ := setup(t)

	created, err := svc.Signup(newUser("asha_k", user.RoleAdmin))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "asha_k", created.Username)

	// signup does not authenticate
	_, ok := svc.CurrentUser()
	assert.False(t, ok)

	logged, err := svc.Login("asha_k", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, logged.ID)

	curr, ok := svc.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, created.ID, curr.ID)
}

func TestService_loginFailures(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Signup(newUser("asha_k", user.RoleAdmin))
	require.NoError(t, err)

	// wrong password and unknown username fail identically
	_, wrongPwd := svc.Login("asha_k", "nope")
	_, unknown := svc.Login("who", "nope")
	assert.ErrorIs(t, wrongPwd, user.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, user.ErrInvalidCredentials)

	_, ok := svc.CurrentUser()
	assert.False(t, ok)
}

func TestService_signupValidation(t *testing.T) {
	svc, _, _ := setup(t)

	nu := newUser("asha_k", user.RoleAdmin)
	nu.PasswordConfirm = "other"
	_, err := svc.Signup(nu)
	assert.ErrorIs(t, err, user.ErrPasswordMismatch)

	_, err = svc.Signup(newUser("asha_k", user.RoleAdmin))
	require.NoError(t, err)

	// duplicate username, case-sensitive exact match
	_, err = svc.Signup(newUser("asha_k", user.RoleTeacher))
	assert.ErrorIs(t, err, user.ErrUsernameExists)
	_, err = svc.Signup(newUser("Asha_k", user.RoleTeacher))
	assert.NoError(t, err)

	nu = newUser("bad_role", "principal")
	_, err = svc.Signup(nu)
	assert.Error(t, err)

	assert.Len(t, svc.Users(), 2)
}

func TestService_sessionPersistence(t *testing.T) {
	svc, store, _ := setup(t)

	created, err := svc.Signup(newUser("asha_k", user.RoleTeacher))
	require.NoError(t, err)
	_, err = svc.Login("asha_k", "s3cret")
	require.NoError(t, err)

	// a fresh service over the same store restores the session as-is
	reloaded, err := NewService(store, testLogger())
	require.NoError(t, err)
	curr, ok := reloaded.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, created.ID, curr.ID)

	require.NoError(t, reloaded.Logout())
	reloaded, err = NewService(store, testLogger())
	require.NoError(t, err)
	_, ok = reloaded.CurrentUser()
	assert.False(t, ok)
}

func TestService_enroll(t *testing.T) {
	svc, store, _ := setup(t)
	loginStaff(t, svc)

	ids := []string{"S001", "S002", "S003"}
	for _, id := range ids {
		_, err := svc.Enroll(newStudent(id))
		require.NoError(t, err)
	}

	// the durable mirror holds exactly the enrolled set
	persisted, err := store.LoadAllStudents()
	require.NoError(t, err)
	gotIDs := make([]string, 0, len(persisted))
	for _, st := range persisted {
		gotIDs = append(gotIDs, st.ID)
	}
	assert.ElementsMatch(t, ids, gotIDs)

	// duplicate ID is rejected and the collection is unchanged
	_, err = svc.Enroll(newStudent("S002"))
	assert.ErrorIs(t, err, student.ErrIDExists)
	assert.Len(t, svc.Students(), 3)
}

func TestService_enrollProfilePic(t *testing.T) {
	svc, _, _ := setup(t)
	loginStaff(t, svc)

	ns := newStudent("S001")
	ns.ProfilePic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	st, err := svc.Enroll(ns)
	require.NoError(t, err)
	assert.Contains(t, st.ProfilePic, "data:image/png;base64,")
}

func TestService_grades(t *testing.T) {
	svc, _, _ := setup(t)
	loginStaff(t, svc)

	_, err := svc.Enroll(newStudent("S001"))
	require.NoError(t, err)

	_, err = svc.AddGrade("missing", student.NewGrade{Subject: "Botany", Grade: "A", Semester: "Fall 2025"})
	assert.ErrorIs(t, err, student.ErrNotFound)

	g1, err := svc.AddGrade("S001", student.NewGrade{Subject: "Botany", Grade: "A", Semester: "Fall 2025"})
	require.NoError(t, err)
	g2, err := svc.AddGrade("S001", student.NewGrade{Subject: "Zoology", Grade: "b", Semester: "Fall 2025"})
	require.NoError(t, err)
	assert.NotEqual(t, g1.ID, g2.ID)

	// letter grades outside A..F are rejected at the gate
	_, err = svc.AddGrade("S001", student.NewGrade{Subject: "Botany", Grade: "E", Semester: "Fall 2025"})
	assert.Error(t, err)

	// deletion targets the record's stable ID, not its position
	require.NoError(t, svc.DeleteGrade("S001", g1.ID))
	assert.ErrorIs(t, svc.DeleteGrade("S001", g1.ID), student.ErrGradeNotFound)

	st := svc.Students()[0]
	if assert.Len(t, st.Grades, 1) {
		assert.Equal(t, g2.ID, st.Grades[0].ID)
	}
}

func TestService_attendance(t *testing.T) {
	svc, _, _ := setup(t)
	loginStaff(t, svc)

	_, err := svc.Enroll(newStudent("S001"))
	require.NoError(t, err)

	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.AddAttendance("missing", student.NewAttendance{Date: day, Status: "present"})
	assert.ErrorIs(t, err, student.ErrNotFound)

	rec, err := svc.AddAttendance("S001", student.NewAttendance{Date: day, Status: "Present", Notes: "on time"})
	require.NoError(t, err)
	assert.Equal(t, "present", rec.Status) // status is normalized to lower case

	require.NoError(t, svc.DeleteAttendance("S001", rec.ID))
	assert.ErrorIs(t, svc.DeleteAttendance("S001", rec.ID), student.ErrAttendanceNotFound)
}

func TestService_deleteStudent(t *testing.T) {
	svc, store, _ := setup(t)
	loginStaff(t, svc)

	_, err := svc.Enroll(newStudent("S001"))
	require.NoError(t, err)
	_, err = svc.Enroll(newStudent("S002"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteStudent("missing"), student.ErrNotFound)
	require.NoError(t, svc.DeleteStudent("S001"))

	persisted, err := store.LoadAllStudents()
	require.NoError(t, err)
	if assert.Len(t, persisted, 1) {
		assert.Equal(t, "S002", persisted[0].ID)
	}
}

func TestService_deleteUser(t *testing.T) {
	svc, store, _ := setup(t)

	admin, err := svc.Signup(newUser("admin_1", user.RoleAdmin))
	require.NoError(t, err)
	other, err := svc.Signup(newUser("other_1", user.RoleTeacher))
	require.NoError(t, err)
	_, err = svc.Login("admin_1", "s3cret")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteUser("missing"), user.ErrNotFound)

	require.NoError(t, svc.DeleteUser(other.ID))
	assert.Len(t, svc.Users(), 1)
	_, ok := svc.CurrentUser()
	assert.True(t, ok)

	// deleting the authenticated user terminates the session
	require.NoError(t, svc.DeleteUser(admin.ID))
	_, ok = svc.CurrentUser()
	assert.False(t, ok)
	_, ok, err = store.LoadSession()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_roleGate(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Signup(newUser("stud_1", user.RoleStudent))
	require.NoError(t, err)

	// unauthenticated: everything is denied
	assert.ErrorIs(t, svc.Authorize(ViewEnrollment), ErrNotAuthenticated)
	_, err = svc.Enroll(newStudent("S001"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.Login("stud_1", "s3cret")
	require.NoError(t, err)

	// the student role only gets the enrollment view
	assert.NoError(t, svc.Authorize(ViewEnrollment))
	for _, view := range []string{ViewGrades, ViewAttendance, ViewReports, ViewManageUsers} {
		assert.ErrorIs(t, svc.Authorize(view), ErrAccessDenied, view)
	}

	// and only the enrollment mutation
	_, err = svc.Enroll(newStudent("S001"))
	assert.NoError(t, err)
	_, err = svc.AddGrade("S001", student.NewGrade{Subject: "Botany", Grade: "A", Semester: "Fall 2025"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.AddAttendance("S001", student.NewAttendance{Date: time.Now(), Status: "present"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, svc.DeleteStudent("S001"), ErrAccessDenied)
	assert.ErrorIs(t, svc.DeleteGrade("S001", "x"), ErrAccessDenied)
	assert.ErrorIs(t, svc.DeleteAttendance("S001", "x"), ErrAccessDenied)
	assert.ErrorIs(t, svc.DeleteUser("x"), ErrAccessDenied)

	// staff roles get every view
	require.NoError(t, svc.Logout())
	_, err = svc.Signup(newUser("teach_1", user.RoleTeacher))
	require.NoError(t, err)
	_, err = svc.Login("teach_1", "s3cret")
	require.NoError(t, err)
	for _, view := range []string{ViewEnrollment, ViewGrades, ViewAttendance, ViewReports, ViewManageUsers} {
		assert.NoError(t, svc.Authorize(view), view)
	}
}

func TestService_persistFailureRollsBack(t *testing.T) {
	svc, fs, store := setupFlaky(t)
	staff := loginStaff(t, svc)

	_, err := svc.Enroll(newStudent("S001"))
	require.NoError(t, err)
	g, err := svc.AddGrade("S001", student.NewGrade{Subject: "Botany", Grade: "A", Semester: "Fall 2025"})
	require.NoError(t, err)

	// every student mutation rolls back in memory when the rewrite fails
	fs.failStudents = true

	_, err = svc.Enroll(newStudent("S002"))
	assert.ErrorIs(t, err, errPersist)
	_, err = svc.AddGrade("S001", student.NewGrade{Subject: "Zoology", Grade: "B", Semester: "Fall 2025"})
	assert.ErrorIs(t, err, errPersist)
	_, err = svc.AddAttendance("S001", student.NewAttendance{Date: time.Now(), Status: "present"})
	assert.ErrorIs(t, err, errPersist)
	assert.ErrorIs(t, svc.DeleteGrade("S001", g.ID), errPersist)
	assert.ErrorIs(t, svc.DeleteStudent("S001"), errPersist)

	students := svc.Students()
	if assert.Len(t, students, 1) {
		assert.Equal(t, "S001", students[0].ID)
		if assert.Len(t, students[0].Grades, 1) {
			assert.Equal(t, g.ID, students[0].Grades[0].ID)
		}
		assert.Empty(t, students[0].Attendance)
	}

	// the durable mirror never saw the failed mutations
	persisted, err := store.LoadAllStudents()
	require.NoError(t, err)
	if assert.Len(t, persisted, 1) {
		assert.Equal(t, "S001", persisted[0].ID)
	}

	fs.failStudents = false
	fs.failUsers = true

	_, err = svc.Signup(newUser("asha_k", user.RoleAdmin))
	assert.ErrorIs(t, err, errPersist)
	assert.Len(t, svc.Users(), 1) // only staff_1
	assert.ErrorIs(t, svc.DeleteUser(staff.ID), errPersist)
	assert.Len(t, svc.Users(), 1)
}

func TestService_deleteUserSessionClearFailure(t *testing.T) {
	svc, fs, store := setupFlaky(t)

	admin, err := svc.Signup(newUser("admin_1", user.RoleAdmin))
	require.NoError(t, err)
	_, err = svc.Login("admin_1", "s3cret")
	require.NoError(t, err)

	// the account is gone and the in-memory session terminated even when
	// clearing the durable slot fails
	fs.failSession = true
	err = svc.DeleteUser(admin.ID)
	assert.ErrorIs(t, err, errPersist)
	assert.Empty(t, svc.Users())
	_, ok := svc.CurrentUser()
	assert.False(t, ok)

	persisted, err := store.LoadAllUsers()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}
