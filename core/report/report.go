// Package report derives read-only aggregate views from the in-memory
// students collection. Nothing here touches the store.
package report

import (
	"fmt"
	"strings"

	"github.com/Jomilqt/student-portal/core/student"
)

// Letter grades map to fixed numeric anchors; the average is computed over
// recognized letters only and classified against the pass mark.
var gradePoints = map[string]float64{
	"A": 95.9,
	"B": 85.9,
	"C": 75.9,
	"D": 65.9,
	"F": 55.9,
}

const passMark = 74.5

// AverageGrade renders the average of the recognized grades as e.g.
// "90.9 (Pass)". Unrecognized letters are skipped, not counted as zero.
func AverageGrade(grades []student.Grade) string {
	var total float64
	var count int
	for _, g := range grades {
		if pts, ok := gradePoints[strings.ToUpper(g.Grade)]; ok {
			total += pts
			count++
		}
	}
	if count == 0 {
		return "No grades"
	}
	avg := total / float64(count)
	status := "Fail"
	if avg >= passMark {
		status = "Pass"
	}
	return fmt.Sprintf("%.1f (%s)", avg, status)
}

type (
	// Roster is the student list report.
	Roster struct {
		Total    int
		Students []RosterLine
	}

	RosterLine struct {
		ID      string
		Name    string
		Course  string
		Average string
	}
)

func BuildRoster(students []student.Student) Roster {
	r := Roster{Total: len(students), Students: make([]RosterLine, 0, len(students))}
	for _, st := range students {
		r.Students = append(r.Students, RosterLine{
			ID:      st.ID,
			Name:    st.Name,
			Course:  st.Course,
			Average: AverageGrade(st.Grades),
		})
	}
	return r
}

type (
	// GradeSummary lists every grade record per student, with the computed
	// average. Students without grades are omitted from the breakdown.
	GradeSummary struct {
		TotalRecords int
		Students     []StudentGrades
	}

	StudentGrades struct {
		ID      string
		Name    string
		Course  string
		Average string
		Grades  []student.Grade
	}
)

func BuildGradeSummary(students []student.Student) GradeSummary {
	var sum GradeSummary
	for _, st := range students {
		sum.TotalRecords += len(st.Grades)
		if len(st.Grades) == 0 {
			continue
		}
		sum.Students = append(sum.Students, StudentGrades{
			ID:      st.ID,
			Name:    st.Name,
			Course:  st.Course,
			Average: AverageGrade(st.Grades),
			Grades:  st.Grades,
		})
	}
	return sum
}

type (
	// AttendanceSummary lists every attendance record per student. Students
	// without records are omitted from the breakdown.
	AttendanceSummary struct {
		TotalRecords int
		Students     []StudentAttendance
	}

	StudentAttendance struct {
		ID      string
		Name    string
		Course  string
		Records []student.Attendance
	}
)

func BuildAttendanceSummary(students []student.Student) AttendanceSummary {
	var sum AttendanceSummary
	for _, st := range students {
		sum.TotalRecords += len(st.Attendance)
		if len(st.Attendance) == 0 {
			continue
		}
		sum.Students = append(sum.Students, StudentAttendance{
			ID:      st.ID,
			Name:    st.Name,
			Course:  st.Course,
			Records: st.Attendance,
		})
	}
	return sum
}

type (
	// EnrollmentSummary groups students by course, preserving first-seen
	// course order.
	EnrollmentSummary struct {
		Total   int
		Courses []CourseGroup
	}

	CourseGroup struct {
		Course   string
		Count    int
		Students []student.Student
	}
)

func BuildEnrollmentSummary(students []student.Student) EnrollmentSummary {
	sum := EnrollmentSummary{Total: len(students)}
	byCourse := make(map[string]int) // course -> index in sum.Courses
	for _, st := range students {
		i, ok := byCourse[st.Course]
		if !ok {
			i = len(sum.Courses)
			byCourse[st.Course] = i
			sum.Courses = append(sum.Courses, CourseGroup{Course: st.Course})
		}
		sum.Courses[i].Students = append(sum.Courses[i].Students, st)
		sum.Courses[i].Count++
	}
	return sum
}
