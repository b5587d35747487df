package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Jomilqt/student-portal/core/portal"
	"github.com/Jomilqt/student-portal/core/report"
	"github.com/Jomilqt/student-portal/core/student"
)

const dateLayout = "2006-01-02"

func (cli *commandLine) enroll(args []string) error {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	id := fs.String("id", "", "The student's registration number.")
	name := fs.String("name", "", "The student's full name.")
	email := fs.String("email", "", "The student's email address.")
	course := fs.String("course", "", "The course to enroll into.")
	date := fs.String("date", "", "Enrollment date (YYYY-MM-DD). Defaults to today.")
	photo := fs.String("photo", "", "Path to an optional profile picture.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *name == "" || *email == "" || *course == "" {
		fs.Usage()
		return errHelp
	}

	enrolled := time.Now().UTC().Truncate(24 * time.Hour)
	if *date != "" {
		var err error
		if enrolled, err = time.Parse(dateLayout, *date); err != nil {
			return err
		}
	}

	ns := student.NewStudent{
		ID:             *id,
		Name:           *name,
		Email:          *email,
		Course:         *course,
		EnrollmentDate: enrolled,
	}
	if *photo != "" {
		pic, err := os.ReadFile(*photo)
		if err != nil {
			return err
		}
		ns.ProfilePic = pic
	}

	st, err := cli.svc.Enroll(ns)
	if err != nil {
		return err
	}
	fmt.Printf("Student enrolled successfully! (%s - %s)\n", st.ID, st.Name)
	return nil
}

func (cli *commandLine) addGrade(args []string) error {
	fs := flag.NewFlagSet("addgrade", flag.ExitOnError)
	studentID := fs.String("student", "", "The student's registration number.")
	subject := fs.String("subject", "", "The graded subject.")
	grade := fs.String("grade", "", "The letter grade (A, B, C, D or F).")
	semester := fs.String("semester", "", "The semester the grade belongs to.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studentID == "" {
		fs.Usage()
		return errHelp
	}

	g, err := cli.svc.AddGrade(*studentID, student.NewGrade{
		Subject:  *subject,
		Grade:    *grade,
		Semester: *semester,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Grade added successfully! (record: %s)\n", g.ID)
	return nil
}

func (cli *commandLine) addAttendance(args []string) error {
	fs := flag.NewFlagSet("addattendance", flag.ExitOnError)
	studentID := fs.String("student", "", "The student's registration number.")
	date := fs.String("date", "", "Attendance date (YYYY-MM-DD). Defaults to today.")
	status := fs.String("status", "", "Attendance status, e.g. present, absent, late.")
	notes := fs.String("notes", "", "Optional notes.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studentID == "" {
		fs.Usage()
		return errHelp
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	if *date != "" {
		var err error
		if day, err = time.Parse(dateLayout, *date); err != nil {
			return err
		}
	}

	rec, err := cli.svc.AddAttendance(*studentID, student.NewAttendance{
		Date:   day,
		Status: *status,
		Notes:  *notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Attendance recorded successfully! (record: %s)\n", rec.ID)
	return nil
}

func (cli *commandLine) listStudents() error {
	if err := cli.svc.Authorize(portal.ViewEnrollment); err != nil {
		return err
	}

	students := cli.svc.Students()
	if len(students) == 0 {
		fmt.Println("No students enrolled yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOURSE\tENROLLED\tAVERAGE\tATTENDANCE")
	for _, st := range students {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d records\n",
			st.ID, st.Name, st.Email, st.Course,
			st.EnrollmentDate.Format(dateLayout),
			report.AverageGrade(st.Grades),
			len(st.Attendance),
		)
	}
	return w.Flush()
}

func (cli *commandLine) listUsers() error {
	if err := cli.svc.Authorize(portal.ViewManageUsers); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tCREATED")
	for _, usr := range cli.svc.Users() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			usr.ID, usr.Username, usr.Email, usr.Role, usr.CreatedAt.Format(dateLayout))
	}
	return w.Flush()
}

func (cli *commandLine) deleteStudent(args []string) error {
	fs := flag.NewFlagSet("delete-student", flag.ExitOnError)
	id := fs.String("id", "", "The student's registration number.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}
	if err := cli.svc.DeleteStudent(*id); err != nil {
		return err
	}
	fmt.Println("Student deleted successfully!")
	return nil
}

func (cli *commandLine) deleteUser(args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
	id := fs.String("id", "", "The user's account ID (see the users command).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}
	if err := cli.svc.DeleteUser(*id); err != nil {
		return err
	}
	fmt.Println("User deleted successfully.")
	if _, ok := cli.svc.CurrentUser(); !ok {
		fmt.Println("Your account has been deleted. Logging out.")
	}
	return nil
}

func (cli *commandLine) deleteGrade(args []string) error {
	fs := flag.NewFlagSet("delete-grade", flag.ExitOnError)
	studentID := fs.String("student", "", "The student's registration number.")
	gradeID := fs.String("grade", "", "The grade record ID (see the grade report).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studentID == "" || *gradeID == "" {
		fs.Usage()
		return errHelp
	}
	if err := cli.svc.DeleteGrade(*studentID, *gradeID); err != nil {
		return err
	}
	fmt.Println("Grade deleted successfully!")
	return nil
}

func (cli *commandLine) deleteAttendance(args []string) error {
	fs := flag.NewFlagSet("delete-attendance", flag.ExitOnError)
	studentID := fs.String("student", "", "The student's registration number.")
	recordID := fs.String("record", "", "The attendance record ID (see the attendance report).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studentID == "" || *recordID == "" {
		fs.Usage()
		return errHelp
	}
	if err := cli.svc.DeleteAttendance(*studentID, *recordID); err != nil {
		return err
	}
	fmt.Println("Attendance record deleted successfully!")
	return nil
}
