package main

import (
	"flag"
	"os"
	"text/template"
	"time"

	"github.com/Jomilqt/student-portal/core/portal"
	"github.com/Jomilqt/student-portal/core/report"
)

func (cli *commandLine) report(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	typ := fs.String("type", "students", "One of: students, grades, attendance, enrollment.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cli.svc.Authorize(portal.ViewReports); err != nil {
		return err
	}

	students := cli.svc.Students()
	var data interface{}
	switch *typ {
	case "students":
		data = report.BuildRoster(students)
	case "grades":
		data = report.BuildGradeSummary(students)
	case "attendance":
		data = report.BuildAttendanceSummary(students)
	case "enrollment":
		data = report.BuildEnrollmentSummary(students)
	default:
		fs.Usage()
		return errHelp
	}
	return reportTmpl.ExecuteTemplate(os.Stdout, *typ, data)
}

var reportTmpl = template.Must(template.New("reports").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Jan 02, 2006") },
}).Parse(reportText))

const reportText = `{{define "students" -}}
Student List Report
Total Students: {{.Total}}
{{range .Students}}  - {{.Name}} ({{.ID}}) - {{.Course}} | Average: {{.Average}}
{{end}}{{end}}

{{define "grades" -}}
Grade Report
Total Grade Records: {{.TotalRecords}}
{{range .Students}}
{{.Name}} ({{.ID}}) - {{.Course}} | Average: {{.Average}}
{{range .Grades}}  - Subject: {{.Subject}} | Grade: {{.Grade}} | Semester: {{.Semester}} | Date: {{date .Date}} | Record: {{.ID}}
{{end}}{{end}}{{if not .Students}}No grade records found.
{{end}}{{end}}

{{define "attendance" -}}
Individual Student Attendance Records
Total Attendance Records: {{.TotalRecords}}
{{range .Students}}
{{.Name}} ({{.ID}}) - {{.Course}}
{{range .Records}}  - Date: {{date .Date}} | Status: {{.Status}} | Notes: {{if .Notes}}{{.Notes}}{{else}}None{{end}} | Record: {{.ID}}
{{end}}{{end}}{{if not .Students}}No attendance records found.
{{end}}{{end}}

{{define "enrollment" -}}
Enrollment Statistics
Total Students: {{.Total}}
{{range .Courses}}
{{.Course}}: {{.Count}} students
{{range .Students}}  - {{.Name}} ({{.ID}}) - Enrolled: {{date .EnrollmentDate}}
{{end}}{{end}}{{if not .Courses}}No students enrolled.
{{end}}{{end}}`
