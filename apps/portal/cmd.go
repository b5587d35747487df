package main

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/Jomilqt/student-portal/core/portal"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc *portal.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  signup -username USERNAME -email EMAIL -role ROLE       - create an account (password prompted)")
	fmt.Println("  login -username USERNAME                                - log in (password prompted)")
	fmt.Println("  logout                                                  - log out")
	fmt.Println("  whoami                                                  - show the current session")
	fmt.Println("  enroll -id ID -name NAME -email EMAIL -course COURSE -date YYYY-MM-DD [-photo FILE]")
	fmt.Println("  addgrade -student ID -subject SUBJECT -grade A..F -semester SEMESTER")
	fmt.Println("  addattendance -student ID -date YYYY-MM-DD -status STATUS [-notes NOTES]")
	fmt.Println("  students                                                - list enrolled students")
	fmt.Println("  users                                                   - list user accounts")
	fmt.Println("  delete-student -id ID")
	fmt.Println("  delete-user -id ID")
	fmt.Println("  delete-grade -student ID -grade RECORD_ID")
	fmt.Println("  delete-attendance -student ID -record RECORD_ID")
	fmt.Println("  report -type students|grades|attendance|enrollment")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "signup":
		return cli.signup(args[2:])
	case "login":
		return cli.login(args[2:])
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami()
	case "enroll":
		return cli.enroll(args[2:])
	case "addgrade":
		return cli.addGrade(args[2:])
	case "addattendance":
		return cli.addAttendance(args[2:])
	case "students":
		return cli.listStudents()
	case "users":
		return cli.listUsers()
	case "delete-student":
		return cli.deleteStudent(args[2:])
	case "delete-user":
		return cli.deleteUser(args[2:])
	case "delete-grade":
		return cli.deleteGrade(args[2:])
	case "delete-attendance":
		return cli.deleteAttendance(args[2:])
	case "report":
		return cli.report(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
