package main

import (
	"flag"
	"fmt"

	"github.com/Jomilqt/student-portal/core/user"
)

func (cli *commandLine) signup(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	uname := fs.String("username", "", "The account's username.")
	email := fs.String("email", "", "The account's email address.")
	role := fs.String("role", user.RoleStudent, "One of: admin, teacher, student.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *uname == "" || *email == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := promptPassword("Enter password:")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password:")
	if err != nil {
		return err
	}

	usr, err := cli.svc.Signup(user.NewUser{
		Username:        *uname,
		Email:           *email,
		Password:        pwd,
		PasswordConfirm: confirm,
		Role:            *role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Account created successfully! Please log in. (id: %s)\n", usr.ID)
	return nil
}

func (cli *commandLine) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	uname := fs.String("username", "", "The account's username. The password will be prompted next.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *uname == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := promptPassword("Enter password:")
	if err != nil {
		return err
	}

	usr, err := cli.svc.Login(*uname, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s (%s)\n", usr.Username, usr.Role)
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.svc.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out successfully")
	return nil
}

func (cli *commandLine) whoami() error {
	usr, ok := cli.svc.CurrentUser()
	if !ok {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s (%s) <%s>\n", usr.Username, usr.Role, usr.Email)
	return nil
}
