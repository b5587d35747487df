package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Jomilqt/student-portal/core"
	"github.com/Jomilqt/student-portal/core/portal"
	logsvc "github.com/Jomilqt/student-portal/services/logger"
	"github.com/Jomilqt/student-portal/storage/boltdb"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stderr, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.GetString("rollbarToken") != "" {
		rl := logsvc.NewRollbarLogger(std)
		rl.Enable(!core.Conf.GetBool("debug")) // no remote reporting from dev machines
		logger = rl
	} else {
		logger = logsvc.NewConsoleLogger(std)
	}

	// set up the record store
	store, err := boltdb.Open(core.Conf.GetString("databasePath"))
	if err != nil {
		logger.Fatal("opening record store", err)
	}
	defer func() { _ = store.Close() }()

	svc, err := portal.NewService(store, logger)
	if err != nil {
		logger.Fatal("loading records", err)
	}

	// start CLI
	cli := commandLine{svc: svc}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", formatError(err))
		}
		os.Exit(1)
	}
}
