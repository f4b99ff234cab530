// Package main is the entry point for the todo API.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main"
// package. The main package should be kept minimal. Its job is to:
// 1. Read configuration (from env vars and the optional .env file)
// 2. Create dependencies (logger, database connection)
// 3. Hand them to the application and run it
//
// All actual logic lives in imported packages (internal/server,
// internal/service, etc.). This separation makes the app testable and its
// components reusable.
//
// COMMANDS:
// The binary is a small cobra command tree:
//
//	todo-api serve             run the HTTP API (migrates first when TODO_DB_AUTO_MIGRATE=true)
//	todo-api migrate up        apply pending migrations
//	todo-api migrate down      roll back (--steps N, or --to VERSION)
//	todo-api migrate status    list migrations and the current version
//	todo-api version           print the build version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
