package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sanity-checks the environment before the daemon starts.
func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	intervalS := strings.TrimSpace(os.Getenv("CHECK_INTERVAL_S"))
	webhook := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL"))

	if addr == "" {
		warn("ADDR is empty; the daemon binds 127.0.0.1:8080 by default.")
	} else {
		ok("ADDR=" + addr)
	}

	if db == "" && sqlitePath == "" {
		warn("DATABASE_URL and SQLITE_PATH both empty — sqlite file isitdown.db in the working directory will be used.")
	} else if db != "" {
		if !strings.HasPrefix(db, "postgres://") && !strings.HasPrefix(db, "postgresql://") {
			fail("DATABASE_URL does not look like a postgres DSN.")
		}
		ok("DATABASE_URL present (postgres)")
	} else {
		ok("SQLITE_PATH=" + sqlitePath)
	}

	if intervalS != "" {
		sec, err := strconv.ParseFloat(intervalS, 64)
		if err != nil || sec <= 0 {
			fail("CHECK_INTERVAL_S must be a positive number of seconds.")
		}
		if sec < 30 {
			warn("CHECK_INTERVAL_S below the 30s floor; it will be clamped.")
		} else {
			ok("CHECK_INTERVAL_S=" + intervalS)
		}
	}

	if webhook == "" {
		warn("SLACK_WEBHOOK_URL empty — down alerts go to the service log only.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	ok("preflight passed")
}
