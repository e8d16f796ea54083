package main

import (
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartGroomScheduler starts a cron-based scheduler that reruns the
// grooming pass on the configured schedule. The schedule is a standard
// 5-field cron expression (minute hour day-of-month month day-of-week).
// Examples: "0 9 * * 1" (Mondays 9am), "0 9 * * 1-5" (weekdays 9am).
func StartGroomScheduler(cfg Config, db *sql.DB) bool {
	schedule := strings.TrimSpace(cfg.GroomSchedule)
	if schedule == "" {
		log.Println("Scheduled grooming disabled (groom_schedule not set)")
		return false
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid groom_schedule '%s': %v — scheduled grooming disabled", schedule, err)
		return false
	}

	log.Printf("Grooming scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next grooming run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			if err := RunGrooming(cfg, db); err != nil {
				log.Printf("Scheduled grooming error: %v", err)
			}
		}
	}()
	return true
}
