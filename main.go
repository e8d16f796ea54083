package main

import (
	"log"
	"os"
)

func main() {
	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	if len(os.Args) > 1 && os.Args[1] == "history" {
		if err := ShowRunHistory(os.Stdout, db); err != nil {
			log.Fatalf("History listing failed: %v", err)
		}
		return
	}

	if cfg.GroomSchedule != "" {
		if !StartGroomScheduler(cfg, db) {
			log.Fatalf("groom_schedule is set but the scheduler could not start")
		}
		select {}
	}

	log.Println("Starting grooming run...")
	if err := RunGrooming(cfg, db); err != nil {
		log.Fatalf("Grooming run failed: %v", err)
	}
}
