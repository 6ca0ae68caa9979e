package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"opendata/internal/app/bootstrap"
)

// Harvester entrypoint. Runs one sweep over the active sources and exits;
// schedule it with cron or a Kubernetes CronJob.
func main() {
	log.Println("opendata harvester starting")
	app, err := bootstrap.BuildHarvester()
	if err != nil {
		log.Fatalf("bootstrap harvester failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	report, err := app.Run(ctx)
	stop()
	if closeErr := app.Close(); closeErr != nil {
		log.Printf("harvester shutdown close failed: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("opendata harvester stopped with error: %v", err)
	}
	log.Printf("harvest complete: visited=%d failed=%d created=%d updated=%d discarded=%d",
		report.SourcesVisited, report.SourcesFailed,
		report.EventsCreated, report.EventsUpdated, report.EventsDiscarded)
}
