// Command actuatorsim simulates the dispenser firmware controller. It polls
// the queue server for work, pretends to drive the bins, and reports each
// job complete. Useful for exercising a running server without hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/pkg/actuator"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8081", "Queue server base URL")
	pollInterval := flag.Duration("poll", 2*time.Second, "Poll interval when the queue is empty")
	dispenseTime := flag.Duration("dispense", 5*time.Second, "Simulated time to dispense one job")
	jamEvery := flag.Int("jam-every", 0, "Abandon every Nth job to simulate a bin jam (0 disables)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.NewWithLevel(logger.ParseLevel(*logLevel))
	client := actuator.NewHTTPClient(*serverURL, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Dispenser simulator started", "server", *serverURL, "poll_interval", *pollInterval)

	if err := run(ctx, log, client, *pollInterval, *dispenseTime, *jamEvery); err != nil {
		log.Error("Simulator stopped", "error", err)
		os.Exit(1)
	}
	log.Info("Simulator shut down")
}

// run is the poll loop: claim a job, dispense it, report back. It returns
// when ctx is cancelled. Transient server errors are logged and retried on
// the next tick rather than killing the loop.
func run(ctx context.Context, log logger.Logger, client actuator.Client, pollInterval, dispenseTime time.Duration, jamEvery int) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	dispensed := 0
	for {
		job, err := client.PollNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("Poll failed", "error", err)
		} else if job != nil {
			dispensed++
			if jamEvery > 0 && dispensed%jamEvery == 0 {
				log.Warn("Simulating bin jam", "student_id", job.StudentID, "menu", job.MenuName)
				if err := client.Abandon(ctx, job.StudentID, job.Slot(), "simulated bin jam"); err != nil {
					log.Error("Abandon failed", "student_id", job.StudentID, "error", err)
				}
				continue
			}
			if err := dispense(ctx, log, job, dispenseTime); err != nil {
				return nil // ctx cancelled mid-dispense
			}
			if err := client.Complete(ctx, job.StudentID, job.Slot()); err != nil {
				log.Error("Complete failed", "student_id", job.StudentID, "error", err)
			}
			// Immediately poll again while there is work
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// dispense logs the bin plan and sleeps for the simulated dispense time
func dispense(ctx context.Context, log logger.Logger, job *models.DispenseJob, dispenseTime time.Duration) error {
	log.Info("Dispensing", "student", job.StudentName, "menu", job.MenuName, "slots", job.FoodSlots)

	plan, err := models.ParseSlotPlan(job.FoodSlots)
	if err != nil {
		log.Warn("Unreadable slot plan, dispensing anyway", "slots", job.FoodSlots, "error", err)
	}
	for _, p := range plan {
		log.Debug("Driving bin", "position", p.Position, "grams", p.Weight)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(dispenseTime):
	}

	fmt.Printf("✓ %s: %s (%s)\n", job.StudentName, job.MenuName, job.FoodSlots)
	return nil
}
