package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job ids.
const (
	OfflinePrefetchJob = "offline-prefetch"
	OfflineRefreshJob  = "offline-refresh"
)

// StartJobs starts the background job scheduler. The caller stops it on shutdown.
func StartJobs(app JobContext) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startOfflineRefreshJob(s, app)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func startOfflineRefreshJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().Prefetch.RefreshIntervalHours
	if interval == 0 {
		log.Println("Offline refresh interval is 0, scheduled refresh is disabled.")
		return
	}

	jobID := OfflineRefreshJob
	log.Printf("Scheduling job: '%s' to run every %d hours.", jobID, interval)

	_, err := s.Every(interval).Hours().WaitForSchedule().Do(func() {
		log.Println("Scheduler is triggering job:", jobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		err := app.JobManager().RunJob(jobID, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobID, err)
	}
}
