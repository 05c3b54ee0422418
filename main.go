package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vrsandeep/noor-go/internal/api"
	"github.com/vrsandeep/noor-go/internal/core"
	"github.com/vrsandeep/noor-go/internal/interceptor"
	"github.com/vrsandeep/noor-go/internal/jobs"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()
	cfg := app.Config()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connectivity ---
	monitor := app.NewMonitor()
	if err := monitor.Start(ctx); err != nil {
		log.Printf("Warning: connectivity monitor not started: %v", err)
	}
	defer monitor.Stop()

	// Scheduled refresh of the offline data
	scheduler := jobs.StartJobs(app)
	defer scheduler.Stop()

	// --- Origin server ---
	server := api.NewServer(app)
	originServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.Router(),
	}
	originListener, err := net.Listen("tcp", originServer.Addr)
	if err != nil {
		log.Fatalf("Could not listen on %s: %v", originServer.Addr, err)
	}
	go func() {
		log.Printf("Starting origin server on %s", originServer.Addr)
		if err := originServer.Serve(originListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not start origin server: %v", err)
		}
	}()

	// --- Interception layer ---
	// The shell is warmed from the origin, so it must be listening first.
	worker := app.Worker()
	if err := worker.Install(ctx); err != nil {
		log.Printf("Warning: shell warm-up failed, pages load offline only once fetched: %v", err)
	}
	// Stale generations are pruned whether or not warming succeeded.
	if removed, err := worker.Activate(ctx); err != nil {
		log.Printf("Warning: interception layer activation failed: %v", err)
	} else if len(removed) > 0 {
		log.Printf("Removed stale caches: %v", removed)
	}

	if dir := cfg.Shell.Dir; dir != "" {
		watcher := interceptor.NewShellWatcher(dir, worker, 500*time.Millisecond)
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: could not watch shell directory %s: %v", dir, err)
		} else {
			defer watcher.Stop()
		}
	}

	gatewayServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.GatewayPort),
		Handler: worker.Gateway(),
	}
	go func() {
		log.Printf("Starting offline gateway on %s", gatewayServer.Addr)
		if err := gatewayServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not start gateway server: %v", err)
		}
	}()

	if cfg.Prefetch.OnStart && !app.Offline().CheckAvailability(ctx) {
		log.Println("Offline data missing, starting prefetch...")
		if err := app.JobManager().RunJob(jobs.OfflinePrefetchJob, app); err != nil {
			log.Printf("Warning: could not start prefetch: %v", err)
		}
	}

	// --- Graceful Shutdown ---
	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down servers...")

	// Stop the running job before the databases close.
	cancel()
	app.JobManager().Shutdown()
	worker.Wait()

	// Create a context with a timeout to allow existing connections to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := gatewayServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Gateway forced to shutdown: %v", err)
	}
	if err := originServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Origin server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
