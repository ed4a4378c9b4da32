package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"preorder/internal/config"
	"preorder/internal/database"
	"preorder/internal/logger"
	"preorder/internal/pipeline"
	"preorder/internal/store"
)

func main() {
	selection := flag.String("select", "all", `steps to run, e.g. "1,3,5-7" or "all"`)
	list := flag.Bool("list", false, "list the pipeline steps and exit")
	dryRun := flag.Bool("dry-run", false, "print the selected steps without executing them")
	stopOnFailure := flag.Bool("stop-on-failure", false, "abort the run on the first failed step")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pipe := pipeline.New(cfg, store.New(db, cfg), logger)
	defer pipe.Close()

	if *list {
		for i, step := range pipe.Steps() {
			fmt.Printf("%2d. %-20s %s\n", i+1, step.Name, step.Description)
		}
		return
	}

	// Cancel the run cleanly on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Interrupt received, cancelling run...")
		cancel()
	}()

	opts := pipeline.Options{
		DryRun:        *dryRun,
		StopOnFailure: *stopOnFailure,
	}
	if err := pipe.Run(ctx, *selection, opts); err != nil {
		logger.Fatal("Sync run failed: %v", err)
	}
}
