package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"temposync/internal/config"
	"temposync/internal/history"
	"temposync/internal/instance"
	"temposync/internal/pipeline"
	"temposync/internal/telemetry"
	"temposync/internal/timesheet"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "configuration file path (default ~/.temposync/config.toml)")
	dateStr := flag.String("date", "", "specific date to process (YYYY-MM-DD)")
	weekly := flag.Bool("weekly", false, "process a Monday-Friday week")
	doPreview := flag.Bool("preview", false, "generate preview file for manual review (default action)")
	doSubmit := flag.Bool("submit", false, "submit entries from the preview file")
	doDirect := flag.Bool("direct", false, "process and submit without the preview gate")
	testConns := flag.Bool("test-connections", false, "test connections to the telemetry and timesheet services")
	updateCfg := flag.Bool("update-config", false, "create missing configuration files with defaults")
	flag.Parse()

	manager := config.NewManager()
	cfg, err := manager.Load(*configPath)
	if errors.Is(err, config.ErrFirstRun) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if *updateCfg {
		if err := manager.UpdateFiles(cfg); err != nil {
			return fmt.Errorf("failed to update configuration files: %w", err)
		}
		log.Printf("Configuration files are up to date")
		return nil
	}

	telemetryClient := telemetry.NewClient(&cfg.Telemetry)
	tempoClient, err := timesheet.NewClient(&cfg.Tempo)
	if err != nil {
		return fmt.Errorf("failed to create timesheet client: %w", err)
	}

	if *testConns {
		if err := telemetryClient.TestConnection(); err != nil {
			return fmt.Errorf("telemetry connection failed: %w", err)
		}
		log.Printf("Telemetry connection successful")
		if err := tempoClient.TestConnection(); err != nil {
			return err
		}
		log.Printf("Timesheet connection successful")
		return nil
	}

	var targetDate time.Time
	if *dateStr != "" {
		targetDate, err = time.ParseInLocation("2006-01-02", *dateStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", *dateStr)
		}
	}

	mappingsPath, err := config.ExpandPath(cfg.Files.MappingsPath)
	if err != nil {
		return err
	}
	rules, err := config.LoadMappings(mappingsPath)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	tasksPath, err := config.ExpandPath(cfg.Files.StaticTasksPath)
	if err != nil {
		return err
	}
	tasks, err := config.LoadStaticTasks(tasksPath)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	store, err := history.Open(cfg.Files.HistoryPath)
	if err != nil {
		log.Printf("Warning: run history unavailable: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	pipe, err := pipeline.New(cfg, rules, tasks, telemetryClient, tempoClient, store)
	if err != nil {
		return err
	}

	lock, err := instance.NewLock()
	if err != nil {
		return err
	}
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer lock.Release()

	mode := ""
	if *weekly {
		mode = "weekly"
	} else if *doPreview || *doDirect {
		mode = "daily"
	}

	switch {
	case *doSubmit:
		return pipe.SubmitPreview()
	case *doDirect:
		return pipe.Direct(mode, targetDate)
	default:
		return pipe.GeneratePreview(mode, targetDate)
	}
}
