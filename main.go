package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ghgpipe/adapters/store"
	"ghgpipe/app"
	"ghgpipe/internal/config"
	"ghgpipe/internal/manifest"
	"ghgpipe/internal/vocab"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	inputFlag := flag.String("input", "", "input directory (overrides INPUT_DIR)")
	outputFlag := flag.String("output", "", "output directory (overrides OUTPUT_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *inputFlag != "" {
		cfg.Paths.InputDir = *inputFlag
	}
	if *outputFlag != "" {
		cfg.Paths.OutputDir = *outputFlag
	}

	v := vocab.Default()
	if cfg.Paths.VocabFile != "" {
		v, err = vocab.Load(cfg.Paths.VocabFile)
		if err != nil {
			log.Fatalf("Failed to load vocabulary: %v", err)
		}
	}

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	mf, err := manifest.Open(cfg.Paths.ManifestDB)
	if err != nil {
		log.Fatalf("Failed to open manifest database: %v", err)
	}
	defer mf.Close()

	orchestrator := app.NewOrchestrator(
		app.NewPipeline(v, cfg),
		store.New(cfg.Paths.OutputDir),
		mf,
		cfg.Batch,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := orchestrator.Run(ctx, cfg.Paths.InputDir)
	if err != nil {
		log.Fatalf("Batch run failed: %v", err)
	}

	fmt.Printf("Run %s: %d files processed, %d committed, %d failed, %d warnings\n",
		report.RunID, report.Processed, report.Committed, len(report.Failures), report.Warnings)
	for _, f := range report.Failures {
		fmt.Printf("  FAILED %s (%s): %s\n", f.File, f.ErrorCode, f.Error)
	}
	if len(report.Failures) > 0 {
		os.Exit(1)
	}
}
