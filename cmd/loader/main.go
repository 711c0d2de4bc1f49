package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/cheese-shop-assistant/internal/bootstrap"
	"github.com/kirillkom/cheese-shop-assistant/internal/config"
)

func main() {
	filePath := flag.String("file", "", "path to a JSON array of catalog items")
	flag.Parse()
	if *filePath == "" {
		log.Fatal("usage: loader -file catalog.json")
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Service:   "loader",
		SkipQueue: true,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open catalog file: %v", err)
	}
	defer file.Close()

	report, err := app.BulkLoadUC.Load(ctx, file)
	if err != nil {
		log.Fatalf("bulk load error: %v", err)
	}

	log.Printf("loaded %d items in %d batches", report.Items, report.Batches)
	for _, failure := range report.FailedBatches {
		log.Printf("batch %d failed: %v", failure.Index, failure.Err)
	}
	if len(report.FailedBatches) > 0 {
		os.Exit(1)
	}
}
