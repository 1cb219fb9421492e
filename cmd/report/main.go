package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Dan9191/loan-analytics/internal/config"
	"github.com/Dan9191/loan-analytics/internal/loader"
	"github.com/Dan9191/loan-analytics/internal/service"
	"github.com/Dan9191/loan-analytics/internal/utils"
	"github.com/sirupsen/logrus"
)

// report runs a single clean+aggregate pass over a CSV export and writes the
// JSON report to a file (or stdout).
func main() {
	csvPath := flag.String("csv", "", "loan CSV export to read")
	out := flag.String("out", "", "report output file; stdout when empty")
	workers := flag.Int("workers", 0, "aggregations computed at once; 0 means one per CPU")
	level := flag.String("log-level", "info", "log level")
	secret := flag.String("hmac", "", "sign the report with this secret and print the signature to stderr")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(*level); err == nil {
		logger.SetLevel(lvl)
	}

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	start := time.Now()
	cfg := &config.Config{Workers: *workers, HMACSecret: *secret, ReportTTL: time.Hour}
	svc := service.NewService(service.Deps{Source: loader.NewCSVSource(*csvPath, logger)}, logger, cfg)
	report, err := svc.Run(context.Background())
	if err != nil {
		logger.Fatalf("Report run failed: %v", err)
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to encode report: %v", err)
	}
	if *out == "" {
		_, err = os.Stdout.Write(append(payload, '\n'))
	} else {
		err = os.WriteFile(*out, payload, 0o644)
	}
	if err != nil {
		logger.Fatalf("Failed to write report: %v", err)
	}
	if *secret != "" {
		fmt.Fprintf(os.Stderr, "signature: %s\n", utils.SignReport(payload, *secret))
	}

	logger.WithFields(logrus.Fields{
		"records": report.Cleaning.Output,
		"tables":  len(report.Tables),
		"elapsed": time.Since(start).String(),
	}).Info("Report written")
}
