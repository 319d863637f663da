package flightsim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ocmu/mashup/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "flightsim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the flight simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Mash Ups Flight Simulator
=========================

Drives a running session host through a full judging session: registers
a flight, shares it, scores it with a simulated judge panel, and checks
the resulting rankings.

Usage:
  go run cmd/flight-sim/main.go [options]

Options:
  -url string
        Base URL of the session host (default "http://localhost:9080")
  -entries int
        Number of entries in the flight (default 12)
  -judges int
        Number of judges scoring the flight (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for the final document (default: flight_session_TIMESTAMP.json)
  -log string
        Log file for simulation output (default: flightsim_TIMESTAMP.log)
  -verbose
        Log the full standings after verification
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/flight-sim/main.go

  # A big competition with a full panel
  go run cmd/flight-sim/main.go -entries 40 -judges 8

  # Against a remote host
  go run cmd/flight-sim/main.go -url http://sessions.example:9080 -verbose
`)
}
