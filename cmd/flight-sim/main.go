package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/ocmu/mashup/internal/flightsim"
)

// Default configuration constants.
const (
	defaultNumEntries = 12
	defaultNumJudges  = 4
	defaultTimeout    = 30 * time.Second
	defaultSimTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the session host")
		numEntries = flag.Int("entries", defaultNumEntries, "Number of entries in the flight")
		numJudges  = flag.Int("judges", defaultNumJudges, "Number of judges scoring the flight")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for the final document (default: flight_session_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for simulation output (default: flightsim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log the full standings after verification")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		flightsim.ShowHelp()
		return
	}

	if err := flightsim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	config := &flightsim.Config{
		BaseURL:    *baseURL,
		NumEntries: *numEntries,
		NumJudges:  *numJudges,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := flightsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
