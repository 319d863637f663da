package flightsim

import "time"

// Config holds configuration for the flight simulation
type Config struct {
	BaseURL    string        // Base URL of the session host
	NumEntries int           // Number of entries in the flight
	NumJudges  int           // Number of judges scoring the flight
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for the final document
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// Stats holds simulation statistics
type Stats struct {
	EntriesGenerated  int
	FeedbackSubmitted int
	PushesSucceeded   int
	PushesFailed      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
