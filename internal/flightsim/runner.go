// Package flightsim simulates a judging session against a running
// session host: it registers a flight, has a panel of judges score it
// through pull/push cycles, and verifies the resulting rankings.
package flightsim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ocmu/mashup/internal/adapters/remote"
	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/ranking"
	"github.com/ocmu/mashup/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes the complete flight simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting flight simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("entries", config.NumEntries),
		logger.Int("judges", config.NumJudges),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check host health
	if err := checkHostHealth(ctx, config); err != nil {
		return fmt.Errorf("host health check failed: %w", err)
	}

	// Step 2: Register the flight and share it as a session
	entries := generateEntries(config.NumEntries)
	stats.EntriesGenerated = len(entries)

	client := remote.NewClient(config.BaseURL, remote.WithTimeout(config.Timeout))
	token, err := client.Create(ctx, model.Snapshot{Entries: entries})
	if err != nil {
		return fmt.Errorf("session creation failed: %w", err)
	}
	logger.Get().Info(ctx, "session created", logger.String("token", token))

	// Step 3: Judges score the flight. The session is last-write-wins on
	// the whole document, so judges take turns: pull, score, push.
	// Concurrent pushes would silently clobber each other.
	for i := 0; i < config.NumJudges; i++ {
		if err := scoreFlight(ctx, client, token, newJudge(i), stats); err != nil {
			return fmt.Errorf("judge %d failed: %w", i+1, err)
		}
	}

	// Step 4: Pull the final document and verify rankings
	final, err := client.Pull(ctx, token, true, 0)
	if err != nil {
		return fmt.Errorf("final pull failed: %w", err)
	}
	if err := verifyRankings(ctx, config, final.Local(), stats); err != nil {
		return fmt.Errorf("ranking verification failed: %w", err)
	}

	// Step 5: Save the final document to file
	if err := saveDocument(ctx, config, final); err != nil {
		logger.Get().Warn(ctx, "failed to save document", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkHostHealth verifies the session host is running.
func checkHostHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking host health")

	client := &http.Client{Timeout: config.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to host: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("host health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "host is healthy")
	return nil
}

// scoreFlight runs one judge's pass over every entry.
func scoreFlight(ctx context.Context, client *remote.Client, token string, j judge, stats *Stats) error {
	snap, err := client.Pull(ctx, token, true, 0)
	if err != nil {
		return fmt.Errorf("pull before scoring: %w", err)
	}

	doc := snap.Local()
	now := time.Now().UnixMilli()
	for _, e := range ranking.FlightOrder(doc.Entries) {
		doc.Feedback = append(doc.Feedback, j.feedbackFor(e, now))
		stats.FeedbackSubmitted++
	}

	if _, err := client.Push(ctx, token, doc); err != nil {
		stats.PushesFailed++
		return fmt.Errorf("push scored flight: %w", err)
	}
	stats.PushesSucceeded++

	logger.Get().Info(ctx, "judge scored the flight",
		logger.String("judge", j.name),
		logger.Int("entries", len(doc.Entries)))
	return nil
}

// verifyRankings checks the aggregated standings of the final document.
func verifyRankings(ctx context.Context, config *Config, doc model.Snapshot, stats *Stats) error {
	logger.Get().Info(ctx, "verifying rankings")

	if len(doc.Feedback) != stats.FeedbackSubmitted {
		return fmt.Errorf("document holds %d feedback records, submitted %d",
			len(doc.Feedback), stats.FeedbackSubmitted)
	}

	standings := ranking.Entries(doc)
	if len(standings) != len(doc.Entries) {
		return fmt.Errorf("expected %d ranked entries, got %d", len(doc.Entries), len(standings))
	}
	for i := 1; i < len(standings); i++ {
		if standings[i].Avg > standings[i-1].Avg {
			return fmt.Errorf("standings not sorted: position %d outranks position %d", i, i-1)
		}
	}

	if config.Verbose {
		topN := 10
		if len(standings) < topN {
			topN = len(standings)
		}
		for i := 0; i < topN; i++ {
			s := standings[i]
			logger.Get().Info(ctx, "standing",
				logger.Int("rank", i+1),
				logger.String("style", s.Entry.Style),
				logger.String("brewer", s.Entry.Brewer),
				logger.Float64("avg", s.Avg),
				logger.Int("reviews", s.Count))
		}
	}

	logger.Get().Info(ctx, "rankings verified",
		logger.Int("entries", len(standings)),
		logger.Int("feedback", len(doc.Feedback)))
	return nil
}

// saveDocument writes the final session document to a JSON file.
func saveDocument(ctx context.Context, config *Config, doc *model.RemoteSnapshot) error {
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "flight_session_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	logger.Get().Info(ctx, "document saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("entriesGenerated", stats.EntriesGenerated),
		logger.Int("feedbackSubmitted", stats.FeedbackSubmitted),
		logger.Int("pushesSucceeded", stats.PushesSucceeded),
		logger.Int("pushesFailed", stats.PushesFailed),
		logger.String("duration", stats.Duration.String()))
}
